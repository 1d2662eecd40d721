package toolchain

import "path"

// ext2lang maps source-file extensions to languages.
var ext2lang = map[string]string{
	".c":   "c",
	".cpp": "c++",
	".cc":  "c++",
	".cxx": "c++",
}

// LanguageOf returns the language a source file is written in, based on its
// extension.
func LanguageOf(file string) (string, bool) {
	lang, ok := ext2lang[path.Ext(file)]
	return lang, ok
}

// TargetLanguage picks the link language for a set of sources: any c++ source
// makes the whole target c++, otherwise c if any source is c, otherwise the
// fallback.
func TargetLanguage(sources []string, fallback string) string {
	lang := ""
	for _, src := range sources {
		l, ok := LanguageOf(src)
		if !ok {
			continue
		}
		if l == "c++" {
			return "c++"
		}
		lang = l
	}
	if lang == "" {
		return fallback
	}
	return lang
}
