package toolchain

import "path"

// msvcToolchain is the Microsoft Visual C++ family: cl for compiling, link
// for linking, lib for archiving.
type msvcToolchain struct {
	language string

	globalCompileFlags []string
	globalLinkFlags    []string
}

func newMsvcToolchain(language string, compileFlags, linkFlags []string) *msvcToolchain {
	return &msvcToolchain{
		language:           language,
		globalCompileFlags: compileFlags,
		globalLinkFlags:    linkFlags,
	}
}

func (t *msvcToolchain) Language() string { return t.language }
func (t *msvcToolchain) Family() Family   { return FamilyMsvc }

func (t *msvcToolchain) ObjectFile(name string) string { return name + ".obj" }
func (t *msvcToolchain) Executable(name string) string { return name + ".exe" }

func (t *msvcToolchain) StaticLibrary(name string) string { return name + ".lib" }
func (t *msvcToolchain) SharedLibrary(name string) string { return name + ".dll" }

func (t *msvcToolchain) CompileRule() string { return "msvc_" + t.ruleSuffix() }
func (t *msvcToolchain) LinkRule() string    { return "msvc_link" }
func (t *msvcToolchain) ArchiveRule() string { return "msvc_lib" }

func (t *msvcToolchain) ruleSuffix() string {
	if t.language == "c++" {
		return "cxx"
	}
	return "cc"
}

func (t *msvcToolchain) CompileTemplate() []string {
	return []string{"cl", "/nologo", "$flags", "/c", "$in", "/Fo$out"}
}

func (t *msvcToolchain) LinkTemplate() []string {
	return []string{"link", "/nologo", "$flags", "$in", "$libs", "/OUT:$out"}
}

func (t *msvcToolchain) ArchiveTemplate() []string {
	return []string{"lib", "/nologo", "/OUT:$out", "$in"}
}

func (t *msvcToolchain) GlobalCompileFlags() []string { return t.globalCompileFlags }

func (t *msvcToolchain) GlobalLinkFlags() []string { return t.globalLinkFlags }

// PICFlags returns nothing: position-independent code is implicit on Windows.
func (t *msvcToolchain) PICFlags() []string { return nil }

func (t *msvcToolchain) SharedLinkFlags() []string { return []string{"/DLL"} }

func (t *msvcToolchain) IncludeDir(dir string) []string { return []string{"/I" + dir} }

func (t *msvcToolchain) LibDir(dir string) []string { return []string{"/LIBPATH:" + dir} }

func (t *msvcToolchain) LinkLib(name string) []string {
	return []string{path.Base(name) + ".lib"}
}
