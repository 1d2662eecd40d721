package makefile

import (
	"regexp"
	"strings"
)

// badShellChars matches anything that forces POSIX shell quoting.
var badShellChars = regexp.MustCompile(`[^\w@%+:,./-]`)

// shellQuote quotes one argv token for the shell make hands recipe lines to.
// Dollar escaping for make itself happens afterwards, on the whole line.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !badShellChars.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// quoteAll maps shellQuote over a token list.
func quoteAll(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = shellQuote(t)
	}
	return out
}
