package ninja

import (
	"regexp"
	"strings"
)

// badShellChars matches anything that forces POSIX shell quoting.
var badShellChars = regexp.MustCompile(`[^\w@%+:,./-]`)

// escapeOutput escapes a path for the output position of a build statement,
// where colon, space, and dollar are significant.
func escapeOutput(s string) string {
	r := strings.NewReplacer("$", "$$", " ", "$ ", ":", "$:")
	return r.Replace(s)
}

// escapeInput escapes a path for the input positions, where only space and
// dollar are significant.
func escapeInput(s string) string {
	r := strings.NewReplacer("$", "$$", " ", "$ ")
	return r.Replace(s)
}

// shellQuote quotes one argv token for the POSIX shell ninja hands commands
// to. Tokens made only of safe characters pass through; everything else is
// single-quoted with embedded quotes rewritten the usual way.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !badShellChars.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// isPlaceholder reports whether a template token is one of the variables
// bound by ninja itself or by a per-build binding. Placeholder tokens are
// written literally so ninja expands them.
func isPlaceholder(tok string) bool {
	switch tok {
	case "$in", "$out", "$flags", "$libs":
		return true
	}
	return false
}

// commandText renders a template token list as a ninja rule command string.
// Placeholder tokens stay literal; tokens embedding a placeholder (like
// /Fo$out) stay literal too; everything else is shell-quoted and
// dollar-escaped.
func commandText(template []string) string {
	parts := make([]string, 0, len(template))
	for _, tok := range template {
		if isPlaceholder(tok) || strings.Contains(tok, "$in") || strings.Contains(tok, "$out") {
			parts = append(parts, tok)
			continue
		}
		parts = append(parts, strings.ReplaceAll(shellQuote(tok), "$", "$$"))
	}
	return strings.Join(parts, " ")
}

// flagsText renders a per-build variable value: each flag shell-quoted and
// dollar-escaped, space-joined.
func flagsText(flags []string) string {
	parts := make([]string, 0, len(flags))
	for _, f := range flags {
		parts = append(parts, strings.ReplaceAll(shellQuote(f), "$", "$$"))
	}
	return strings.Join(parts, " ")
}
