package toolchain

import (
	"path"
	"strings"
)

// ccToolchain is the gcc/clang-style driver family. The driver command doubles
// as the linker, as is conventional for cc-like toolchains.
type ccToolchain struct {
	language string
	command  string
	ruleName string // "cc" or "cxx"
	archiver string

	globalCompileFlags []string
	globalLinkFlags    []string
	globalLibs         []string
}

// newCCToolchain builds a cc-family descriptor. command falls back to
// defaultCommand when the injected variable (CC/CXX) is unset.
func newCCToolchain(language, command, defaultCommand, ruleName string, compileFlags, linkFlags []string, vars Vars) *ccToolchain {
	if command == "" {
		command = defaultCommand
	}
	archiver := vars("AR")
	if archiver == "" {
		archiver = "ar"
	}
	return &ccToolchain{
		language:           language,
		command:            command,
		ruleName:           ruleName,
		archiver:           archiver,
		globalCompileFlags: compileFlags,
		globalLinkFlags:    linkFlags,
		globalLibs:         splitFlags(vars("LDLIBS")),
	}
}

func (t *ccToolchain) Language() string { return t.language }
func (t *ccToolchain) Family() Family   { return FamilyCC }

func (t *ccToolchain) ObjectFile(name string) string { return name + ".o" }
func (t *ccToolchain) Executable(name string) string { return name }

func (t *ccToolchain) StaticLibrary(name string) string {
	dir, base := path.Split(name)
	return dir + "lib" + base + ".a"
}

func (t *ccToolchain) SharedLibrary(name string) string {
	dir, base := path.Split(name)
	return dir + "lib" + base + ".so"
}

func (t *ccToolchain) CompileRule() string { return t.ruleName }
func (t *ccToolchain) LinkRule() string    { return "link_" + t.ruleName }
func (t *ccToolchain) ArchiveRule() string { return "ar" }

func (t *ccToolchain) CompileTemplate() []string {
	return []string{t.command, "$flags", "-c", "$in", "-o", "$out"}
}

// LinkTemplate keeps library flags after the inputs; cc-style linkers resolve
// symbols left to right.
func (t *ccToolchain) LinkTemplate() []string {
	return []string{t.command, "$flags", "$in", "$libs", "-o", "$out"}
}

func (t *ccToolchain) ArchiveTemplate() []string {
	return []string{t.archiver, "rcs", "$out", "$in"}
}

func (t *ccToolchain) GlobalCompileFlags() []string { return t.globalCompileFlags }

func (t *ccToolchain) GlobalLinkFlags() []string { return t.globalLinkFlags }

func (t *ccToolchain) PICFlags() []string { return []string{"-fPIC"} }

func (t *ccToolchain) SharedLinkFlags() []string { return []string{"-shared", "-fPIC"} }

func (t *ccToolchain) IncludeDir(dir string) []string { return []string{"-I" + dir} }

func (t *ccToolchain) LibDir(dir string) []string { return []string{"-L" + dir} }

func (t *ccToolchain) LinkLib(name string) []string { return []string{"-l" + name} }

// splitFlags splits whitespace-separated flag variables (CFLAGS and friends)
// into argv tokens. Empty inputs contribute nothing.
func splitFlags(values ...string) []string {
	var out []string
	for _, v := range values {
		out = append(out, strings.Fields(v)...)
	}
	return out
}
