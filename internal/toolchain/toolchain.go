// Package toolchain maps a language, platform, and compiler family to the
// command templates used to compile, link, and archive build artifacts.
// Templates are plain argv token lists with $flags/$libs/$in/$out
// placeholders; all quoting happens at emission time in the backends, never
// here.
package toolchain

import (
	"fmt"
	"os"
	"runtime"
)

// Platform is the coarse platform class a toolchain targets.
type Platform string

const (
	PlatformPosix   Platform = "posix"
	PlatformWindows Platform = "windows"
)

// HostPlatform returns the platform class of the machine planforge runs on.
func HostPlatform() Platform {
	if runtime.GOOS == "windows" {
		return PlatformWindows
	}
	return PlatformPosix
}

// Family identifies a compiler family.
type Family string

const (
	// FamilyCC is the gcc/clang-style posix driver family.
	FamilyCC Family = "cc"
	// FamilyMsvc is the Microsoft Visual C++ family.
	FamilyMsvc Family = "msvc"
)

// Vars looks up an environment-style variable (CC, CXXFLAGS, ...). The
// registry never reads the ambient environment directly; callers inject a
// lookup so repeated generation runs stay isolated.
type Vars func(name string) string

// EnvVars returns a Vars backed by the real process environment.
func EnvVars() Vars {
	return os.Getenv
}

// UnsupportedToolchainError reports that no toolchain exists for the
// requested language, platform, and family combination.
type UnsupportedToolchainError struct {
	Language string
	Platform Platform
	Family   Family
}

// Error implements the error interface.
func (e *UnsupportedToolchainError) Error() string {
	return fmt.Sprintf("unsupported toolchain: language %q, platform %q, family %q",
		e.Language, e.Platform, e.Family)
}

// Descriptor is a resolved toolchain for one language. A Descriptor is
// immutable once returned by the registry and is shared by reference across
// every edge of that language.
type Descriptor interface {
	// Language returns the language this descriptor compiles.
	Language() string
	// Family returns the compiler family.
	Family() Family

	// Artifact naming. Each takes a path without extension (relative to the
	// build directory) and returns the platform-conventional artifact path.
	ObjectFile(name string) string
	Executable(name string) string
	StaticLibrary(name string) string
	SharedLibrary(name string) string

	// Rule names shared by all edges using the same command template, used by
	// backends to deduplicate their rule tables.
	CompileRule() string
	LinkRule() string
	ArchiveRule() string

	// Command templates. Token lists; the $flags, $libs, $in, and $out
	// placeholders are bound per edge at emission time.
	CompileTemplate() []string
	LinkTemplate() []string
	ArchiveTemplate() []string

	// Flag construction. GlobalCompileFlags and GlobalLinkFlags come from the
	// injected variable lookup (CFLAGS and friends); the rest translate
	// abstract requirements into family-specific argv fragments.
	GlobalCompileFlags() []string
	GlobalLinkFlags() []string
	PICFlags() []string
	SharedLinkFlags() []string
	IncludeDir(dir string) []string
	LibDir(dir string) []string
	LinkLib(name string) []string
}

// cacheKey identifies a resolved descriptor.
type cacheKey struct {
	language string
	family   Family
}

// Registry resolves and caches toolchain descriptors for one generation run.
type Registry struct {
	platform Platform
	vars     Vars
	cache    map[cacheKey]Descriptor
}

// NewRegistry returns a registry for the given platform. vars may be nil, in
// which case every variable reads as empty and built-in defaults apply.
func NewRegistry(platform Platform, vars Vars) *Registry {
	if vars == nil {
		vars = func(string) string { return "" }
	}
	return &Registry{
		platform: platform,
		vars:     vars,
		cache:    make(map[cacheKey]Descriptor),
	}
}

// Platform returns the platform this registry resolves for.
func (r *Registry) Platform() Platform {
	return r.platform
}

// DefaultFamily returns the conventional compiler family for the registry's
// platform.
func (r *Registry) DefaultFamily() Family {
	if r.platform == PlatformWindows {
		return FamilyMsvc
	}
	return FamilyCC
}

// Lookup returns the descriptor for {language, platform, family}, or an
// UnsupportedToolchainError when no such toolchain exists. An empty family
// selects the platform default. Descriptors are cached per registry.
func (r *Registry) Lookup(language string, family Family) (Descriptor, error) {
	if family == "" {
		family = r.DefaultFamily()
	}

	key := cacheKey{language: language, family: family}
	if d, ok := r.cache[key]; ok {
		return d, nil
	}

	var d Descriptor
	switch family {
	case FamilyCC:
		switch language {
		case "c":
			d = newCCToolchain(language, r.vars("CC"), "cc", "cc",
				splitFlags(r.vars("CFLAGS"), r.vars("CPPFLAGS")), splitFlags(r.vars("LDFLAGS")), r.vars)
		case "c++":
			d = newCCToolchain(language, r.vars("CXX"), "c++", "cxx",
				splitFlags(r.vars("CXXFLAGS"), r.vars("CPPFLAGS")), splitFlags(r.vars("LDFLAGS")), r.vars)
		}
	case FamilyMsvc:
		if r.platform != PlatformWindows {
			break
		}
		switch language {
		case "c", "c++":
			d = newMsvcToolchain(language, splitFlags(r.vars("CFLAGS")), splitFlags(r.vars("LDFLAGS")))
		}
	}

	if d == nil {
		return nil, &UnsupportedToolchainError{Language: language, Platform: r.platform, Family: family}
	}
	r.cache[key] = d
	return d, nil
}
