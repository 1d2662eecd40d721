package toolchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapVars returns a Vars backed by a fixed map, so tests never touch the
// process environment.
func mapVars(m map[string]string) Vars {
	return func(name string) string { return m[name] }
}

func TestRegistryLookup(t *testing.T) {
	t.Run("posix default family is cc", func(t *testing.T) {
		r := NewRegistry(PlatformPosix, nil)
		d, err := r.Lookup("c++", "")
		require.NoError(t, err)
		assert.Equal(t, FamilyCC, d.Family())
		assert.Equal(t, "c++", d.Language())
	})

	t.Run("descriptors are cached per registry", func(t *testing.T) {
		r := NewRegistry(PlatformPosix, nil)
		a, err := r.Lookup("c", FamilyCC)
		require.NoError(t, err)
		b, err := r.Lookup("c", FamilyCC)
		require.NoError(t, err)
		assert.Same(t, a.(*ccToolchain), b.(*ccToolchain))
	})

	t.Run("msvc is unavailable off windows", func(t *testing.T) {
		r := NewRegistry(PlatformPosix, nil)
		_, err := r.Lookup("c++", FamilyMsvc)
		var tcErr *UnsupportedToolchainError
		require.ErrorAs(t, err, &tcErr)
		assert.Equal(t, "c++", tcErr.Language)
		assert.Equal(t, FamilyMsvc, tcErr.Family)
	})

	t.Run("unknown language fails", func(t *testing.T) {
		r := NewRegistry(PlatformPosix, nil)
		_, err := r.Lookup("fortran", "")
		var tcErr *UnsupportedToolchainError
		assert.ErrorAs(t, err, &tcErr)
	})

	t.Run("windows default family is msvc", func(t *testing.T) {
		r := NewRegistry(PlatformWindows, nil)
		d, err := r.Lookup("c++", "")
		require.NoError(t, err)
		assert.Equal(t, FamilyMsvc, d.Family())
	})
}

func TestCCToolchain(t *testing.T) {
	newCC := func(t *testing.T, vars map[string]string) Descriptor {
		r := NewRegistry(PlatformPosix, mapVars(vars))
		d, err := r.Lookup("c++", FamilyCC)
		require.NoError(t, err)
		return d
	}

	t.Run("default commands", func(t *testing.T) {
		d := newCC(t, nil)
		assert.Equal(t, []string{"c++", "$flags", "-c", "$in", "-o", "$out"}, d.CompileTemplate())
		assert.Equal(t, []string{"c++", "$flags", "$in", "$libs", "-o", "$out"}, d.LinkTemplate())
		assert.Equal(t, []string{"ar", "rcs", "$out", "$in"}, d.ArchiveTemplate())
	})

	t.Run("variables override commands and flags", func(t *testing.T) {
		d := newCC(t, map[string]string{
			"CXX":      "clang++",
			"CXXFLAGS": "-O2 -g",
			"CPPFLAGS": "-DNDEBUG",
			"LDFLAGS":  "-static",
			"AR":       "llvm-ar",
		})
		assert.Equal(t, "clang++", d.CompileTemplate()[0])
		assert.Equal(t, []string{"-O2", "-g", "-DNDEBUG"}, d.GlobalCompileFlags())
		assert.Equal(t, []string{"-static"}, d.GlobalLinkFlags())
		assert.Equal(t, "llvm-ar", d.ArchiveTemplate()[0])
	})

	t.Run("artifact naming", func(t *testing.T) {
		d := newCC(t, nil)
		assert.Equal(t, "obj/app/main.o", d.ObjectFile("obj/app/main"))
		assert.Equal(t, "app", d.Executable("app"))
		assert.Equal(t, "libgreeter.a", d.StaticLibrary("greeter"))
		assert.Equal(t, "out/libgreeter.so", d.SharedLibrary("out/greeter"))
	})

	t.Run("flag construction", func(t *testing.T) {
		d := newCC(t, nil)
		assert.Equal(t, []string{"-Iinclude"}, d.IncludeDir("include"))
		assert.Equal(t, []string{"-L."}, d.LibDir("."))
		assert.Equal(t, []string{"-lgreeter"}, d.LinkLib("greeter"))
		assert.Equal(t, []string{"-fPIC"}, d.PICFlags())
		assert.Equal(t, []string{"-shared", "-fPIC"}, d.SharedLinkFlags())
	})
}

func TestMsvcToolchain(t *testing.T) {
	r := NewRegistry(PlatformWindows, nil)
	d, err := r.Lookup("c++", FamilyMsvc)
	require.NoError(t, err)

	t.Run("artifact naming", func(t *testing.T) {
		assert.Equal(t, "main.obj", d.ObjectFile("main"))
		assert.Equal(t, "app.exe", d.Executable("app"))
		assert.Equal(t, "greeter.lib", d.StaticLibrary("greeter"))
		assert.Equal(t, "greeter.dll", d.SharedLibrary("greeter"))
	})

	t.Run("flag construction", func(t *testing.T) {
		assert.Equal(t, []string{"/Iinclude"}, d.IncludeDir("include"))
		assert.Equal(t, []string{"/LIBPATH:lib"}, d.LibDir("lib"))
		assert.Equal(t, []string{"greeter.lib"}, d.LinkLib("greeter"))
		assert.Empty(t, d.PICFlags())
		assert.Equal(t, []string{"/DLL"}, d.SharedLinkFlags())
	})
}

func TestTargetLanguage(t *testing.T) {
	t.Run("any c++ source wins", func(t *testing.T) {
		assert.Equal(t, "c++", TargetLanguage([]string{"a.c", "b.cpp"}, "c"))
	})
	t.Run("pure c stays c", func(t *testing.T) {
		assert.Equal(t, "c", TargetLanguage([]string{"a.c", "b.c"}, "c++"))
	})
	t.Run("unknown extensions fall back", func(t *testing.T) {
		assert.Equal(t, "c++", TargetLanguage([]string{"data.txt"}, "c++"))
	})
}
