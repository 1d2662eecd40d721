package app_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/planforge/internal/app"
	"github.com/vk/planforge/internal/backend"
	"github.com/vk/planforge/internal/graph"
	"github.com/vk/planforge/internal/hcl"
	"github.com/vk/planforge/internal/options"
	"github.com/vk/planforge/internal/toolchain"
)

const simpleDescription = `
project "simple" {
  language = "c++"
}

global_flags {
  flags = ["-DNAME=\"${option.name}\""]
}

custom_command "version_header" {
  inputs  = ["gen.sh"]
  outputs = ["version.hpp"]
  command = ["sh", "$in", "$out"]
}

executable "app" {
  sources = ["main.cpp"]
  deps    = ["version_header"]
}
`

const simpleOptions = `
option "name" {
  type    = string
  default = "app"
}
`

// writeProject lays out a minimal buildable project in a temp directory.
func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		hcl.DescriptionFile: simpleDescription,
		hcl.OptionsFile:     simpleOptions,
		"main.cpp":          "int main() { return 0; }\n",
		"gen.sh":            "echo > \"$1\"\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func newTestConfig(t *testing.T, srcDir, buildDir string, backends []string, overrides []options.Override) *app.Config {
	t.Helper()
	cfg, err := app.NewConfig(app.Config{
		SourceDir: srcDir,
		BuildDir:  buildDir,
		Backends:  backends,
		Overrides: overrides,
		Platform:  toolchain.PlatformPosix,
		Vars:      func(string) string { return "" },
		LogLevel:  "error",
	})
	require.NoError(t, err)
	return cfg
}

func runApp(t *testing.T, cfg *app.Config) error {
	t.Helper()
	a := app.NewApp(io.Discard, cfg, hcl.NewLoader())
	return a.Run(context.Background())
}

func TestRun(t *testing.T) {
	srcDir := writeProject(t)
	buildDir := filepath.Join(t.TempDir(), "build")
	cfg := newTestConfig(t, srcDir, buildDir,
		[]string{"ninja", "make"},
		[]options.Override{{Name: "name", Value: "demo"}})

	require.NoError(t, runApp(t, cfg))

	ninjaPlan, err := os.ReadFile(filepath.Join(buildDir, "build.ninja"))
	require.NoError(t, err)
	makePlan, err := os.ReadFile(filepath.Join(buildDir, "Makefile"))
	require.NoError(t, err)

	t.Run("the override reaches both plans", func(t *testing.T) {
		assert.Contains(t, string(ninjaPlan), `-DNAME="demo"`)
		assert.Contains(t, string(makePlan), `-DNAME="demo"`)
	})

	t.Run("source paths are relative to the build directory", func(t *testing.T) {
		rel, err := filepath.Rel(buildDir, srcDir)
		require.NoError(t, err)
		assert.Contains(t, string(ninjaPlan), filepath.ToSlash(rel)+"/main.cpp")
	})

	t.Run("the invocation is recorded", func(t *testing.T) {
		rec, err := app.LoadRecord(buildDir)
		require.NoError(t, err)
		assert.Equal(t, srcDir, rec.SourceDir)
		assert.Equal(t, []string{"ninja", "make"}, rec.Backends)
		assert.Equal(t, []options.Override{{Name: "name", Value: "demo"}}, rec.Overrides())
	})

	t.Run("regeneration is byte-identical", func(t *testing.T) {
		require.NoError(t, runApp(t, cfg))
		again, err := os.ReadFile(filepath.Join(buildDir, "build.ninja"))
		require.NoError(t, err)
		assert.Equal(t, ninjaPlan, again)
	})
}

func TestRunProjectOverrides(t *testing.T) {
	srcDir := writeProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, hcl.OverridesFile),
		[]byte("name = \"projwide\"\n"), 0o644))

	t.Run("project overrides shadow the default", func(t *testing.T) {
		buildDir := filepath.Join(t.TempDir(), "build")
		cfg := newTestConfig(t, srcDir, buildDir, nil, nil)
		require.NoError(t, runApp(t, cfg))

		plan, err := os.ReadFile(filepath.Join(buildDir, "build.ninja"))
		require.NoError(t, err)
		assert.Contains(t, string(plan), `-DNAME="projwide"`)
	})

	t.Run("invocation overrides shadow project overrides", func(t *testing.T) {
		buildDir := filepath.Join(t.TempDir(), "build")
		cfg := newTestConfig(t, srcDir, buildDir, nil,
			[]options.Override{{Name: "name", Value: "cli"}})
		require.NoError(t, runApp(t, cfg))

		plan, err := os.ReadFile(filepath.Join(buildDir, "build.ninja"))
		require.NoError(t, err)
		assert.Contains(t, string(plan), `-DNAME="cli"`)
		assert.NotContains(t, string(plan), "projwide")
	})
}

func TestRunFailureLeavesArtifactsAlone(t *testing.T) {
	t.Run("a failing backend blocks every write", func(t *testing.T) {
		srcDir := writeProject(t)
		buildDir := t.TempDir()
		prior := []byte("# prior valid plan\n")
		require.NoError(t, os.WriteFile(filepath.Join(buildDir, "build.ninja"), prior, 0o644))

		// posix-make cannot express the order-only edge, so emission fails as
		// a whole; the ninja plan that rendered fine must not land either.
		cfg := newTestConfig(t, srcDir, buildDir, []string{"ninja", "posix-make"}, nil)
		err := runApp(t, cfg)
		var phErr *app.PhaseError
		require.ErrorAs(t, err, &phErr)
		assert.Equal(t, app.PhaseEmission, phErr.Phase)

		got, err := os.ReadFile(filepath.Join(buildDir, "build.ninja"))
		require.NoError(t, err)
		assert.Equal(t, prior, got)
		assert.NoFileExists(t, filepath.Join(buildDir, "Makefile"))
	})

	t.Run("an unknown backend name blocks every write", func(t *testing.T) {
		srcDir := writeProject(t)
		buildDir := filepath.Join(t.TempDir(), "build")
		cfg := newTestConfig(t, srcDir, buildDir, []string{"ninja", "scons"}, nil)

		require.Error(t, runApp(t, cfg))
		assert.NoFileExists(t, filepath.Join(buildDir, "build.ninja"))
	})
}

func TestRecordAbsolutePaths(t *testing.T) {
	srcDir := writeProject(t)
	buildDir := filepath.Join(t.TempDir(), "build")

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(filepath.Dir(srcDir)))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	cfg := newTestConfig(t, filepath.Base(srcDir), buildDir, nil, nil)
	require.NoError(t, runApp(t, cfg))

	rec, err := app.LoadRecord(buildDir)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(rec.SourceDir), "recorded %q", rec.SourceDir)
	assert.Equal(t, filepath.Base(srcDir), filepath.Base(rec.SourceDir))
}

func TestRunPhaseErrors(t *testing.T) {
	t.Run("bad override is a description failure", func(t *testing.T) {
		srcDir := writeProject(t)
		cfg := newTestConfig(t, srcDir, filepath.Join(t.TempDir(), "build"),
			nil, []options.Override{{Name: "nope", Value: "x"}})

		err := runApp(t, cfg)
		var phErr *app.PhaseError
		require.ErrorAs(t, err, &phErr)
		assert.Equal(t, app.PhaseDescription, phErr.Phase)

		var optErr *options.InvalidOptionError
		assert.ErrorAs(t, err, &optErr)
	})

	t.Run("missing source file is a graph failure", func(t *testing.T) {
		srcDir := writeProject(t)
		require.NoError(t, os.Remove(filepath.Join(srcDir, "main.cpp")))
		cfg := newTestConfig(t, srcDir, filepath.Join(t.TempDir(), "build"), nil, nil)

		err := runApp(t, cfg)
		var phErr *app.PhaseError
		require.ErrorAs(t, err, &phErr)
		assert.Equal(t, app.PhaseGraph, phErr.Phase)

		var dangErr *graph.DanglingInputError
		assert.ErrorAs(t, err, &dangErr)
	})

	t.Run("posix make rejects the gated compile", func(t *testing.T) {
		srcDir := writeProject(t)
		cfg := newTestConfig(t, srcDir, filepath.Join(t.TempDir(), "build"),
			[]string{"posix-make"}, nil)

		err := runApp(t, cfg)
		var phErr *app.PhaseError
		require.ErrorAs(t, err, &phErr)
		assert.Equal(t, app.PhaseEmission, phErr.Phase)

		var kindErr *backend.UnsupportedEdgeKindError
		assert.ErrorAs(t, err, &kindErr)
	})

	t.Run("unknown backend name fails before emission", func(t *testing.T) {
		srcDir := writeProject(t)
		cfg := newTestConfig(t, srcDir, filepath.Join(t.TempDir(), "build"),
			[]string{"scons"}, nil)

		err := runApp(t, cfg)
		assert.ErrorContains(t, err, "scons")
	})
}
