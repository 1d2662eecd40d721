package graph

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/planforge/internal/evaluate"
	"github.com/vk/planforge/internal/toolchain"
)

// cxx returns the posix c++ descriptor with no environment influence.
func cxx(t *testing.T) toolchain.Descriptor {
	t.Helper()
	d, err := toolchain.NewRegistry(toolchain.PlatformPosix, nil).Lookup("c++", "")
	require.NoError(t, err)
	return d
}

func TestBuildExecutable(t *testing.T) {
	ctx := context.Background()
	app := &evaluate.Target{
		Name:      "app",
		Kind:      evaluate.Executable,
		Language:  "c++",
		Sources:   []string{"main.cpp", "util.cpp"},
		Flags:     []string{"-Wall"},
		Toolchain: cxx(t),
	}
	reg := &evaluate.Registry{Targets: []*evaluate.Target{app}}
	srcFS := fstest.MapFS{
		"main.cpp": &fstest.MapFile{},
		"util.cpp": &fstest.MapFile{},
	}

	g, err := Build(ctx, reg, "..", srcFS)
	require.NoError(t, err)

	// Two compile edges plus the link edge; the binary path equals the target
	// name, so no extra phony alias appears.
	require.Len(t, g.Edges, 3)

	compile := g.Edges[0]
	assert.Equal(t, "cxx", compile.Rule)
	assert.Equal(t, []string{"-Wall"}, compile.Flags)
	assert.Equal(t, []string{"main.cpp"}, nodePaths(compile.Inputs))
	assert.Equal(t, []string{"obj/app/main.o"}, nodePaths(compile.Outputs))

	link := g.Edges[2]
	assert.Equal(t, "link_cxx", link.Rule)
	assert.Equal(t, []string{"obj/app/main.o", "obj/app/util.o"}, nodePaths(link.Inputs))
	assert.Equal(t, []string{"app"}, nodePaths(link.Outputs))

	assert.Equal(t, []string{"app"}, nodePaths(g.Defaults))

	t.Run("source inputs render through the source root", func(t *testing.T) {
		assert.Equal(t, "../main.cpp", g.RenderPath(compile.Inputs[0]))
		assert.Equal(t, "obj/app/main.o", g.RenderPath(compile.Outputs[0]))
	})
}

func TestBuildLibraryLinking(t *testing.T) {
	ctx := context.Background()
	tc := cxx(t)

	gen := &evaluate.Target{
		Name:    "version_header",
		Kind:    evaluate.CustomCommand,
		Inputs:  []string{"gen.sh"},
		Outputs: []string{"version.hpp"},
		Command: []string{"sh", "$in", "$out"},
	}
	lib := &evaluate.Target{
		Name:      "greeter",
		Kind:      evaluate.StaticLibrary,
		Language:  "c++",
		Sources:   []string{"src/greeter.cpp"},
		Includes:  []string{"include"},
		Deps:      []*evaluate.Target{gen},
		Toolchain: tc,
	}
	app := &evaluate.Target{
		Name:      "demo",
		Kind:      evaluate.Executable,
		Language:  "c++",
		Sources:   []string{"src/demo.cpp"},
		Deps:      []*evaluate.Target{lib},
		Toolchain: tc,
	}
	reg := &evaluate.Registry{Targets: []*evaluate.Target{gen, lib, app}}
	srcFS := fstest.MapFS{
		"gen.sh":          &fstest.MapFile{},
		"src/greeter.cpp": &fstest.MapFile{},
		"src/demo.cpp":    &fstest.MapFile{},
	}

	g, err := Build(ctx, reg, "../src", srcFS)
	require.NoError(t, err)

	var compileGreeter, compileDemo, archive, link *Edge
	for _, e := range g.Edges {
		switch {
		case e.Rule == "cxx" && e.Owner == "greeter":
			compileGreeter = e
		case e.Rule == "cxx" && e.Owner == "demo":
			compileDemo = e
		case e.Rule == "ar":
			archive = e
		case e.Rule == "link_cxx":
			link = e
		}
	}
	require.NotNil(t, compileGreeter)
	require.NotNil(t, compileDemo)
	require.NotNil(t, archive)
	require.NotNil(t, link)

	t.Run("custom command outputs gate compiles as order-only", func(t *testing.T) {
		assert.Equal(t, []string{"version.hpp"}, nodePaths(compileGreeter.OrderOnly))
	})

	t.Run("include directories are rooted at the source tree", func(t *testing.T) {
		assert.Contains(t, compileGreeter.Flags, "-I../src/include")
	})

	t.Run("dependents inherit library includes", func(t *testing.T) {
		assert.Contains(t, compileDemo.Flags, "-I../src/include")
	})

	t.Run("archive collects the library objects", func(t *testing.T) {
		assert.Equal(t, []string{"obj/greeter/src/greeter.o"}, nodePaths(archive.Inputs))
		assert.Equal(t, []string{"libgreeter.a"}, nodePaths(archive.Outputs))
	})

	t.Run("link consumes the archive implicitly with -L and -l flags", func(t *testing.T) {
		assert.Equal(t, []string{"libgreeter.a"}, nodePaths(link.Implicit))
		assert.Equal(t, []string{"-L.", "-lgreeter"}, link.Libs)
	})

	t.Run("library alias is phony over the archive", func(t *testing.T) {
		alias, ok := g.Lookup("greeter")
		require.True(t, ok)
		require.NotNil(t, alias.Producer)
		assert.Equal(t, Phony, alias.Producer.Kind)
		assert.Equal(t, []string{"libgreeter.a"}, nodePaths(alias.Producer.Inputs))
	})
}

func TestBuildAlias(t *testing.T) {
	ctx := context.Background()
	app := &evaluate.Target{
		Name:      "app",
		Kind:      evaluate.Executable,
		Language:  "c++",
		Sources:   []string{"main.cpp"},
		Toolchain: cxx(t),
	}
	all := &evaluate.Target{
		Name: "everything",
		Kind: evaluate.Alias,
		Deps: []*evaluate.Target{app},
	}
	reg := &evaluate.Registry{Targets: []*evaluate.Target{app, all}}
	srcFS := fstest.MapFS{"main.cpp": &fstest.MapFile{}}

	g, err := Build(ctx, reg, "", srcFS)
	require.NoError(t, err)

	n, ok := g.Lookup("everything")
	require.True(t, ok)
	require.NotNil(t, n.Producer)
	assert.Equal(t, Phony, n.Producer.Kind)
	assert.Equal(t, []string{"app"}, nodePaths(n.Producer.Inputs))

	// Aliases never become defaults.
	assert.Equal(t, []string{"app"}, nodePaths(g.Defaults))
}

func TestBuildConflictingOutput(t *testing.T) {
	ctx := context.Background()
	a := &evaluate.Target{
		Name:    "first",
		Kind:    evaluate.CustomCommand,
		Outputs: []string{"shared.txt"},
		Command: []string{"touch", "$out"},
	}
	b := &evaluate.Target{
		Name:    "second",
		Kind:    evaluate.CustomCommand,
		Outputs: []string{"./shared.txt"}, // same file, different spelling
		Command: []string{"touch", "$out"},
	}
	reg := &evaluate.Registry{Targets: []*evaluate.Target{a, b}}

	_, err := Build(ctx, reg, "", fstest.MapFS{})
	var confErr *ConflictingOutputError
	require.ErrorAs(t, err, &confErr)
	assert.Equal(t, "shared.txt", confErr.Path)
	assert.Equal(t, "first", confErr.FirstOwner)
	assert.Equal(t, "second", confErr.SecondOwner)
}

func TestBuildCycle(t *testing.T) {
	ctx := context.Background()
	a := &evaluate.Target{
		Name:    "a",
		Kind:    evaluate.CustomCommand,
		Inputs:  []string{"b.out"},
		Outputs: []string{"a.out"},
		Command: []string{"cp", "$in", "$out"},
	}
	b := &evaluate.Target{
		Name:    "b",
		Kind:    evaluate.CustomCommand,
		Inputs:  []string{"a.out"},
		Outputs: []string{"b.out"},
		Command: []string{"cp", "$in", "$out"},
	}
	reg := &evaluate.Registry{Targets: []*evaluate.Target{a, b}}

	_, err := Build(ctx, reg, "", fstest.MapFS{})
	var cycErr *CycleError
	require.ErrorAs(t, err, &cycErr)

	// The reported path names every participant and closes on itself.
	assert.Contains(t, cycErr.Path, "a.out")
	assert.Contains(t, cycErr.Path, "b.out")
	assert.Equal(t, cycErr.Path[0], cycErr.Path[len(cycErr.Path)-1])
}

func TestBuildDanglingInput(t *testing.T) {
	ctx := context.Background()
	app := &evaluate.Target{
		Name:      "app",
		Kind:      evaluate.Executable,
		Language:  "c++",
		Sources:   []string{"missing.cpp"},
		Toolchain: cxx(t),
	}
	reg := &evaluate.Registry{Targets: []*evaluate.Target{app}}

	_, err := Build(ctx, reg, "", fstest.MapFS{})
	var dangErr *DanglingInputError
	require.ErrorAs(t, err, &dangErr)
	assert.Equal(t, "missing.cpp", dangErr.Path)
	assert.Equal(t, "app", dangErr.Owner)
}

func TestBuildDeterminism(t *testing.T) {
	ctx := context.Background()
	newReg := func() *evaluate.Registry {
		tc := cxx(t)
		lib := &evaluate.Target{
			Name: "util", Kind: evaluate.StaticLibrary, Language: "c++",
			Sources: []string{"u1.cpp", "u2.cpp"}, Toolchain: tc,
		}
		app := &evaluate.Target{
			Name: "app", Kind: evaluate.Executable, Language: "c++",
			Sources: []string{"main.cpp"}, Deps: []*evaluate.Target{lib}, Toolchain: tc,
		}
		return &evaluate.Registry{Targets: []*evaluate.Target{lib, app}}
	}
	srcFS := fstest.MapFS{
		"u1.cpp":   &fstest.MapFile{},
		"u2.cpp":   &fstest.MapFile{},
		"main.cpp": &fstest.MapFile{},
	}

	g1, err := Build(ctx, newReg(), "..", srcFS)
	require.NoError(t, err)
	g2, err := Build(ctx, newReg(), "..", srcFS)
	require.NoError(t, err)

	assert.Equal(t, nodePaths(g1.Nodes), nodePaths(g2.Nodes))
	require.Equal(t, len(g1.Edges), len(g2.Edges))
	for i := range g1.Edges {
		assert.Equal(t, nodePaths(g1.Edges[i].Outputs), nodePaths(g2.Edges[i].Outputs))
		assert.Equal(t, g1.Edges[i].Flags, g2.Edges[i].Flags)
	}
}

func TestNodeInterning(t *testing.T) {
	g := New("")
	a := g.Node("dir/../file.txt")
	b := g.Node("file.txt")
	assert.Same(t, a, b)
	assert.Len(t, g.Nodes, 1)
}

// nodePaths extracts raw node paths, ignoring source-root rendering.
func nodePaths(nodes []*FileNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Path
	}
	return out
}
