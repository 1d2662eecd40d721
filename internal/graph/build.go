package graph

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/vk/planforge/internal/ctxlog"
	"github.com/vk/planforge/internal/evaluate"
	"github.com/vk/planforge/internal/toolchain"
)

// Build constructs a complete, validated dependency graph from the evaluated
// target registry.
//
// Three passes: (1) expand each target into edges, interning file nodes by
// canonical path with eager output-conflict detection; (2) cycle detection
// over the induced path graph; (3) every producer-less input must exist in
// the provided source filesystem view. The graph is immutable after Build
// returns successfully.
func Build(ctx context.Context, reg *evaluate.Registry, sourceRoot string, srcFS fs.FS) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: starting graph construction.")

	b := &builder{
		g:       New(sourceRoot),
		reg:     reg,
		primary: make(map[*evaluate.Target][]*FileNode),
	}

	for _, t := range reg.Targets {
		if err := b.expandTarget(t); err != nil {
			return nil, err
		}
	}
	logger.Debug("Build: target expansion complete.", "nodes", len(b.g.Nodes), "edges", len(b.g.Edges))

	if err := b.g.detectCycles(); err != nil {
		return nil, err
	}
	logger.Debug("Build: cycle detection passed.")

	if err := b.checkDanglingInputs(srcFS); err != nil {
		return nil, err
	}
	logger.Debug("Build: source existence check passed.")

	return b.g, nil
}

// builder carries per-run expansion state.
type builder struct {
	g   *Graph
	reg *evaluate.Registry

	// primary maps each target to the output nodes downstream targets consume.
	primary map[*evaluate.Target][]*FileNode
}

// expandTarget converts one target into its edges.
func (b *builder) expandTarget(t *evaluate.Target) error {
	switch t.Kind {
	case evaluate.Executable, evaluate.StaticLibrary, evaluate.SharedLibrary:
		return b.expandCompiled(t)
	case evaluate.CustomCommand:
		return b.expandCustomCommand(t)
	case evaluate.Alias:
		return b.expandAlias(t)
	default:
		return fmt.Errorf("target %q: unknown kind %v", t.Name, t.Kind)
	}
}

// expandCompiled produces one compile edge per source plus a link or archive
// edge, then a phony alias when the target name differs from the artifact
// path.
func (b *builder) expandCompiled(t *evaluate.Target) error {
	tc := t.Toolchain

	compileFlags := b.compileFlags(t, tc)
	orderOnly := b.orderOnlyDeps(t)

	var objects []*FileNode
	for _, src := range t.Sources {
		srcNode := b.g.Node(src)
		objNode := b.g.Node(tc.ObjectFile(path.Join("obj", t.Name, stripExt(src))))
		edge := &Edge{
			Rule:      tc.CompileRule(),
			Template:  tc.CompileTemplate(),
			Flags:     compileFlags,
			Inputs:    []*FileNode{srcNode},
			OrderOnly: orderOnly,
			Outputs:   []*FileNode{objNode},
			Kind:      Normal,
			Owner:     t.Name,
		}
		if err := b.g.AddEdge(edge); err != nil {
			return err
		}
		objects = append(objects, objNode)
	}

	var artifact *FileNode
	switch t.Kind {
	case evaluate.StaticLibrary:
		artifact = b.g.Node(tc.StaticLibrary(t.Name))
		edge := &Edge{
			Rule:     tc.ArchiveRule(),
			Template: tc.ArchiveTemplate(),
			Inputs:   objects,
			Outputs:  []*FileNode{artifact},
			Kind:     Normal,
			Owner:    t.Name,
		}
		if err := b.g.AddEdge(edge); err != nil {
			return err
		}

	case evaluate.SharedLibrary, evaluate.Executable:
		if t.Kind == evaluate.SharedLibrary {
			artifact = b.g.Node(tc.SharedLibrary(t.Name))
		} else {
			artifact = b.g.Node(tc.Executable(t.Name))
		}

		linkFlags := append([]string(nil), tc.GlobalLinkFlags()...)
		if t.Kind == evaluate.SharedLibrary {
			linkFlags = append(linkFlags, tc.SharedLinkFlags()...)
		}

		libNodes, libFlags := b.linkLibraries(t, tc)
		edge := &Edge{
			Rule:     tc.LinkRule(),
			Template: tc.LinkTemplate(),
			Flags:    linkFlags,
			Libs:     libFlags,
			Inputs:   objects,
			Implicit: libNodes,
			Outputs:  []*FileNode{artifact},
			Kind:     Normal,
			Owner:    t.Name,
		}
		if err := b.g.AddEdge(edge); err != nil {
			return err
		}
	}

	b.primary[t] = []*FileNode{artifact}
	b.g.Defaults = append(b.g.Defaults, artifact)
	return b.aliasFor(t, []*FileNode{artifact})
}

// expandCustomCommand produces a single edge with the user's argv.
func (b *builder) expandCustomCommand(t *evaluate.Target) error {
	var inputs []*FileNode
	for _, in := range t.Inputs {
		inputs = append(inputs, b.g.Node(in))
	}
	var outputs []*FileNode
	for _, out := range t.Outputs {
		outputs = append(outputs, b.g.Node(out))
	}

	edge := &Edge{
		Rule:      "cmd_" + t.Name,
		Template:  t.Command,
		Inputs:    inputs,
		OrderOnly: b.orderOnlyDeps(t),
		Outputs:   outputs,
		Kind:      Normal,
		Owner:     t.Name,
	}
	if err := b.g.AddEdge(edge); err != nil {
		return err
	}

	b.primary[t] = outputs
	b.g.Defaults = append(b.g.Defaults, outputs...)
	return b.aliasFor(t, outputs)
}

// expandAlias produces a phony edge grouping its dependencies' outputs.
func (b *builder) expandAlias(t *evaluate.Target) error {
	var inputs []*FileNode
	for _, dep := range t.Deps {
		inputs = append(inputs, b.primary[dep]...)
	}

	aliasNode := b.g.Node(t.Name)
	edge := &Edge{
		Inputs:  inputs,
		Outputs: []*FileNode{aliasNode},
		Kind:    Phony,
		Owner:   t.Name,
	}
	if err := b.g.AddEdge(edge); err != nil {
		return err
	}
	b.primary[t] = []*FileNode{aliasNode}
	return nil
}

// aliasFor adds a phony alias named after the target, unless the target name
// already is the artifact path (then the build statement itself serves as the
// alias).
func (b *builder) aliasFor(t *evaluate.Target, outputs []*FileNode) error {
	for _, out := range outputs {
		if out.Path == t.Name {
			return nil
		}
	}
	return b.g.AddEdge(&Edge{
		Inputs:  outputs,
		Outputs: []*FileNode{b.g.Node(t.Name)},
		Kind:    Phony,
		Owner:   t.Name,
	})
}

// compileFlags assembles the $flags group for a target's compile edges:
// global flags for the language, then per-target flags, then computed include
// flags. Fixed prefix flags live in the toolchain template, positional paths
// come last; the four-group ordering is contractual.
func (b *builder) compileFlags(t *evaluate.Target, tc toolchain.Descriptor) []string {
	var flags []string
	flags = append(flags, tc.GlobalCompileFlags()...)
	flags = append(flags, b.reg.GlobalFlags(t.Language)...)
	flags = append(flags, t.Flags...)
	if t.Kind == evaluate.SharedLibrary {
		flags = append(flags, tc.PICFlags()...)
	}
	for _, dir := range b.includeDirs(t) {
		if b.g.SourceRoot != "" {
			dir = path.Join(b.g.SourceRoot, dir)
		}
		flags = append(flags, tc.IncludeDir(dir)...)
	}
	return flags
}

// includeDirs collects the target's include directories plus those exposed by
// its library dependencies, first occurrence wins.
func (b *builder) includeDirs(t *evaluate.Target) []string {
	var dirs []string
	dirs = append(dirs, t.Includes...)
	for _, dep := range t.Deps {
		if dep.IsLibrary() {
			dirs = append(dirs, dep.Includes...)
		}
	}
	return uniques(dirs)
}

// linkLibraries derives the implicit library inputs and the $libs flag group
// from a target's library dependencies.
func (b *builder) linkLibraries(t *evaluate.Target, tc toolchain.Descriptor) ([]*FileNode, []string) {
	var nodes []*FileNode
	var dirs []string
	var libs []string
	for _, dep := range t.Deps {
		if !dep.IsLibrary() {
			continue
		}
		for _, n := range b.primary[dep] {
			nodes = append(nodes, n)
			dirs = append(dirs, path.Dir(n.Path))
		}
		libs = append(libs, tc.LinkLib(dep.Name)...)
	}

	var flags []string
	for _, dir := range uniques(dirs) {
		flags = append(flags, tc.LibDir(dir)...)
	}
	flags = append(flags, libs...)
	return nodes, flags
}

// orderOnlyDeps returns the outputs of non-library dependencies: they must
// exist before this target's steps run but never make them stale.
func (b *builder) orderOnlyDeps(t *evaluate.Target) []*FileNode {
	var nodes []*FileNode
	for _, dep := range t.Deps {
		if dep.IsLibrary() {
			continue
		}
		nodes = append(nodes, b.primary[dep]...)
	}
	return nodes
}

// checkDanglingInputs verifies every producer-less input exists in the source
// tree.
func (b *builder) checkDanglingInputs(srcFS fs.FS) error {
	for _, e := range b.g.Edges {
		for _, lists := range [][]*FileNode{e.Inputs, e.Implicit, e.OrderOnly} {
			for _, in := range lists {
				if in.Producer != nil {
					continue
				}
				if _, err := fs.Stat(srcFS, in.Path); err != nil {
					return &DanglingInputError{Path: in.Path, Owner: e.Owner}
				}
			}
		}
	}
	return nil
}

// stripExt removes the file extension from a path.
func stripExt(p string) string {
	return strings.TrimSuffix(p, path.Ext(p))
}

// uniques returns the input order-preserved with duplicates removed.
func uniques(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
