package graph

import (
	"path"
)

// Kind is the closed set of edge kinds. Order-only dependencies are a
// property of an edge's input lists rather than a kind of their own; see
// Edge.OrderOnly.
type Kind int

const (
	// Normal is a real build step producing file outputs.
	Normal Kind = iota
	// Phony is an alias edge with no command; its outputs are names, not
	// files.
	Phony
)

// String returns the kind's name as backends report it.
func (k Kind) String() string {
	switch k {
	case Normal:
		return "normal"
	case Phony:
		return "phony"
	default:
		return "unknown"
	}
}

// FileNode is a path-addressable artifact in the graph. A node with a nil
// Producer is a source input; every other node has exactly one producing
// edge, enforced at insertion.
type FileNode struct {
	// Path is the canonical slash-separated path. Build outputs are relative
	// to the build directory; source inputs are relative to the source
	// directory and rendered through Graph.RenderPath.
	Path string

	// Producer is the edge that creates this node, or nil for sources.
	Producer *Edge
}

// Edge is one build step.
type Edge struct {
	// Rule names the command template shared by edges of the same shape, for
	// backend rule deduplication. Empty only for phony edges.
	Rule string

	// Template is the argv token list; the $flags, $libs, $in, and $out
	// placeholders are bound at emission time. Nil for phony edges.
	Template []string

	// Flags binds $flags: fixed prefixes live in the template, then global
	// and per-target user flags, then computed include flags, in that order.
	Flags []string

	// Libs binds $libs: computed library-search and library flags, kept
	// separate because cc-style linkers require them after the inputs.
	Libs []string

	Inputs    []*FileNode // explicit inputs, bound to $in
	Implicit  []*FileNode // affect staleness but are not part of $in
	OrderOnly []*FileNode // affect scheduling only, never staleness
	Outputs   []*FileNode

	Kind Kind

	// Owner is the declaring target's name, for diagnostics.
	Owner string
}

// Graph is the validated dependency DAG. Nodes and Edges enumerate in a
// deterministic function of declaration order; backends must produce
// byte-identical output for identical input, so maps are only lookup indexes
// here, never iteration sources.
type Graph struct {
	// SourceRoot is the path from the build directory to the source
	// directory, applied when rendering source-input paths.
	SourceRoot string

	Nodes    []*FileNode
	Edges    []*Edge
	Defaults []*FileNode

	byPath map[string]*FileNode
}

// New returns an empty graph.
func New(sourceRoot string) *Graph {
	return &Graph{
		SourceRoot: sourceRoot,
		byPath:     make(map[string]*FileNode),
	}
}

// Node interns the FileNode for a path, creating it on first use. The path is
// cleaned to its canonical form so two spellings of one file cannot produce
// distinct nodes.
func (g *Graph) Node(p string) *FileNode {
	p = path.Clean(p)
	if n, ok := g.byPath[p]; ok {
		return n
	}
	n := &FileNode{Path: p}
	g.byPath[p] = n
	g.Nodes = append(g.Nodes, n)
	return n
}

// Lookup returns the node for a path without creating it.
func (g *Graph) Lookup(p string) (*FileNode, bool) {
	n, ok := g.byPath[path.Clean(p)]
	return n, ok
}

// AddEdge appends an edge, claiming its outputs. A second producer for any
// output path fails with ConflictingOutputError.
func (g *Graph) AddEdge(e *Edge) error {
	for _, out := range e.Outputs {
		if out.Producer != nil {
			return &ConflictingOutputError{
				Path:        out.Path,
				FirstOwner:  out.Producer.Owner,
				SecondOwner: e.Owner,
			}
		}
	}
	for _, out := range e.Outputs {
		out.Producer = e
	}
	g.Edges = append(g.Edges, e)
	return nil
}

// RenderPath returns the path a backend should emit for a node: build outputs
// as-is, source inputs joined onto the source root.
func (g *Graph) RenderPath(n *FileNode) string {
	if n.Producer == nil && g.SourceRoot != "" {
		return path.Join(g.SourceRoot, n.Path)
	}
	return n.Path
}

// RenderPaths maps RenderPath over a node list.
func (g *Graph) RenderPaths(nodes []*FileNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = g.RenderPath(n)
	}
	return out
}
