// Package makefile emits a graph as a Makefile. Each edge becomes one rule;
// phony edges are collected into .PHONY, and order-only dependencies use the
// order-only prerequisite syntax after |. The posix flavor restricts output
// to POSIX make, which has no order-only prerequisites and therefore rejects
// graphs that need them.
package makefile

import (
	"fmt"
	"io"
	"strings"

	"github.com/vk/planforge/internal/backend"
	"github.com/vk/planforge/internal/graph"
)

const banner = "# Do not edit this file! It was automatically generated by planforge.\n\n"

// flavor selects the make dialect.
type flavor int

const (
	gnu flavor = iota
	posix
)

// Emitter renders Makefiles.
type Emitter struct {
	flavor flavor
}

// New returns a GNU make emitter.
func New() *Emitter {
	return &Emitter{flavor: gnu}
}

// NewPosix returns an emitter restricted to POSIX make. Graphs with
// order-only dependencies fail with UnsupportedEdgeKindError.
func NewPosix() *Emitter {
	return &Emitter{flavor: posix}
}

// Name implements backend.Emitter.
func (e *Emitter) Name() string {
	if e.flavor == posix {
		return "posix-make"
	}
	return "make"
}

// Filename implements backend.Emitter.
func (e *Emitter) Filename() string { return "Makefile" }

// Emit implements backend.Emitter.
func (e *Emitter) Emit(g *graph.Graph, w io.Writer) error {
	var sb strings.Builder
	sb.WriteString(banner)

	phony := []string{}
	for _, edge := range g.Edges {
		if edge.Kind == graph.Phony {
			for _, out := range edge.Outputs {
				phony = append(phony, out.Path)
			}
		}
	}

	// The generated `all` rule must come first so it is the default goal. A
	// user target literally named "all" takes its place.
	_, userAll := g.Lookup("all")
	if !userAll && len(g.Defaults) > 0 {
		phony = append([]string{"all"}, phony...)
	}
	if len(phony) > 0 {
		sb.WriteString(".PHONY: " + strings.Join(phony, " ") + "\n\n")
	}
	if !userAll && len(g.Defaults) > 0 {
		deps, err := e.renderPaths(g, g.Defaults)
		if err != nil {
			return err
		}
		sb.WriteString("all: " + strings.Join(deps, " ") + "\n\n")
	}

	for _, edge := range g.Edges {
		if err := e.writeRule(g, edge, &sb); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// writeRule emits one edge. Multi-output edges render as a primary rule plus
// empty-recipe sibling rules depending on the primary, the conventional make
// encoding for grouped outputs.
func (e *Emitter) writeRule(g *graph.Graph, edge *graph.Edge, sb *strings.Builder) error {
	if e.flavor == posix && len(edge.OrderOnly) > 0 {
		return &backend.UnsupportedEdgeKindError{Backend: e.Name(), Kind: "order-only dependency"}
	}

	outs, err := e.renderPaths(g, edge.Outputs)
	if err != nil {
		return err
	}

	var prereqs []string
	for _, lists := range [][]*graph.FileNode{edge.Inputs, edge.Implicit} {
		rendered, err := e.renderPaths(g, lists)
		if err != nil {
			return err
		}
		prereqs = append(prereqs, rendered...)
	}

	sb.WriteString(outs[0] + ":")
	for _, p := range prereqs {
		sb.WriteString(" " + p)
	}
	if len(edge.OrderOnly) > 0 {
		rendered, err := e.renderPaths(g, edge.OrderOnly)
		if err != nil {
			return err
		}
		sb.WriteString(" | " + strings.Join(rendered, " "))
	}
	sb.WriteString("\n")

	if edge.Kind != graph.Phony {
		sb.WriteString("\t" + e.renderCommand(g, edge) + "\n")
	}
	sb.WriteString("\n")

	for _, sibling := range outs[1:] {
		sb.WriteString(sibling + ": " + outs[0] + "\n\n")
	}
	return nil
}

// renderCommand expands the edge's template into a concrete recipe line:
// placeholders substituted with rendered paths and flag groups, every token
// shell-quoted, dollars doubled for make.
func (e *Emitter) renderCommand(g *graph.Graph, edge *graph.Edge) string {
	ins := quoteAll(g.RenderPaths(edge.Inputs))
	outs := quoteAll(g.RenderPaths(edge.Outputs))
	flags := quoteAll(edge.Flags)
	libs := quoteAll(edge.Libs)

	var parts []string
	for _, tok := range edge.Template {
		switch tok {
		case "$in":
			parts = append(parts, ins...)
		case "$out":
			parts = append(parts, outs...)
		case "$flags":
			parts = append(parts, flags...)
		case "$libs":
			parts = append(parts, libs...)
		default:
			if strings.Contains(tok, "$in") || strings.Contains(tok, "$out") {
				tok = strings.ReplaceAll(tok, "$in", strings.Join(ins, " "))
				tok = strings.ReplaceAll(tok, "$out", strings.Join(outs, " "))
				parts = append(parts, tok)
			} else {
				parts = append(parts, shellQuote(tok))
			}
		}
	}
	return strings.ReplaceAll(strings.Join(parts, " "), "$", "$$")
}

// renderPaths renders node paths for rule positions. Make cannot quote
// prerequisite paths, so whitespace or colons in a path are an emission
// error rather than a corrupt Makefile.
func (e *Emitter) renderPaths(g *graph.Graph, nodes []*graph.FileNode) ([]string, error) {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		p := g.RenderPath(n)
		if strings.ContainsAny(p, " \t:") {
			return nil, fmt.Errorf("path %q cannot be expressed in a Makefile rule", p)
		}
		out[i] = strings.ReplaceAll(p, "$", "$$")
	}
	return out, nil
}
