// Package ninja emits a graph as a Ninja build file. One rule per distinct
// command template, one build statement per edge, with per-build flag
// bindings; phony edges use ninja's built-in phony rule and order-only
// dependencies render after ||.
package ninja

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/vk/planforge/internal/graph"
)

const banner = "# Do not edit this file! It was automatically generated by planforge.\n\n"

// Emitter renders ninja build files.
type Emitter struct{}

// New returns a ninja emitter.
func New() *Emitter {
	return &Emitter{}
}

// Name implements backend.Emitter.
func (e *Emitter) Name() string { return "ninja" }

// Filename implements backend.Emitter.
func (e *Emitter) Filename() string { return "build.ninja" }

// Emit implements backend.Emitter. Output is a pure function of the graph's
// declaration order: rules appear in first-use order, build statements in
// edge order.
func (e *Emitter) Emit(g *graph.Graph, w io.Writer) error {
	var sb strings.Builder
	sb.WriteString(banner)

	if err := writeRules(g, &sb); err != nil {
		return err
	}
	for _, edge := range g.Edges {
		writeBuild(g, edge, &sb)
	}
	if len(g.Defaults) > 0 {
		sb.WriteString("default")
		for _, n := range g.Defaults {
			sb.WriteString(" " + escapeInput(g.RenderPath(n)))
		}
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// writeRules emits the deduplicated rule table. Two edges sharing a rule name
// must share a command template; anything else is a bug in the graph builder.
func writeRules(g *graph.Graph, sb *strings.Builder) error {
	seen := make(map[string][]string)
	for _, edge := range g.Edges {
		if edge.Kind == graph.Phony {
			continue
		}
		if prev, ok := seen[edge.Rule]; ok {
			if !slices.Equal(prev, edge.Template) {
				return fmt.Errorf("rule %q has two different command templates", edge.Rule)
			}
			continue
		}
		seen[edge.Rule] = edge.Template

		sb.WriteString("rule " + edge.Rule + "\n")
		sb.WriteString("  command = " + commandText(edge.Template) + "\n\n")
	}
	return nil
}

// writeBuild emits one build statement with its variable bindings.
func writeBuild(g *graph.Graph, edge *graph.Edge, sb *strings.Builder) {
	sb.WriteString("build")
	for _, out := range edge.Outputs {
		sb.WriteString(" " + escapeOutput(g.RenderPath(out)))
	}

	rule := edge.Rule
	if edge.Kind == graph.Phony {
		rule = "phony"
	}
	sb.WriteString(": " + rule)

	for _, in := range edge.Inputs {
		sb.WriteString(" " + escapeInput(g.RenderPath(in)))
	}
	if len(edge.Implicit) > 0 {
		sb.WriteString(" |")
		for _, in := range edge.Implicit {
			sb.WriteString(" " + escapeInput(g.RenderPath(in)))
		}
	}
	if len(edge.OrderOnly) > 0 {
		sb.WriteString(" ||")
		for _, in := range edge.OrderOnly {
			sb.WriteString(" " + escapeInput(g.RenderPath(in)))
		}
	}
	sb.WriteString("\n")

	if len(edge.Flags) > 0 && templateUses(edge.Template, "$flags") {
		sb.WriteString("  flags = " + flagsText(edge.Flags) + "\n")
	}
	if len(edge.Libs) > 0 && templateUses(edge.Template, "$libs") {
		sb.WriteString("  libs = " + flagsText(edge.Libs) + "\n")
	}
	sb.WriteString("\n")
}

// templateUses reports whether a template references a variable token.
func templateUses(template []string, name string) bool {
	return slices.Contains(template, name)
}
