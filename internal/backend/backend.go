// Package backend defines the contract every build-plan emitter implements.
// Emitters are independent and interchangeable: a validated graph in, one
// self-contained backend-native artifact out. No emitter may depend on
// another emitter's output.
package backend

import (
	"fmt"
	"io"

	"github.com/vk/planforge/internal/graph"
)

// Emitter renders a validated graph into one backend's native syntax.
type Emitter interface {
	// Name is the backend's selection key ("ninja", "make").
	Name() string
	// Filename is the conventional artifact name in the build directory.
	Filename() string
	// Emit writes the complete build plan. It must either render the whole
	// graph or fail; partial emission is not allowed.
	Emit(g *graph.Graph, w io.Writer) error
}

// UnsupportedEdgeKindError reports an edge construct the selected backend
// cannot express. Emission fails rather than silently downgrading to a
// stronger dependency, which would change rebuild semantics.
type UnsupportedEdgeKindError struct {
	Backend string
	Kind    string
}

// Error implements the error interface.
func (e *UnsupportedEdgeKindError) Error() string {
	return fmt.Sprintf("backend %q cannot express %s edges", e.Backend, e.Kind)
}

// EmitError wraps a failure while rendering or writing one backend's
// artifact, so callers can distinguish emission failures from description and
// graph errors.
type EmitError struct {
	Backend string
	Err     error
}

// Error implements the error interface.
func (e *EmitError) Error() string {
	return fmt.Sprintf("emitting %s build plan: %s", e.Backend, e.Err)
}

// Unwrap exposes the underlying error.
func (e *EmitError) Unwrap() error {
	return e.Err
}
