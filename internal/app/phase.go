package app

import "fmt"

// Phase identifies which stage of a generation run failed, so the CLI can
// map failures onto distinct exit codes for scripting.
type Phase int

const (
	// PhaseDescription covers option resolution, loading, and evaluation.
	PhaseDescription Phase = iota
	// PhaseGraph covers graph construction and validation.
	PhaseGraph
	// PhaseEmission covers backend rendering and artifact writes.
	PhaseEmission
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseDescription:
		return "description"
	case PhaseGraph:
		return "graph"
	case PhaseEmission:
		return "emission"
	default:
		return "unknown"
	}
}

// PhaseError tags an error with the generation phase it occurred in. The
// underlying typed error stays reachable through Unwrap.
type PhaseError struct {
	Phase Phase
	Err   error
}

// Error implements the error interface.
func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Phase, e.Err)
}

// Unwrap exposes the underlying error.
func (e *PhaseError) Unwrap() error {
	return e.Err
}
