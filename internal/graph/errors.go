package graph

import (
	"fmt"
	"strings"
)

// ConflictingOutputError reports two edges producing the same output path.
// Path identity is the dedup key; a second producer is always an error, never
// a silent overwrite.
type ConflictingOutputError struct {
	Path        string
	FirstOwner  string
	SecondOwner string
}

// Error implements the error interface.
func (e *ConflictingOutputError) Error() string {
	return fmt.Sprintf("conflicting output: %q is produced by both %q and %q",
		e.Path, e.FirstOwner, e.SecondOwner)
}

// DanglingInputError reports an input that neither exists as a source file
// nor has a producing edge.
type DanglingInputError struct {
	Path  string
	Owner string
}

// Error implements the error interface.
func (e *DanglingInputError) Error() string {
	return fmt.Sprintf("dangling input: %q (consumed by %q) has no producing edge and does not exist in the source tree",
		e.Path, e.Owner)
}

// CycleError reports a dependency cycle. Path holds the full cycle, first
// node repeated at the end.
type CycleError struct {
	Path []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle: %s", strings.Join(e.Path, " -> "))
}
