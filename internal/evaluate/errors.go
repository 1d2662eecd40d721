package evaluate

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// DuplicateTargetError reports two target declarations sharing one name.
type DuplicateTargetError struct {
	Name     string
	First    hcl.Range
	Second   hcl.Range
	KindName string
}

// Error implements the error interface.
func (e *DuplicateTargetError) Error() string {
	return fmt.Sprintf("%s: duplicate target name %q (first declared at %s)",
		e.Second, e.Name, e.First)
}

// UndeclaredTargetError reports a dependency on a target that has not been
// declared yet. Forward references fail immediately; there is no deferred
// resolution pass.
type UndeclaredTargetError struct {
	Name     string
	Referrer string
	Site     hcl.Range
}

// Error implements the error interface.
func (e *UndeclaredTargetError) Error() string {
	return fmt.Sprintf("%s: target %q depends on undeclared target %q",
		e.Site, e.Referrer, e.Name)
}
