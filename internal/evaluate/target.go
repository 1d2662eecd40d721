package evaluate

import (
	"github.com/hashicorp/hcl/v2"

	"github.com/vk/planforge/internal/toolchain"
)

// Kind discriminates the concrete target types after evaluation. Library
// declarations split into static and shared here; downstream code never
// re-inspects the declaration.
type Kind int

const (
	Executable Kind = iota
	StaticLibrary
	SharedLibrary
	CustomCommand
	Alias
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case Executable:
		return "executable"
	case StaticLibrary:
		return "static library"
	case SharedLibrary:
		return "shared library"
	case CustomCommand:
		return "custom command"
	case Alias:
		return "alias"
	default:
		return "unknown"
	}
}

// Target is one fully evaluated build unit. All attribute expressions have
// been reduced to concrete values and dependencies resolved to earlier
// targets. Targets are immutable once the evaluator returns.
type Target struct {
	Name     string
	Kind     Kind
	Language string

	Sources  []string
	Includes []string
	Flags    []string
	Deps     []*Target

	// Custom command fields. Command tokens may contain the $in/$out
	// placeholders, substituted per backend at emission time.
	Inputs  []string
	Outputs []string
	Command []string

	// Toolchain is nil for custom commands and aliases.
	Toolchain toolchain.Descriptor

	Site hcl.Range
}

// IsLibrary reports whether the target produces a linkable library artifact.
func (t *Target) IsLibrary() bool {
	return t.Kind == StaticLibrary || t.Kind == SharedLibrary
}

// Registry is the ordered collection of evaluated targets plus the
// per-language global flags, consumed by the graph builder. It is populated
// exactly once per generation run.
type Registry struct {
	ProjectName     string
	DefaultLanguage string
	Targets         []*Target

	byName      map[string]*Target
	globalFlags map[string][]string
}

// Target returns the named target, if declared.
func (r *Registry) Target(name string) (*Target, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// GlobalFlags returns the accumulated global compile flags for a language, in
// declaration order.
func (r *Registry) GlobalFlags(language string) []string {
	return r.globalFlags[language]
}
