package config

import (
	"github.com/hashicorp/hcl/v2"
)

// Model is the unified, format-agnostic representation of a project's build
// description: the project header, option declarations, and the ordered list
// of target declarations. Declaration order is preserved because forward
// references between targets are an error and because the resulting graph
// must enumerate deterministically.
type Model struct {
	Project   *Project
	Options   []*OptionDecl
	Overrides []*OverrideDecl
	Decls     []Decl
}

// Project is the optional project header.
type Project struct {
	Name     string
	Language string
	Version  string
}

// TargetKind discriminates the target-declaring block types.
type TargetKind int

const (
	Executable TargetKind = iota
	Library
	CustomCommand
	Alias
)

// String returns the block-type name for the kind.
func (k TargetKind) String() string {
	switch k {
	case Executable:
		return "executable"
	case Library:
		return "library"
	case CustomCommand:
		return "custom_command"
	case Alias:
		return "alias"
	default:
		return "unknown"
	}
}

// Decl is one top-level declaration from the description, in source order.
type Decl interface {
	// DeclRange reports where the declaration appears, for diagnostics.
	DeclRange() hcl.Range
}

// TargetDecl is an executable, library, custom_command, or alias block with
// its attribute expressions still unevaluated.
type TargetDecl struct {
	Kind     TargetKind
	Name     string
	Sources  hcl.Expression
	Includes hcl.Expression
	Flags    hcl.Expression
	Deps     hcl.Expression
	LibKind  hcl.Expression // library only
	Inputs   hcl.Expression // custom_command only
	Outputs  hcl.Expression // custom_command only
	Command  hcl.Expression // custom_command only
	Range    hcl.Range
}

// DeclRange implements Decl.
func (d *TargetDecl) DeclRange() hcl.Range { return d.Range }

// GlobalFlagsDecl accumulates compile flags for one language.
type GlobalFlagsDecl struct {
	Language string
	Flags    hcl.Expression
	Range    hcl.Range
}

// DeclRange implements Decl.
func (d *GlobalFlagsDecl) DeclRange() hcl.Range { return d.Range }

// OverrideDecl is one project-level option override from the overrides file.
// The value is carried as a raw string and validated against the option
// schema at resolution time, like an invocation override.
type OverrideDecl struct {
	Name  string
	Value string
	Range hcl.Range
}

// OptionDecl is a single option block from the options file, with its type,
// default, and enum-values expressions unevaluated.
type OptionDecl struct {
	Name    string
	Type    hcl.Expression
	Default hcl.Expression
	Help    string
	Values  hcl.Expression
	Range   hcl.Range
}
