// Package schema defines the HCL block shapes accepted in planforge build
// descriptions. Attribute values that may reference resolved options are kept
// as unevaluated hcl.Expression; the evaluator supplies the EvalContext.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// Project is the optional `project "<name>"` header block.
type Project struct {
	Language string `hcl:"language,optional"`
	Version  string `hcl:"version,optional"`
}

// GlobalFlags is a `global_flags` block adding compile flags for one
// language. Multiple blocks accumulate in source order.
type GlobalFlags struct {
	Language string         `hcl:"language,optional"`
	Flags    hcl.Expression `hcl:"flags"`
}

// Executable is an `executable "<name>"` block.
type Executable struct {
	Sources  hcl.Expression `hcl:"sources"`
	Includes hcl.Expression `hcl:"includes,optional"`
	Flags    hcl.Expression `hcl:"flags,optional"`
	Deps     hcl.Expression `hcl:"deps,optional"`
}

// Library is a `library "<name>"` block. Kind selects static or shared.
type Library struct {
	Kind     hcl.Expression `hcl:"kind,optional"`
	Sources  hcl.Expression `hcl:"sources"`
	Includes hcl.Expression `hcl:"includes,optional"`
	Flags    hcl.Expression `hcl:"flags,optional"`
	Deps     hcl.Expression `hcl:"deps,optional"`
}

// CustomCommand is a `custom_command "<name>"` block: one opaque build step.
// Command tokens may use the $in/$out placeholders, substituted per backend.
type CustomCommand struct {
	Inputs  hcl.Expression `hcl:"inputs,optional"`
	Outputs hcl.Expression `hcl:"outputs"`
	Command hcl.Expression `hcl:"command"`
	Deps    hcl.Expression `hcl:"deps,optional"`
}

// Alias is an `alias "<name>"` block: a pure phony grouping target.
type Alias struct {
	Deps hcl.Expression `hcl:"deps"`
}

// Option is an `option "<name>"` block from the sibling options file.
type Option struct {
	Type    hcl.Expression `hcl:"type"`
	Default hcl.Expression `hcl:"default,optional"`
	Help    string         `hcl:"help,optional"`
	Values  hcl.Expression `hcl:"values,optional"`
}
