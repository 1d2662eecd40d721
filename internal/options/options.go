// Package options implements the project option schema: typed, validated
// configuration values declared by the project and overridable per
// invocation. Resolution happens exactly once per generation; the resolved
// set is exposed to the description's evaluation context as an immutable
// object value.
package options

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// InvalidOptionError reports a declaration, override, or validation problem
// with a named option.
type InvalidOptionError struct {
	Name   string
	Reason string
}

// Error implements the error interface.
func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("invalid option %q: %s", e.Name, e.Reason)
}

// Decl is a single declared option: name, cty type, default value, optional
// enum choices, and help text.
type Decl struct {
	Name    string
	Type    cty.Type
	Default cty.Value
	Help    string
	Values  []cty.Value // non-empty makes the option an enum
}

// Schema holds the declared options in declaration order.
type Schema struct {
	decls  []*Decl
	byName map[string]*Decl
}

// NewSchema returns an empty option schema.
func NewSchema() *Schema {
	return &Schema{byName: make(map[string]*Decl)}
}

// Declare adds an option to the schema. The default must conform to the
// declared type and, for enums, be one of the allowed values.
func (s *Schema) Declare(d *Decl) error {
	if d.Name == "" {
		return &InvalidOptionError{Name: d.Name, Reason: "option name must not be empty"}
	}
	if _, exists := s.byName[d.Name]; exists {
		return &InvalidOptionError{Name: d.Name, Reason: "declared twice"}
	}
	if d.Default == cty.NilVal {
		return &InvalidOptionError{Name: d.Name, Reason: "missing default value"}
	}

	converted, err := convert.Convert(d.Default, d.Type)
	if err != nil {
		return &InvalidOptionError{
			Name:   d.Name,
			Reason: fmt.Sprintf("default does not conform to type %s: %s", d.Type.FriendlyName(), err),
		}
	}
	d.Default = converted

	for i, v := range d.Values {
		cv, err := convert.Convert(v, d.Type)
		if err != nil {
			return &InvalidOptionError{
				Name:   d.Name,
				Reason: fmt.Sprintf("enum value #%d does not conform to type %s: %s", i+1, d.Type.FriendlyName(), err),
			}
		}
		d.Values[i] = cv
	}
	if len(d.Values) > 0 && !containsValue(d.Values, d.Default) {
		return &InvalidOptionError{Name: d.Name, Reason: "default is not one of the allowed values"}
	}

	s.decls = append(s.decls, d)
	s.byName[d.Name] = d
	return nil
}

// Decls returns the declared options in declaration order.
func (s *Schema) Decls() []*Decl {
	return s.decls
}

// Override is one externally supplied option value, as a raw string. Layers
// are applied in order: project-level overrides first, then invocation-level
// ones, each later layer shadowing earlier ones.
type Override struct {
	Name  string
	Value string
}

// Resolve merges declared defaults with the given override layers and
// validates the result. It fails with InvalidOptionError on unknown names,
// type mismatches, or enum violations, before any graph work happens.
func (s *Schema) Resolve(layers ...[]Override) (*Resolved, error) {
	values := make(map[string]cty.Value, len(s.decls))
	for _, d := range s.decls {
		values[d.Name] = d.Default
	}

	for _, layer := range layers {
		for _, o := range layer {
			d, ok := s.byName[o.Name]
			if !ok {
				return nil, &InvalidOptionError{Name: o.Name, Reason: "not declared by this project"}
			}
			v, err := parseValue(o.Value, d.Type)
			if err != nil {
				return nil, &InvalidOptionError{
					Name:   o.Name,
					Reason: fmt.Sprintf("cannot convert %q to %s: %s", o.Value, d.Type.FriendlyName(), err),
				}
			}
			if len(d.Values) > 0 && !containsValue(d.Values, v) {
				return nil, &InvalidOptionError{
					Name:   o.Name,
					Reason: fmt.Sprintf("%q is not one of the allowed values", o.Value),
				}
			}
			values[o.Name] = v
		}
	}

	return newResolved(s, values), nil
}

// containsValue reports whether v equals any member of vals.
func containsValue(vals []cty.Value, v cty.Value) bool {
	for _, candidate := range vals {
		if candidate.RawEquals(v) {
			return true
		}
	}
	return false
}
