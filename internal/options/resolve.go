package options

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Resolved is the immutable outcome of option resolution. It is safe to share
// across the remainder of an evaluation.
type Resolved struct {
	schema *Schema
	values map[string]cty.Value
	object cty.Value
}

func newResolved(schema *Schema, values map[string]cty.Value) *Resolved {
	obj := cty.EmptyObjectVal
	if len(values) > 0 {
		obj = cty.ObjectVal(values)
	}
	return &Resolved{schema: schema, values: values, object: obj}
}

// Value returns the resolved value for the named option.
func (r *Resolved) Value(name string) (cty.Value, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Object returns all resolved options as a single cty object value, suitable
// for exposing as `option.<name>` in an HCL evaluation context.
func (r *Resolved) Object() cty.Value {
	return r.object
}

// Pairs returns the resolved name/value pairs in declaration order, mainly
// for logging and the recorded-invocation file.
func (r *Resolved) Pairs() []struct {
	Name  string
	Value cty.Value
} {
	out := make([]struct {
		Name  string
		Value cty.Value
	}, 0, len(r.schema.decls))
	for _, d := range r.schema.decls {
		out = append(out, struct {
			Name  string
			Value cty.Value
		}{d.Name, r.values[d.Name]})
	}
	return out
}

// parseValue converts a raw override string into a value of the declared
// type. Strings pass through; bools and numbers are parsed strictly; lists
// split on commas. Anything else is a conversion failure.
func parseValue(raw string, ty cty.Type) (cty.Value, error) {
	switch {
	case ty == cty.String:
		return cty.StringVal(raw), nil

	case ty == cty.Bool:
		switch strings.ToLower(raw) {
		case "true", "yes", "on", "1":
			return cty.True, nil
		case "false", "no", "off", "0":
			return cty.False, nil
		}
		return cty.NilVal, fmt.Errorf("not a boolean")

	case ty == cty.Number:
		return convert.Convert(cty.StringVal(raw), cty.Number)

	case ty.IsListType() || ty.IsSetType():
		elemTy := ty.ElementType()
		if raw == "" {
			return cty.ListValEmpty(elemTy), nil
		}
		parts := strings.Split(raw, ",")
		elems := make([]cty.Value, 0, len(parts))
		for _, p := range parts {
			ev, err := parseValue(strings.TrimSpace(p), elemTy)
			if err != nil {
				return cty.NilVal, err
			}
			elems = append(elems, ev)
		}
		if ty.IsSetType() {
			return cty.SetVal(elems), nil
		}
		return cty.ListVal(elems), nil

	default:
		return cty.NilVal, fmt.Errorf("unsupported option type %s", ty.FriendlyName())
	}
}
