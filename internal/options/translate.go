// This file contains the logic for building an option Schema from the
// format-agnostic option declarations, including parsing HCL type
// expressions (e.g. `string`, `list(string)`) into cty types.

package options

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/planforge/internal/config"
)

// SchemaFromConfig builds an option schema from the declarations the loader
// produced. Option files are self-contained, so type, default, and enum
// expressions are evaluated with no evaluation context.
func SchemaFromConfig(decls []*config.OptionDecl) (*Schema, error) {
	schema := NewSchema()
	for _, od := range decls {
		ty, err := typeExprToCtyType(od.Type)
		if err != nil {
			return nil, &InvalidOptionError{Name: od.Name, Reason: err.Error()}
		}

		d := &Decl{Name: od.Name, Type: ty, Help: od.Help}

		if od.Default != nil {
			val, diags := od.Default.Value(nil)
			if diags.HasErrors() {
				return nil, &InvalidOptionError{
					Name:   od.Name,
					Reason: fmt.Sprintf("invalid default value: %s", diags),
				}
			}
			if !val.IsNull() {
				d.Default = val
			}
		}

		if od.Values != nil {
			vals, diags := od.Values.Value(nil)
			if diags.HasErrors() {
				return nil, &InvalidOptionError{
					Name:   od.Name,
					Reason: fmt.Sprintf("invalid enum values: %s", diags),
				}
			}
			if !vals.IsNull() {
				if !vals.CanIterateElements() {
					return nil, &InvalidOptionError{Name: od.Name, Reason: "values must be a list"}
				}
				for it := vals.ElementIterator(); it.Next(); {
					_, v := it.Element()
					d.Values = append(d.Values, v)
				}
			}
		}

		if err := schema.Declare(d); err != nil {
			return nil, err
		}
	}
	return schema, nil
}

// typeExprToCtyType converts an HCL type expression into its cty.Type
// equivalent.
func typeExprToCtyType(expr hcl.Expression) (cty.Type, error) {
	if expr == nil {
		return cty.String, nil
	}

	switch v := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		if len(v.Args) != 1 {
			return cty.DynamicPseudoType, fmt.Errorf("type constructors (list, set) require exactly one argument, got %d", len(v.Args))
		}
		elementType, err := typeExprToCtyType(v.Args[0])
		if err != nil {
			return cty.DynamicPseudoType, err
		}
		switch v.Name {
		case "list":
			return cty.List(elementType), nil
		case "set":
			return cty.Set(elementType), nil
		default:
			return cty.DynamicPseudoType, fmt.Errorf("unknown type constructor function %q", v.Name)
		}

	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return cty.DynamicPseudoType, fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
		}
		switch rootName := v.Traversal.RootName(); rootName {
		case "string":
			return cty.String, nil
		case "number":
			return cty.Number, nil
		case "bool":
			return cty.Bool, nil
		default:
			return cty.DynamicPseudoType, fmt.Errorf("unknown primitive type %q", rootName)
		}

	default:
		return cty.DynamicPseudoType, fmt.Errorf("unsupported expression for type definition: %T", v)
	}
}
