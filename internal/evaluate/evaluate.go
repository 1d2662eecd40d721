// Package evaluate executes a build description exactly once, reducing the
// declaration model to an ordered registry of concrete targets. Option
// references are resolved through the HCL evaluation context; dependencies
// must point at previously declared targets.
package evaluate

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/planforge/internal/config"
	"github.com/vk/planforge/internal/ctxlog"
	"github.com/vk/planforge/internal/options"
	"github.com/vk/planforge/internal/toolchain"
)

// Evaluate walks the declarations in source order and produces the target
// registry. It fails with DuplicateTargetError, UndeclaredTargetError, or a
// propagated UnsupportedToolchainError; any of these is terminal for the run.
func Evaluate(ctx context.Context, model *config.Model, opts *options.Resolved, toolchains *toolchain.Registry) (*Registry, error) {
	logger := ctxlog.FromContext(ctx)

	reg := &Registry{
		DefaultLanguage: "c",
		byName:          make(map[string]*Target),
		globalFlags:     make(map[string][]string),
	}
	if model.Project != nil {
		reg.ProjectName = model.Project.Name
		if model.Project.Language != "" {
			reg.DefaultLanguage = model.Project.Language
		}
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"option": opts.Object(),
		},
	}

	for _, decl := range model.Decls {
		switch d := decl.(type) {
		case *config.GlobalFlagsDecl:
			if err := evalGlobalFlags(reg, d, evalCtx); err != nil {
				return nil, err
			}
		case *config.TargetDecl:
			target, err := evalTarget(reg, d, evalCtx, toolchains)
			if err != nil {
				return nil, err
			}
			reg.Targets = append(reg.Targets, target)
			reg.byName[target.Name] = target
			logger.Debug("Declared target.", "name", target.Name, "kind", target.Kind.String())
		default:
			return nil, fmt.Errorf("%s: unknown declaration type %T", decl.DeclRange(), decl)
		}
	}

	logger.Debug("Evaluation complete.", "targets", len(reg.Targets))
	return reg, nil
}

// evalGlobalFlags appends one global_flags block to the per-language
// accumulator. An empty language applies to the project default.
func evalGlobalFlags(reg *Registry, d *config.GlobalFlagsDecl, evalCtx *hcl.EvalContext) error {
	flags, err := evalStringList(d.Flags, evalCtx)
	if err != nil {
		return fmt.Errorf("%s: global_flags: %w", d.Range, err)
	}
	lang := d.Language
	if lang == "" {
		lang = reg.DefaultLanguage
	}
	reg.globalFlags[lang] = append(reg.globalFlags[lang], flags...)
	return nil
}

// evalTarget reduces one target declaration to a concrete Target.
func evalTarget(reg *Registry, d *config.TargetDecl, evalCtx *hcl.EvalContext, toolchains *toolchain.Registry) (*Target, error) {
	if prev, exists := reg.byName[d.Name]; exists {
		return nil, &DuplicateTargetError{
			Name:     d.Name,
			First:    prev.Site,
			Second:   d.Range,
			KindName: d.Kind.String(),
		}
	}

	t := &Target{Name: d.Name, Site: d.Range}

	var err error
	if t.Sources, err = evalStringList(d.Sources, evalCtx); err != nil {
		return nil, fmt.Errorf("%s: %s %q: sources: %w", d.Range, d.Kind, d.Name, err)
	}
	if t.Includes, err = evalStringList(d.Includes, evalCtx); err != nil {
		return nil, fmt.Errorf("%s: %s %q: includes: %w", d.Range, d.Kind, d.Name, err)
	}
	if t.Flags, err = evalStringList(d.Flags, evalCtx); err != nil {
		return nil, fmt.Errorf("%s: %s %q: flags: %w", d.Range, d.Kind, d.Name, err)
	}

	depNames, err := evalStringList(d.Deps, evalCtx)
	if err != nil {
		return nil, fmt.Errorf("%s: %s %q: deps: %w", d.Range, d.Kind, d.Name, err)
	}
	for _, name := range depNames {
		dep, ok := reg.byName[name]
		if !ok {
			return nil, &UndeclaredTargetError{Name: name, Referrer: d.Name, Site: d.Range}
		}
		t.Deps = append(t.Deps, dep)
	}

	switch d.Kind {
	case config.Executable:
		t.Kind = Executable
		if len(t.Sources) == 0 {
			return nil, fmt.Errorf("%s: executable %q: sources must not be empty", d.Range, d.Name)
		}

	case config.Library:
		kind, err := evalOptionalString(d.LibKind, evalCtx, "static")
		if err != nil {
			return nil, fmt.Errorf("%s: library %q: kind: %w", d.Range, d.Name, err)
		}
		switch kind {
		case "static":
			t.Kind = StaticLibrary
		case "shared":
			t.Kind = SharedLibrary
		default:
			return nil, fmt.Errorf("%s: library %q: kind must be \"static\" or \"shared\", got %q", d.Range, d.Name, kind)
		}
		if len(t.Sources) == 0 {
			return nil, fmt.Errorf("%s: library %q: sources must not be empty", d.Range, d.Name)
		}

	case config.CustomCommand:
		t.Kind = CustomCommand
		if t.Inputs, err = evalStringList(d.Inputs, evalCtx); err != nil {
			return nil, fmt.Errorf("%s: custom_command %q: inputs: %w", d.Range, d.Name, err)
		}
		if t.Outputs, err = evalStringList(d.Outputs, evalCtx); err != nil {
			return nil, fmt.Errorf("%s: custom_command %q: outputs: %w", d.Range, d.Name, err)
		}
		if t.Command, err = evalStringList(d.Command, evalCtx); err != nil {
			return nil, fmt.Errorf("%s: custom_command %q: command: %w", d.Range, d.Name, err)
		}
		if len(t.Outputs) == 0 {
			return nil, fmt.Errorf("%s: custom_command %q: outputs must not be empty", d.Range, d.Name)
		}
		if len(t.Command) == 0 {
			return nil, fmt.Errorf("%s: custom_command %q: command must not be empty", d.Range, d.Name)
		}

	case config.Alias:
		t.Kind = Alias
	}

	if t.Kind == Executable || t.IsLibrary() {
		t.Language = toolchain.TargetLanguage(t.Sources, reg.DefaultLanguage)
		desc, err := toolchains.Lookup(t.Language, "")
		if err != nil {
			return nil, err
		}
		t.Toolchain = desc
	}

	return t, nil
}

// evalStringList evaluates an expression into a list of strings. A nil
// expression yields nil.
func evalStringList(expr hcl.Expression, evalCtx *hcl.EvalContext) ([]string, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, nil
	}
	converted, err := convert.Convert(val, cty.List(cty.String))
	if err != nil {
		return nil, fmt.Errorf("expected a list of strings: %w", err)
	}
	var out []string
	for it := converted.ElementIterator(); it.Next(); {
		_, v := it.Element()
		out = append(out, v.AsString())
	}
	return out, nil
}

// evalOptionalString evaluates an expression into a string, applying the
// fallback when the expression is absent or null.
func evalOptionalString(expr hcl.Expression, evalCtx *hcl.EvalContext, fallback string) (string, error) {
	if expr == nil {
		return fallback, nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return "", diags
	}
	if val.IsNull() {
		return fallback, nil
	}
	converted, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("expected a string: %w", err)
	}
	return converted.AsString(), nil
}
