// This file contains the logic for translating HCL blocks into the
// format-agnostic configuration model defined in the config package.

package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"

	"github.com/vk/planforge/internal/config"
	"github.com/vk/planforge/internal/schema"
)

// descriptionSchema enumerates the block types allowed at the top level of a
// build description. The loader walks body content with this schema so
// declarations are observed strictly in source order, which is what makes
// forward references detectable.
var descriptionSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "project", LabelNames: []string{"name"}},
		{Type: "global_flags"},
		{Type: "executable", LabelNames: []string{"name"}},
		{Type: "library", LabelNames: []string{"name"}},
		{Type: "custom_command", LabelNames: []string{"name"}},
		{Type: "alias", LabelNames: []string{"name"}},
	},
}

// translateDescription walks the description body in source order and appends
// the resulting declarations to the model.
func (l *Loader) translateDescription(body hcl.Body, model *config.Model) error {
	content, diags := body.Content(descriptionSchema)
	if diags.HasErrors() {
		return fmt.Errorf("invalid build description: %w", diags)
	}

	for _, block := range content.Blocks {
		switch block.Type {
		case "project":
			if model.Project != nil {
				return fmt.Errorf("%s: duplicate project block", block.DefRange)
			}
			var s schema.Project
			if diags := gohcl.DecodeBody(block.Body, nil, &s); diags.HasErrors() {
				return fmt.Errorf("invalid project block: %w", diags)
			}
			model.Project = &config.Project{
				Name:     block.Labels[0],
				Language: s.Language,
				Version:  s.Version,
			}

		case "global_flags":
			var s schema.GlobalFlags
			if diags := gohcl.DecodeBody(block.Body, nil, &s); diags.HasErrors() {
				return fmt.Errorf("invalid global_flags block: %w", diags)
			}
			model.Decls = append(model.Decls, &config.GlobalFlagsDecl{
				Language: s.Language,
				Flags:    s.Flags,
				Range:    block.DefRange,
			})

		case "executable":
			var s schema.Executable
			if diags := gohcl.DecodeBody(block.Body, nil, &s); diags.HasErrors() {
				return fmt.Errorf("invalid executable %q: %w", block.Labels[0], diags)
			}
			model.Decls = append(model.Decls, &config.TargetDecl{
				Kind:     config.Executable,
				Name:     block.Labels[0],
				Sources:  s.Sources,
				Includes: s.Includes,
				Flags:    s.Flags,
				Deps:     s.Deps,
				Range:    block.DefRange,
			})

		case "library":
			var s schema.Library
			if diags := gohcl.DecodeBody(block.Body, nil, &s); diags.HasErrors() {
				return fmt.Errorf("invalid library %q: %w", block.Labels[0], diags)
			}
			model.Decls = append(model.Decls, &config.TargetDecl{
				Kind:     config.Library,
				Name:     block.Labels[0],
				LibKind:  s.Kind,
				Sources:  s.Sources,
				Includes: s.Includes,
				Flags:    s.Flags,
				Deps:     s.Deps,
				Range:    block.DefRange,
			})

		case "custom_command":
			var s schema.CustomCommand
			if diags := gohcl.DecodeBody(block.Body, nil, &s); diags.HasErrors() {
				return fmt.Errorf("invalid custom_command %q: %w", block.Labels[0], diags)
			}
			model.Decls = append(model.Decls, &config.TargetDecl{
				Kind:    config.CustomCommand,
				Name:    block.Labels[0],
				Inputs:  s.Inputs,
				Outputs: s.Outputs,
				Command: s.Command,
				Deps:    s.Deps,
				Range:   block.DefRange,
			})

		case "alias":
			var s schema.Alias
			if diags := gohcl.DecodeBody(block.Body, nil, &s); diags.HasErrors() {
				return fmt.Errorf("invalid alias %q: %w", block.Labels[0], diags)
			}
			model.Decls = append(model.Decls, &config.TargetDecl{
				Kind:  config.Alias,
				Name:  block.Labels[0],
				Deps:  s.Deps,
				Range: block.DefRange,
			})
		}
	}
	return nil
}

// translateOption converts a single option block into the agnostic model.
func (l *Loader) translateOption(block *hcl.Block) (*config.OptionDecl, error) {
	var s schema.Option
	if diags := gohcl.DecodeBody(block.Body, nil, &s); diags.HasErrors() {
		return nil, fmt.Errorf("invalid option %q: %w", block.Labels[0], diags)
	}
	return &config.OptionDecl{
		Name:    block.Labels[0],
		Type:    s.Type,
		Default: s.Default,
		Help:    s.Help,
		Values:  s.Values,
		Range:   block.DefRange,
	}, nil
}
