package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/planforge/internal/config"
	"github.com/vk/planforge/internal/ctxlog"
	"github.com/vk/planforge/internal/fsutil"
)

// DescriptionFile is the canonical name of the main build description.
const DescriptionFile = "build.hcl"

// OptionsFile is the canonical name of the sibling option declaration file.
const OptionsFile = "options.hcl"

// OverridesFile is the canonical name of the optional project-level override
// file: plain `name = value` attributes shadowing option defaults, themselves
// shadowed by invocation overrides.
const OverridesFile = "overrides.hcl"

// Loader reads HCL build descriptions and translates them into the
// format-agnostic config model.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader returns a Loader ready for use.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Load parses srcDir/options.hcl (if present), srcDir/build.hcl, and any
// additional .hcl description files under srcDir, returning the unified
// model. Declarations keep their source order; build.hcl comes first, extra
// files follow in sorted path order so the result is deterministic.
func (l *Loader) Load(ctx context.Context, srcDir string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	model := &config.Model{}

	optPath := filepath.Join(srcDir, OptionsFile)
	if _, err := os.Stat(optPath); err == nil {
		logger.Debug("Parsing option declarations.", "path", optPath)
		opts, err := l.loadOptions(optPath)
		if err != nil {
			return nil, err
		}
		model.Options = opts
	}

	ovPath := filepath.Join(srcDir, OverridesFile)
	if _, err := os.Stat(ovPath); err == nil {
		logger.Debug("Parsing project-level overrides.", "path", ovPath)
		ovs, err := l.loadOverrides(ovPath)
		if err != nil {
			return nil, err
		}
		model.Overrides = ovs
	}

	descPath := filepath.Join(srcDir, DescriptionFile)
	logger.Debug("Parsing build description.", "path", descPath)
	file, diags := l.parser.ParseHCLFile(descPath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %w", descPath, diags)
	}

	if err := l.translateDescription(file.Body, model); err != nil {
		return nil, err
	}

	extras, err := fsutil.FindFilesByExtension(srcDir, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("scanning %s for description files: %w", srcDir, err)
	}
	for _, p := range extras {
		base := filepath.Base(p)
		if p == descPath || base == OptionsFile || base == OverridesFile {
			continue
		}
		logger.Debug("Parsing extra description file.", "path", p)
		extra, diags := l.parser.ParseHCLFile(p)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parsing %s: %w", p, diags)
		}
		if err := l.translateDescription(extra.Body, model); err != nil {
			return nil, err
		}
	}

	logger.Debug("Description loaded.", "declarations", len(model.Decls), "options", len(model.Options))
	return model, nil
}

// loadOptions parses the option declaration file.
func (l *Loader) loadOptions(path string) ([]*config.OptionDecl, error) {
	file, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %w", path, diags)
	}

	content, diags := file.Body.Content(optionsSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid options file %s: %w", path, diags)
	}

	var decls []*config.OptionDecl
	for _, block := range content.Blocks {
		decl, err := l.translateOption(block)
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

// loadOverrides parses the project-level override file: top-level attributes
// only, values reduced to raw strings in name order.
func (l *Loader) loadOverrides(path string) ([]*config.OverrideDecl, error) {
	file, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %w", path, diags)
	}
	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid overrides file %s: %w", path, diags)
	}

	decls := make([]*config.OverrideDecl, 0, len(attrs))
	for _, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("invalid override %q in %s: %w", attr.Name, path, diags)
		}
		if val.IsNull() {
			return nil, fmt.Errorf("override %q in %s must not be null", attr.Name, path)
		}
		converted, err := convert.Convert(val, cty.String)
		if err != nil {
			return nil, fmt.Errorf("override %q in %s: %w", attr.Name, path, err)
		}
		decls = append(decls, &config.OverrideDecl{
			Name:  attr.Name,
			Value: converted.AsString(),
			Range: attr.Range,
		})
	}
	sort.Slice(decls, func(i, j int) bool { return decls[i].Name < decls[j].Name })
	return decls, nil
}

var _ config.Loader = (*Loader)(nil)

var optionsSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "option", LabelNames: []string{"name"}},
	},
}
