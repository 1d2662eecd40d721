package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/vk/planforge/internal/backend"
	"github.com/vk/planforge/internal/ctxlog"
	"github.com/vk/planforge/internal/evaluate"
	"github.com/vk/planforge/internal/fsutil"
	"github.com/vk/planforge/internal/graph"
	"github.com/vk/planforge/internal/options"
	"github.com/vk/planforge/internal/toolchain"
)

// Run executes one full generation: options, evaluation, graph construction,
// then emission of every selected backend. The graph is built exactly once;
// emitters share it read-only, so only the emission step fans out. Artifacts
// are written atomically, and the recorded invocation is saved last so a
// build directory never records a configure that did not finish.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	cfg := a.config
	a.logger.Debug("App.Run started.", "source_dir", cfg.SourceDir, "build_dir", cfg.BuildDir)

	// Resolve every backend name up front so a typo fails before any work
	// happens and before any goroutine is launched.
	emitters := make([]backend.Emitter, 0, len(cfg.Backends))
	for _, name := range cfg.Backends {
		emitter, err := emitterFor(name)
		if err != nil {
			return err
		}
		emitters = append(emitters, emitter)
	}

	model, err := a.loader.Load(ctx, cfg.SourceDir)
	if err != nil {
		return &PhaseError{Phase: PhaseDescription, Err: err}
	}

	schema, err := options.SchemaFromConfig(model.Options)
	if err != nil {
		return &PhaseError{Phase: PhaseDescription, Err: err}
	}
	project := make([]options.Override, 0, len(model.Overrides))
	for _, o := range model.Overrides {
		project = append(project, options.Override{Name: o.Name, Value: o.Value})
	}
	resolved, err := schema.Resolve(project, cfg.Overrides)
	if err != nil {
		return &PhaseError{Phase: PhaseDescription, Err: err}
	}
	for _, p := range resolved.Pairs() {
		a.logger.Debug("Option resolved.", "name", p.Name, "value", p.Value.GoString())
	}

	toolchains := toolchain.NewRegistry(cfg.Platform, cfg.Vars)
	registry, err := evaluate.Evaluate(ctx, model, resolved, toolchains)
	if err != nil {
		return &PhaseError{Phase: PhaseDescription, Err: err}
	}
	a.logger.Info("Description evaluated.", "targets", len(registry.Targets))

	srcRoot, err := sourceRoot(cfg.BuildDir, cfg.SourceDir)
	if err != nil {
		return err
	}
	g, err := graph.Build(ctx, registry, srcRoot, os.DirFS(cfg.SourceDir))
	if err != nil {
		return &PhaseError{Phase: PhaseGraph, Err: err}
	}
	a.logger.Info("Dependency graph built.", "nodes", len(g.Nodes), "edges", len(g.Edges))

	// Render every plan in memory first; files are only written once all
	// backends have rendered, so a generation that fails in any backend
	// leaves previously emitted artifacts untouched.
	plans := make([]bytes.Buffer, len(emitters))
	eg, _ := errgroup.WithContext(ctx)
	for i, emitter := range emitters {
		i, emitter := i, emitter
		eg.Go(func() error {
			if err := emitter.Emit(g, &plans[i]); err != nil {
				return wrapEmit(emitter.Name(), err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return &PhaseError{Phase: PhaseEmission, Err: err}
	}

	if err := os.MkdirAll(cfg.BuildDir, 0o755); err != nil {
		return fmt.Errorf("creating build directory: %w", err)
	}
	for i, emitter := range emitters {
		dest := filepath.Join(cfg.BuildDir, emitter.Filename())
		if err := fsutil.WriteFileAtomic(dest, plans[i].Bytes(), 0o644); err != nil {
			return &PhaseError{Phase: PhaseEmission, Err: wrapEmit(emitter.Name(), err)}
		}
		a.logger.Info("Build plan written.", "backend", emitter.Name(), "path", dest)
	}

	if err := a.saveRecord(); err != nil {
		return err
	}
	a.logger.Debug("App.Run finished.")
	return nil
}

// wrapEmit tags an emission failure with its backend unless it already is a
// typed backend error.
func wrapEmit(name string, err error) error {
	if _, ok := err.(*backend.UnsupportedEdgeKindError); ok {
		return err
	}
	return &backend.EmitError{Backend: name, Err: err}
}

// sourceRoot computes the path from the build directory back to the source
// directory, used when rendering source-input paths in emitted plans.
func sourceRoot(buildDir, srcDir string) (string, error) {
	absBuild, err := filepath.Abs(buildDir)
	if err != nil {
		return "", err
	}
	absSrc, err := filepath.Abs(srcDir)
	if err != nil {
		return "", err
	}
	if absBuild == absSrc {
		return "", nil
	}
	rel, err := filepath.Rel(absBuild, absSrc)
	if err != nil {
		// Different volumes; fall back to the absolute source path.
		return filepath.ToSlash(absSrc), nil
	}
	return filepath.ToSlash(rel), nil
}
