package app

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vk/planforge/internal/fsutil"
	"github.com/vk/planforge/internal/options"
)

// RecordFile is the recorded-invocation file written into the build
// directory on successful configure, replayed by the regen command.
const RecordFile = ".planforge.yaml"

// recordVersion bumps when the record format changes incompatibly.
const recordVersion = 1

// Record captures the arguments of a successful configure so regeneration
// reproduces it exactly.
type Record struct {
	Version   int            `yaml:"version"`
	SourceDir string         `yaml:"source_dir"`
	Backends  []string       `yaml:"backends"`
	Options   []RecordOption `yaml:"options,omitempty"`
}

// RecordOption is one recorded option override, kept as the raw string the
// user supplied.
type RecordOption struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// saveRecord writes the recorded invocation for the current run. The source
// directory is stored absolute so regen works from any working directory.
func (a *App) saveRecord() error {
	cfg := a.config
	srcDir, err := filepath.Abs(cfg.SourceDir)
	if err != nil {
		return fmt.Errorf("resolving source directory: %w", err)
	}
	rec := Record{
		Version:   recordVersion,
		SourceDir: srcDir,
		Backends:  cfg.Backends,
	}
	for _, o := range cfg.Overrides {
		rec.Options = append(rec.Options, RecordOption{Name: o.Name, Value: o.Value})
	}

	data, err := yaml.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("encoding invocation record: %w", err)
	}
	return fsutil.WriteFileAtomic(filepath.Join(cfg.BuildDir, RecordFile), data, 0o644)
}

// LoadRecord reads the recorded invocation from a build directory.
func LoadRecord(buildDir string) (*Record, error) {
	path := filepath.Join(buildDir, RecordFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("no recorded configure in %q (run configure first): %w", buildDir, err)
	}
	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if rec.Version != recordVersion {
		return nil, fmt.Errorf("unsupported record version %d in %s", rec.Version, path)
	}
	return &rec, nil
}

// Overrides converts the recorded options back into override form.
func (r *Record) Overrides() []options.Override {
	out := make([]options.Override, 0, len(r.Options))
	for _, o := range r.Options {
		out = append(out, options.Override{Name: o.Name, Value: o.Value})
	}
	return out
}
