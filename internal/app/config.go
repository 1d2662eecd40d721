package app

import (
	"errors"

	"github.com/vk/planforge/internal/options"
	"github.com/vk/planforge/internal/toolchain"
)

// Config holds everything one generation run needs. It is assembled by the
// CLI (or by a test) and passed explicitly; the core keeps no ambient state,
// so repeated isolated runs cannot leak into each other.
type Config struct {
	SourceDir string
	BuildDir  string
	Backends  []string
	Overrides []options.Override

	Platform toolchain.Platform
	Vars     toolchain.Vars

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config and applies defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.SourceDir == "" {
		return nil, errors.New("SourceDir is a required configuration field and cannot be empty")
	}
	if cfg.BuildDir == "" {
		return nil, errors.New("BuildDir is a required configuration field and cannot be empty")
	}
	if len(cfg.Backends) == 0 {
		cfg.Backends = []string{"ninja"}
	}
	if cfg.Platform == "" {
		cfg.Platform = toolchain.HostPlatform()
	}
	if cfg.Vars == nil {
		cfg.Vars = toolchain.EnvVars()
	}
	return &cfg, nil
}
