package config

import (
	"context"
)

// Loader is the interface for a format-specific description loader. It reads
// the project description (and, when present, the sibling options file) and
// translates it into the format-agnostic model.
type Loader interface {
	Load(ctx context.Context, srcDir string) (*Model, error)
}
