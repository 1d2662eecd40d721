package app

import (
	"io"
	"log/slog"
)

// newLogger builds the run's slog.Logger. It never touches the global
// default, so concurrent runs (and tests) stay isolated. Level names parse
// through slog's own text form (case-insensitive, offsets like "info+2"
// allowed); unknown names fall back to info rather than failing the run.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
