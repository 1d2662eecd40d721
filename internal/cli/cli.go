package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vk/planforge/internal/app"
	"github.com/vk/planforge/internal/hcl"
	"github.com/vk/planforge/internal/options"
)

// Exit codes, distinct per failure class so scripts can branch on them.
const (
	ExitUsage       = 2
	ExitDescription = 3
	ExitGraph       = 4
	ExitEmission    = 5
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Execute parses command-line arguments and runs the selected command. Errors
// come back as *ExitError so main can translate them into process exit codes.
func Execute(outW io.Writer, args []string) error {
	var logLevel, logFormat string

	root := &cobra.Command{
		Use:           "planforge",
		Short:         "planforge generates backend-native build plans from declarative HCL descriptions.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Logging level: 'debug', 'info', 'warn', or 'error'.")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log output format: 'text' or 'json'.")

	root.AddCommand(newConfigureCmd(outW, &logLevel, &logFormat))
	root.AddCommand(newRegenCmd(outW, &logLevel, &logFormat))

	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return err
		}
		// Anything cobra itself rejects is a usage problem.
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	return nil
}

// newConfigureCmd builds the configure command: evaluate a description once
// and write the selected backends' build plans.
func newConfigureCmd(outW io.Writer, logLevel, logFormat *string) *cobra.Command {
	var buildDir string
	var backends []string
	var defines []string

	cmd := &cobra.Command{
		Use:   "configure <source-dir>",
		Short: "Generate build plans for a project description.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides, err := parseOverrides(defines)
			if err != nil {
				return &ExitError{Code: ExitUsage, Message: err.Error()}
			}
			cfg, err := app.NewConfig(app.Config{
				SourceDir: args[0],
				BuildDir:  buildDir,
				Backends:  backends,
				Overrides: overrides,
				LogLevel:  *logLevel,
				LogFormat: *logFormat,
			})
			if err != nil {
				return &ExitError{Code: ExitUsage, Message: err.Error()}
			}
			return classify(app.NewApp(outW, cfg, hcl.NewLoader()).Run(cmd.Context()))
		},
	}
	cmd.Flags().StringVarP(&buildDir, "build-dir", "B", "build", "Directory the build plans are written to.")
	cmd.Flags().StringArrayVar(&backends, "backend", []string{"ninja"}, "Backend to emit (repeatable): ninja, make, posix-make.")
	cmd.Flags().StringArrayVarP(&defines, "define", "D", nil, "Option override as name=value (repeatable).")
	return cmd
}

// newRegenCmd builds the regen command: replay the recorded configure for a
// build directory.
func newRegenCmd(outW io.Writer, logLevel, logFormat *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regen [build-dir]",
		Short: "Re-run the recorded configure for a build directory.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buildDir := "build"
			if len(args) == 1 {
				buildDir = args[0]
			}
			rec, err := app.LoadRecord(buildDir)
			if err != nil {
				return &ExitError{Code: ExitUsage, Message: err.Error()}
			}
			cfg, err := app.NewConfig(app.Config{
				SourceDir: rec.SourceDir,
				BuildDir:  buildDir,
				Backends:  rec.Backends,
				Overrides: rec.Overrides(),
				LogLevel:  *logLevel,
				LogFormat: *logFormat,
			})
			if err != nil {
				return &ExitError{Code: ExitUsage, Message: err.Error()}
			}
			return classify(app.NewApp(outW, cfg, hcl.NewLoader()).Run(cmd.Context()))
		},
	}
	return cmd
}

// parseOverrides splits -D name=value arguments.
func parseOverrides(defines []string) ([]options.Override, error) {
	var out []options.Override
	for _, d := range defines {
		name, value, ok := strings.Cut(d, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid option override %q: expected name=value", d)
		}
		out = append(out, options.Override{Name: name, Value: value})
	}
	return out, nil
}

// classify maps a generation failure onto its exit code.
func classify(err error) error {
	if err == nil {
		return nil
	}
	code := 1
	var phaseErr *app.PhaseError
	if errors.As(err, &phaseErr) {
		switch phaseErr.Phase {
		case app.PhaseDescription:
			code = ExitDescription
		case app.PhaseGraph:
			code = ExitGraph
		case app.PhaseEmission:
			code = ExitEmission
		}
	}
	return &ExitError{Code: code, Message: err.Error()}
}
