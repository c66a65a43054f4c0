// Package cmd implements the casework command line interface.
package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/harrison/casework/internal/registry"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates the root casework command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "casework",
		Short: "Parametrized case runner",
		Long: `Casework runs parametrized cases: typed, validated parameter sets
driven through ordered steps with conditions and dependencies.

Case types come from plugins or from campaign files. Single cases,
parameter sweeps, and whole campaigns run through the same engine,
with per-case working directories and a run history database.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to configuration file (default: .casework/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewSweepCommand())
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewValidateCommand())
	rootCmd.AddCommand(NewHistoryCommand())

	return rootCmd
}

// resolveError marks failures to resolve a case type or plugin, as opposed
// to failures of the cases themselves. The distinction drives the exit code.
type resolveError struct {
	err error
}

func (e *resolveError) Error() string { return e.err.Error() }

func (e *resolveError) Unwrap() error { return e.err }

// ExitCode maps a command error to the process exit code: 0 for success,
// 2 when a case type or plugin could not be resolved, 1 for everything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var re *resolveError
	if errors.As(err, &re) {
		return 2
	}
	if registry.IsCaseNotFound(err) {
		return 2
	}
	return 1
}
