// Package cmd provides the CLI commands for sandboxcheck.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/buildcamp/sandboxcheck/internal/logging"
	"github.com/buildcamp/sandboxcheck/pkg/version"
)

// Debug logging flag
var (
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the sandboxcheck CLI.
func NewRootCmd() *cobra.Command {
	opts := defaultValidateOptions()

	cmd := &cobra.Command{
		Use:   "sandboxcheck",
		Short: "Validate a bootcamp sandbox environment",
		Long: `Sandboxcheck validates that a development sandbox is set up the way
the bootcamp curriculum expects: container configuration, directory
layout, environment variables, and a cleanup script.

Just run 'sandboxcheck' in your sandbox directory to check everything.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())
			}
			return runValidate(cmd, opts)
		},
	}

	cmd.SetVersionTemplate("sandboxcheck version {{.Version}}\n")

	addValidateFlags(cmd.Flags(), &opts)

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.sandboxcheck/logs/")
	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newScaffoldCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startLogging starts debug logging if the flag is set.
func startLogging(_ *cobra.Command, _ []string) error {
	if !debugMode {
		return nil
	}

	logger, cleanup, err := logging.Setup(logging.DebugConfig())
	if err != nil {
		return fmt.Errorf("setup debug logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	slog.Info("Debug logging enabled",
		slog.String("log_file", logging.DefaultLogPath()),
		slog.String("version", version.Version))
	return nil
}

// stopLogging stops debug logging if it was started.
func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		var gatesErr *gatesFailedError
		if errors.As(err, &gatesErr) {
			// Gate failures already printed their report
			return 1
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}
