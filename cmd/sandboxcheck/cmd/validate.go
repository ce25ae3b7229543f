package cmd

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/buildcamp/sandboxcheck/internal/config"
	"github.com/buildcamp/sandboxcheck/internal/gate"
	"github.com/buildcamp/sandboxcheck/internal/history"
	"github.com/buildcamp/sandboxcheck/internal/ui"
)

// validateOptions holds the flags shared by the root command and the
// explicit validate subcommand.
type validateOptions struct {
	verbose    bool
	jsonOutput bool
	skipBuild  bool
	advisory   bool
	noColor    bool
}

func defaultValidateOptions() validateOptions {
	return validateOptions{}
}

func addValidateFlags(fs *pflag.FlagSet, opts *validateOptions) {
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "Show every check, not just failures")
	fs.BoolVar(&opts.jsonOutput, "json", false, "Output the report as JSON")
	fs.BoolVar(&opts.skipBuild, "skip-build", false, "Skip the docker build gate check")
	fs.BoolVar(&opts.advisory, "advisory", false, "Always exit 0, even when gates fail")
	fs.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
}

func newValidateCmd() *cobra.Command {
	opts := defaultValidateOptions()

	cmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Run all sandbox gates and print the score",
		Long: `Validate runs the four sandbox gates against the workspace:

  1. container config     - Dockerfile and devcontainer.json
  2. directory structure  - required directories and files
  3. environment config   - .env variables and ignore rules
  4. cleanup script       - cleanup.sh contents and permissions

The score is the number of passing gates out of four. The docker build
check runs as part of the container gate unless disabled.`,
		Example: `  # Validate the current directory
  sandboxcheck validate

  # Validate another sandbox, skipping the docker build
  sandboxcheck validate ~/bootcamp/sandbox --skip-build

  # Machine-readable output
  sandboxcheck validate --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runValidateAt(cmd, opts, args[0])
			}
			return runValidate(cmd, opts)
		},
	}

	addValidateFlags(cmd.Flags(), &opts)
	return cmd
}

// gatesFailedError signals that validation completed but gates failed.
// The report has already been printed when it is returned.
type gatesFailedError struct {
	tally gate.Tally
}

func (e *gatesFailedError) Error() string {
	return "sandbox check failed: " + e.tally.String()
}

func runValidate(cmd *cobra.Command, opts validateOptions) error {
	return runValidateAt(cmd, opts, ".")
}

func runValidateAt(cmd *cobra.Command, opts validateOptions, dir string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, err := config.FindWorkspaceRoot(dir)
	if err != nil {
		root, err = filepath.Abs(dir)
		if err != nil {
			return err
		}
	}

	cfg, err := config.Load(root)
	if err != nil {
		return err
	}

	useColor := !opts.noColor && !ui.DetectNoColor() && ui.IsTTY(cmd.OutOrStdout())
	runner := gate.New(cfg, root,
		gate.WithVerbose(opts.verbose),
		gate.WithSkipBuild(opts.skipBuild),
		gate.WithOutput(cmd.OutOrStdout()),
		gate.WithStyles(ui.GetStyles(!useColor)),
	)

	report := runner.RunAll(ctx)

	if opts.jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		runner.PrintReport(report)
	}

	recordRun(ctx, cfg, root, report)
	updateMarker(root, report)

	if !report.Tally.AllPassed() && !opts.advisory {
		return &gatesFailedError{tally: report.Tally}
	}
	return nil
}

// recordRun appends the report to the run history. History failures are
// logged, never fatal; a broken database must not block validation.
func recordRun(ctx context.Context, cfg *config.Config, root string, report *gate.Report) {
	if !cfg.History.Enabled {
		return
	}

	store, err := history.New(historyPath(root), cfg.History.MaxRuns)
	if err != nil {
		slog.Warn("could not open run history", slog.String("error", err.Error()))
		return
	}
	defer store.Close()

	if err := store.Record(ctx, report); err != nil {
		slog.Warn("could not record run", slog.String("error", err.Error()))
	}
}

// updateMarker writes the passed marker on a clean run and clears it
// otherwise, so stale markers never claim a broken sandbox is ready.
func updateMarker(root string, report *gate.Report) {
	dataDir := config.DataDir(root)
	if report.Tally.AllPassed() {
		if err := gate.MarkPassed(dataDir); err != nil {
			slog.Debug("could not write passed marker", slog.String("error", err.Error()))
		}
		return
	}
	if err := gate.ClearMarker(dataDir); err != nil {
		slog.Debug("could not clear passed marker", slog.String("error", err.Error()))
	}
}

func historyPath(root string) string {
	return filepath.Join(config.DataDir(root), "history.db")
}
