package cmd

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/buildcamp/sandboxcheck/internal/config"
	"github.com/buildcamp/sandboxcheck/internal/gate"
	"github.com/buildcamp/sandboxcheck/internal/history"
	"github.com/buildcamp/sandboxcheck/internal/output"
	"github.com/buildcamp/sandboxcheck/internal/probe"
)

func newDoctorCmd() *cobra.Command {
	var (
		jsonOutput bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the required tools are installed",
		Long: `Run environment diagnostics to ensure sandbox validation can work.

Checks:
  - docker (and whether the daemon is reachable)
  - node
  - git

Tool probes report the installed version where available. A missing
tool does not fail the sandbox gates, but docker is needed for the
build check.`,
		Example: `  # Run diagnostics
  sandboxcheck doctor

  # JSON output for scripting
  sandboxcheck doctor --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, jsonOutput, verbose)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show resolved paths for each tool")
	return cmd
}

// doctorReport is the JSON shape for doctor output.
type doctorReport struct {
	Tools  []probe.Result `json:"tools"`
	Daemon probe.Result   `json:"docker_daemon"`
}

func runDoctor(cmd *cobra.Command, jsonOutput, verbose bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prober := probe.New()
	report := doctorReport{
		Tools:  prober.ProbeAll(ctx, probe.DefaultTools()),
		Daemon: prober.DockerDaemon(ctx),
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	w := output.New(cmd.OutOrStdout())
	w.Header("Sandbox Doctor")
	w.Newline()

	for _, tool := range report.Tools {
		if !tool.Present {
			w.Errorf("%s not found in PATH", tool.Name)
			continue
		}
		if tool.Version != "" {
			w.Successf("%s (%s)", tool.Name, tool.Version)
		} else {
			w.Successf("%s found at %s", tool.Name, tool.Path)
		}
		if verbose && tool.Path != "" {
			w.Status("", tool.Path)
		}
	}

	if report.Daemon.Present {
		w.Successf("docker daemon reachable (server %s)", report.Daemon.Version)
	} else {
		w.Warning("docker daemon not reachable")
		if report.Daemon.Detail != "" {
			w.Status("", report.Daemon.Detail)
		}
		w.Status("", "the docker build check will fail until the daemon is running")
	}

	printMarkerStatus(cmd, w)
	printLastRun(ctx, w)
	return nil
}

// printMarkerStatus reports when this sandbox last passed a full check.
func printMarkerStatus(cmd *cobra.Command, w *output.Writer) {
	root, err := config.FindWorkspaceRoot(".")
	if err != nil {
		return
	}

	dataDir := config.DataDir(root)
	if gate.NeedsCheck(dataDir) {
		return
	}

	if age := gate.MarkerAge(dataDir); age > 0 {
		w.Newline()
		w.Statusf("", "Last successful check: %s ago", age.Round(time.Minute))
	}
}

// printLastRun reports the score of the most recent validation run.
// Diagnostics stay quiet when no history exists yet.
func printLastRun(ctx context.Context, w *output.Writer) {
	root, err := config.FindWorkspaceRoot(".")
	if err != nil {
		return
	}

	path := historyPath(root)
	if _, err := os.Stat(path); err != nil {
		return
	}

	store, err := history.New(path, 0)
	if err != nil {
		return
	}
	defer store.Close()

	run, err := store.Latest(ctx)
	if err != nil || run == nil {
		return
	}

	w.Newline()
	w.Statusf("", "Last validation: %d/%d at %s", run.Passed, run.Total,
		run.Timestamp.Local().Format("2006-01-02 15:04:05"))
}
