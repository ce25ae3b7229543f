package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/buildcamp/sandboxcheck/internal/config"
	"github.com/buildcamp/sandboxcheck/internal/gate"
	"github.com/buildcamp/sandboxcheck/internal/oracle"
	"github.com/buildcamp/sandboxcheck/internal/ui"
	"github.com/buildcamp/sandboxcheck/internal/watch"
)

func newWatchCmd() *cobra.Command {
	var (
		plain     bool
		noColor   bool
		withBuild bool
	)

	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Revalidate the sandbox whenever files change",
		Long: `Watch runs an initial validation, then watches the workspace and
revalidates after every change. Rapid bursts of saves are coalesced
into a single run.

The docker build check is skipped in watch mode by default because
rebuilding the image on every save is too slow; pass --build to
include it.`,
		Example: `  # Watch the current sandbox
  sandboxcheck watch

  # Plain output without the dashboard (also used automatically in CI)
  sandboxcheck watch --plain`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runWatch(cmd, dir, plain, noColor, withBuild)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Plain text output instead of the dashboard")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&withBuild, "build", false, "Run the docker build check on every change")
	return cmd
}

func runWatch(cmd *cobra.Command, dir string, plain, noColor, withBuild bool) error {
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

	renderer := ui.NewRenderer(ui.NewConfig(cmd.OutOrStdout(),
		ui.WithForcePlain(plain),
		ui.WithNoColor(noColor),
		ui.WithWorkspace(root),
	))
	if err := renderer.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = renderer.Stop() }()

	watcher, err := watch.New(watch.Options{})
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Stop() }()

	// One runner for the whole session; the oracle's content cache
	// carries across runs and invalidates on modification.
	runner := gate.New(cfg, root,
		gate.WithOracle(oracle.NewOS(root)),
		gate.WithSkipBuild(!withBuild),
		gate.WithOutput(io.Discard),
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return watcher.Start(ctx, root)
	})

	g.Go(func() error {
		runOnce(ctx, runner, renderer, "startup")

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case batch, ok := <-watcher.Events():
				if !ok {
					return nil
				}
				runOnce(ctx, runner, renderer, batch[0].Path)
			}
		}
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runOnce runs all gates and feeds the result to the renderer.
func runOnce(ctx context.Context, runner *gate.Runner, renderer ui.Renderer, trigger string) {
	renderer.RunStarted(trigger)

	report := runner.RunAll(ctx)

	summary := ui.RunSummary{
		Passed:   report.Tally.Passed,
		Total:    report.Tally.Total,
		Duration: report.Duration,
		When:     report.Timestamp,
		Trigger:  trigger,
	}
	for _, g := range report.Gates {
		summary.Gates = append(summary.Gates, ui.GateLine{
			Name:   g.Name,
			Passed: g.Passed,
			Hint:   g.Hint,
		})
	}

	renderer.RunFinished(summary)
}
