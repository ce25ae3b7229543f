// Package gate runs the four top-level sandbox validation gates and
// produces the scored report. Every gate is isolated: a failure in one
// never aborts the remaining gates.
package gate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/buildcamp/sandboxcheck/internal/build"
	"github.com/buildcamp/sandboxcheck/internal/config"
	"github.com/buildcamp/sandboxcheck/internal/oracle"
	"github.com/buildcamp/sandboxcheck/internal/ui"
)

// Runner executes the validation gates against a workspace.
type Runner struct {
	cfg       *config.Config
	root      string
	oracle    oracle.Oracle
	builder   build.Runner
	output    io.Writer
	styles    ui.Styles
	verbose   bool
	skipBuild bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithOracle sets the filesystem oracle (tests use an in-memory fake).
func WithOracle(o oracle.Oracle) Option {
	return func(r *Runner) {
		r.oracle = o
	}
}

// WithBuilder sets the container build runner.
func WithBuilder(b build.Runner) Option {
	return func(r *Runner) {
		r.builder = b
	}
}

// WithOutput sets the report output writer.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.output = w
	}
}

// WithVerbose enables per-check detail output.
func WithVerbose(verbose bool) Option {
	return func(r *Runner) {
		r.verbose = verbose
	}
}

// WithSkipBuild skips the container build even when the config enables it.
func WithSkipBuild(skip bool) Option {
	return func(r *Runner) {
		r.skipBuild = skip
	}
}

// WithStyles sets the styles used when printing the report.
func WithStyles(s ui.Styles) Option {
	return func(r *Runner) {
		r.styles = s
	}
}

// New creates a Runner for the workspace rooted at root.
func New(cfg *config.Config, root string, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg,
		root:   root,
		output: os.Stdout,
		styles: ui.NoColorStyles(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.oracle == nil {
		r.oracle = oracle.NewOS(root)
	}
	if r.builder == nil {
		r.builder = build.NewDocker(cfg.BuildTimeout())
	}
	return r
}

// RunAll runs the four gates in order and returns the scored report.
// Running twice against an unchanged workspace yields identical gate
// results.
func (r *Runner) RunAll(ctx context.Context) *Report {
	start := time.Now()

	report := &Report{
		Root:      r.root,
		Timestamp: start,
	}

	gates := []func(context.Context) GateResult{
		r.containerGate,
		r.structureGate,
		r.envGate,
		r.cleanupGate,
	}

	for _, run := range gates {
		result := run(ctx)
		report.Gates = append(report.Gates, result)
		report.Tally.Total++
		if result.Passed {
			report.Tally.Passed++
		}
		slog.Debug("gate finished",
			slog.String("gate", result.Name),
			slog.Bool("passed", result.Passed))
	}

	report.Duration = time.Since(start)
	return report
}

// PrintReport prints the report to the configured output.
func (r *Runner) PrintReport(report *Report) {
	out := r.output

	_, _ = fmt.Fprintln(out, "Sandbox Check")
	_, _ = fmt.Fprintln(out, "=============")
	_, _ = fmt.Fprintln(out)

	for _, g := range report.Gates {
		status := r.styles.Pass.Render("PASS")
		if !g.Passed {
			status = r.styles.Fail.Render("FAIL")
		}
		_, _ = fmt.Fprintf(out, "[%s] %s\n", status, g.Name)

		for _, c := range g.Checks {
			if r.verbose || c.Status == StatusFail || c.Status == StatusWarn {
				_, _ = fmt.Fprintf(out, "      [%s] %s: %s\n", c.Status, c.Name, c.Message)
				if r.verbose && c.Details != "" {
					_, _ = fmt.Fprintf(out, "            %s\n", c.Details)
				}
			}
		}
	}

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintf(out, "Score: %s\n", report.Tally)

	if report.Tally.AllPassed() {
		_, _ = fmt.Fprintln(out, r.styles.Pass.Render("All gates passed. Sandbox is ready."))
		return
	}

	failed := report.FailedGates()
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintf(out, "%d gate(s) failed:\n", len(failed))
	for _, g := range failed {
		_, _ = fmt.Fprintf(out, "  - %s: %s\n", g.Name, g.Hint)
	}
}
