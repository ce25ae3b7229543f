package ui

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// PlainRenderer outputs plain text run summaries (for CI/pipes).
type PlainRenderer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer(cfg Config) *PlainRenderer {
	return &PlainRenderer{out: cfg.Output}
}

// Start implements Renderer.
func (r *PlainRenderer) Start(ctx context.Context) error {
	return nil
}

// RunStarted implements Renderer.
func (r *PlainRenderer) RunStarted(trigger string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if trigger == "startup" {
		_, _ = fmt.Fprintln(r.out, "Watching for changes. Running initial check...")
		return
	}
	_, _ = fmt.Fprintf(r.out, "%s changed, revalidating...\n", trigger)
}

// RunFinished implements Renderer.
func (r *PlainRenderer) RunFinished(summary RunSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, g := range summary.Gates {
		mark := "PASS"
		if !g.Passed {
			mark = "FAIL"
		}
		_, _ = fmt.Fprintf(r.out, "[%s] %s\n", mark, g.Name)
	}

	_, _ = fmt.Fprintf(r.out, "Score: %d/%d (%s)\n",
		summary.Passed, summary.Total, summary.Duration.Round(100*time.Millisecond))

	if !summary.AllPassed() {
		for _, g := range summary.Gates {
			if !g.Passed && g.Hint != "" {
				_, _ = fmt.Fprintf(r.out, "  hint: %s\n", g.Hint)
			}
		}
	}
	_, _ = fmt.Fprintln(r.out)
}

// Stop implements Renderer.
func (r *PlainRenderer) Stop() error {
	return nil
}
