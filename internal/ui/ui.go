// Package ui provides terminal UI components for the watch-mode
// validation dashboard.
package ui

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

// GateLine is the per-gate state shown on the dashboard.
type GateLine struct {
	Name   string
	Passed bool
	Hint   string
}

// RunSummary is one completed validation run.
type RunSummary struct {
	Gates    []GateLine
	Passed   int
	Total    int
	Duration time.Duration
	When     time.Time
	Trigger  string // "startup" or the path that changed
}

// AllPassed reports whether the run cleared every gate.
func (s RunSummary) AllPassed() bool {
	return s.Passed == s.Total
}

// Renderer defines the interface for the watch dashboard display.
type Renderer interface {
	// Start initializes the renderer.
	Start(ctx context.Context) error

	// RunStarted signals a validation run is beginning.
	RunStarted(trigger string)

	// RunFinished reports the completed run.
	RunFinished(summary RunSummary)

	// Stop stops the renderer and cleans up.
	Stop() error
}

// Config configures the dashboard renderer.
type Config struct {
	Output     io.Writer
	ForcePlain bool
	NoColor    bool
	Workspace  string // Workspace root path to display in header
}

// ConfigOption is a function that modifies Config.
type ConfigOption func(*Config)

// WithForcePlain forces plain text output.
func WithForcePlain(force bool) ConfigOption {
	return func(c *Config) {
		c.ForcePlain = force
	}
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) ConfigOption {
	return func(c *Config) {
		c.NoColor = noColor
	}
}

// WithWorkspace sets the workspace path to display in the header.
func WithWorkspace(dir string) ConfigOption {
	return func(c *Config) {
		c.Workspace = dir
	}
}

// NewConfig creates a new Config with the given output and options.
func NewConfig(output io.Writer, opts ...ConfigOption) Config {
	cfg := Config{Output: output}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// NewRenderer creates an appropriate renderer based on config and
// environment. Interactive terminals get the dashboard; CI environments
// and pipes get plain text.
func NewRenderer(cfg Config) Renderer {
	if cfg.ForcePlain {
		return NewPlainRenderer(cfg)
	}
	if !IsTTY(cfg.Output) {
		return NewPlainRenderer(cfg)
	}
	if DetectCI() {
		return NewPlainRenderer(cfg)
	}

	dash, err := NewDashboardRenderer(cfg)
	if err != nil {
		return NewPlainRenderer(cfg)
	}
	return dash
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// DetectNoColor checks if NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}
