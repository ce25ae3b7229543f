// Package build runs the container build the final validation gate depends
// on. The only contract with the container runtime is the process exit code.
package build

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

// Result captures the outcome of a container build.
type Result struct {
	ExitCode int           `json:"exit_code"`
	Stdout   string        `json:"stdout,omitempty"`
	Stderr   string        `json:"stderr,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Succeeded reports whether the build exited zero.
func (r *Result) Succeeded() bool {
	return r.ExitCode == 0
}

// Runner builds a container image from a context directory.
type Runner interface {
	// Build runs a blocking image build. A non-zero exit status is returned
	// in the Result, not as an error; the error covers failures to start
	// the subprocess at all (e.g. docker missing).
	Build(ctx context.Context, contextDir, image string) (*Result, error)
}

// Docker runs builds through the docker CLI.
type Docker struct {
	// Timeout bounds a single build. Zero means no limit beyond ctx.
	Timeout time.Duration
}

// NewDocker creates a docker build runner with the given timeout.
func NewDocker(timeout time.Duration) *Docker {
	return &Docker{Timeout: timeout}
}

// Build implements Runner by invoking `docker build -t <image> <dir>`.
func (d *Docker) Build(ctx context.Context, contextDir, image string) (*Result, error) {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	start := time.Now()

	cmd := exec.CommandContext(ctx, "docker", "build", "-t", image, contextDir)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	exitCode := 0
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return nil, fmt.Errorf("failed to execute docker build: %w", err)
		}
		exitCode = exitErr.ExitCode()
	}

	return &Result{
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}, nil
}

// Func adapts a function to the Runner interface, used by tests to stub
// out the container runtime.
type Func func(ctx context.Context, contextDir, image string) (*Result, error)

// Build implements Runner.
func (f Func) Build(ctx context.Context, contextDir, image string) (*Result, error) {
	return f(ctx, contextDir, image)
}
