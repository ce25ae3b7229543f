// Package probe detects the presence and version of external tools the
// sandbox depends on (docker, node, git). Absence of a tool is reported,
// never fatal.
package probe

import (
	"context"
	"os/exec"
	"strings"
)

// Tool describes an executable to probe for.
type Tool struct {
	// Name is the executable name resolved on PATH.
	Name string
	// VersionArgs are the arguments that print the tool version.
	VersionArgs []string
}

// Result is the outcome of probing for a single tool.
type Result struct {
	Name    string `json:"name"`
	Present bool   `json:"present"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// DefaultTools returns the tools a sandbox workspace needs.
func DefaultTools() []Tool {
	return []Tool{
		{Name: "docker", VersionArgs: []string{"--version"}},
		{Name: "node", VersionArgs: []string{"--version"}},
		{Name: "git", VersionArgs: []string{"--version"}},
	}
}

// Prober probes for external tools.
type Prober struct {
	// Injection points for tests
	lookPath func(name string) (string, error)
	run      func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// New creates a Prober backed by the real PATH and subprocesses.
func New() *Prober {
	return &Prober{
		lookPath: exec.LookPath,
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).CombinedOutput()
		},
	}
}

// Probe checks whether the tool resolves on PATH and, if so, captures its
// version string. A version-flag failure leaves the tool present with an
// empty version; nothing here is fatal.
func (p *Prober) Probe(ctx context.Context, tool Tool) Result {
	result := Result{Name: tool.Name}

	path, err := p.lookPath(tool.Name)
	if err != nil {
		result.Detail = "not found in PATH"
		return result
	}

	result.Present = true
	result.Path = path

	if len(tool.VersionArgs) == 0 {
		return result
	}

	out, err := p.run(ctx, path, tool.VersionArgs...)
	if err != nil {
		result.Detail = "version check failed: " + strings.TrimSpace(string(out))
		return result
	}

	result.Version = firstLine(string(out))
	return result
}

// ProbeAll probes every tool in order.
func (p *Prober) ProbeAll(ctx context.Context, tools []Tool) []Result {
	results := make([]Result, 0, len(tools))
	for _, tool := range tools {
		results = append(results, p.Probe(ctx, tool))
	}
	return results
}

// DockerDaemon checks that the docker daemon is running and reachable.
// The probe runs `docker info` so a present-but-stopped daemon is
// distinguished from a missing binary.
func (p *Prober) DockerDaemon(ctx context.Context) Result {
	result := Result{Name: "docker-daemon"}

	path, err := p.lookPath("docker")
	if err != nil {
		result.Detail = "docker not found in PATH"
		return result
	}

	out, err := p.run(ctx, path, "info", "--format", "{{.ServerVersion}}")
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if strings.Contains(msg, "Cannot connect to the Docker daemon") {
			result.Detail = "docker daemon is not running"
		} else {
			result.Detail = "failed to reach docker daemon: " + msg
		}
		return result
	}

	result.Present = true
	result.Path = path
	result.Version = firstLine(string(out))
	return result
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
