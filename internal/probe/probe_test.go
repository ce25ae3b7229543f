package probe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fakeProber(lookPath func(string) (string, error), run func(context.Context, string, ...string) ([]byte, error)) *Prober {
	return &Prober{lookPath: lookPath, run: run}
}

func TestProbe_ToolPresent(t *testing.T) {
	p := fakeProber(
		func(name string) (string, error) { return "/usr/bin/" + name, nil },
		func(_ context.Context, _ string, _ ...string) ([]byte, error) {
			return []byte("git version 2.44.0\n"), nil
		},
	)

	r := p.Probe(context.Background(), Tool{Name: "git", VersionArgs: []string{"--version"}})

	assert.True(t, r.Present)
	assert.Equal(t, "/usr/bin/git", r.Path)
	assert.Equal(t, "git version 2.44.0", r.Version)
	assert.Empty(t, r.Detail)
}

func TestProbe_ToolMissing(t *testing.T) {
	p := fakeProber(
		func(string) (string, error) { return "", errors.New("not found") },
		nil,
	)

	r := p.Probe(context.Background(), Tool{Name: "docker", VersionArgs: []string{"--version"}})

	assert.False(t, r.Present)
	assert.Empty(t, r.Version)
	assert.Equal(t, "not found in PATH", r.Detail)
}

func TestProbe_VersionFlagFails(t *testing.T) {
	p := fakeProber(
		func(name string) (string, error) { return "/usr/bin/" + name, nil },
		func(_ context.Context, _ string, _ ...string) ([]byte, error) {
			return []byte("boom"), errors.New("exit status 1")
		},
	)

	r := p.Probe(context.Background(), Tool{Name: "node", VersionArgs: []string{"--version"}})

	// Tool is still present; only the version is unknown
	assert.True(t, r.Present)
	assert.Empty(t, r.Version)
	assert.Contains(t, r.Detail, "version check failed")
}

func TestProbeAll_Order(t *testing.T) {
	p := fakeProber(
		func(name string) (string, error) { return "/bin/" + name, nil },
		func(_ context.Context, _ string, _ ...string) ([]byte, error) {
			return []byte("v1\n"), nil
		},
	)

	results := p.ProbeAll(context.Background(), DefaultTools())

	assert.Len(t, results, 3)
	assert.Equal(t, "docker", results[0].Name)
	assert.Equal(t, "node", results[1].Name)
	assert.Equal(t, "git", results[2].Name)
}

func TestDockerDaemon_NotRunning(t *testing.T) {
	p := fakeProber(
		func(string) (string, error) { return "/usr/bin/docker", nil },
		func(_ context.Context, _ string, _ ...string) ([]byte, error) {
			return []byte("Cannot connect to the Docker daemon at unix:///var/run/docker.sock"), errors.New("exit status 1")
		},
	)

	r := p.DockerDaemon(context.Background())

	assert.False(t, r.Present)
	assert.Equal(t, "docker daemon is not running", r.Detail)
}

func TestDockerDaemon_Running(t *testing.T) {
	p := fakeProber(
		func(string) (string, error) { return "/usr/bin/docker", nil },
		func(_ context.Context, _ string, _ ...string) ([]byte, error) {
			return []byte("27.1.1\n"), nil
		},
	)

	r := p.DockerDaemon(context.Background())

	assert.True(t, r.Present)
	assert.Equal(t, "27.1.1", r.Version)
}

func TestFirstLine(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"one\ntwo\n", "one"},
		{"  padded  \n", "padded"},
		{"", ""},
		{"single", "single"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, firstLine(tt.input))
	}
}
