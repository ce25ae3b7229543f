package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, 1, cfg.Version)
	assert.Contains(t, cfg.Structure.RequiredDirs, "src/frontend")
	assert.Contains(t, cfg.Structure.RequiredDirs, "src/backend")
	assert.Contains(t, cfg.Structure.RequiredDirs, "src/shared")
	assert.Contains(t, cfg.Structure.RequiredDirs, "tests")
	assert.Contains(t, cfg.Structure.RequiredDirs, "docs")
	assert.Contains(t, cfg.Structure.RequiredFiles, ".devcontainer/Dockerfile")
	assert.Contains(t, cfg.Structure.RequiredFiles, "cleanup.sh")

	assert.Equal(t, []string{"FROM", "node", "python", "git"}, cfg.Patterns[".devcontainer/Dockerfile"])
	assert.Equal(t, []string{".env", "node_modules", "*.log"}, cfg.Patterns[".gitignore"])
	assert.Equal(t, []string{"docker", "node_modules", "confirm"}, cfg.Patterns["cleanup.sh"])

	assert.Equal(t, ".env", cfg.Env.File)
	assert.Equal(t, "cleanup.sh", cfg.Cleanup.Script)
	assert.True(t, cfg.Cleanup.RequireExecutable)
	assert.True(t, cfg.Build.Enabled)
	assert.Equal(t, "test-sandbox", cfg.Build.Image)
	assert.Equal(t, ".devcontainer", cfg.Build.Context)

	require.NoError(t, cfg.Validate())
}

func TestLoad_NoConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, NewConfig().Structure, cfg.Structure)
}

func TestLoad_WorkspaceConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	yaml := `
structure:
  required_dirs:
    - app
patterns:
  ".gitignore":
    - secrets
build:
  enabled: false
  image: my-sandbox
log_level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".sandboxcheck.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"app"}, cfg.Structure.RequiredDirs)
	// Files keep defaults when not overridden
	assert.Contains(t, cfg.Structure.RequiredFiles, ".env")
	assert.Equal(t, []string{"secrets"}, cfg.Patterns[".gitignore"])
	// Dockerfile patterns untouched
	assert.Equal(t, []string{"FROM", "node", "python", "git"}, cfg.Patterns[".devcontainer/Dockerfile"])
	assert.False(t, cfg.Build.Enabled)
	assert.Equal(t, "my-sandbox", cfg.Build.Image)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_PartialSections(t *testing.T) {
	// Overriding one field of a section must leave its siblings at
	// their defaults, including booleans whose zero value is false.
	tests := []struct {
		name   string
		yaml   string
		assert func(t *testing.T, cfg *Config)
	}{
		{
			name: "build enabled false alone disables the build",
			yaml: "build:\n  enabled: false\n",
			assert: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.Build.Enabled)
				assert.Equal(t, "test-sandbox", cfg.Build.Image)
			},
		},
		{
			name: "build image alone keeps the build enabled",
			yaml: "build:\n  image: custom-sandbox\n",
			assert: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.Build.Enabled)
				assert.Equal(t, "custom-sandbox", cfg.Build.Image)
			},
		},
		{
			name: "history max_runs alone keeps history enabled",
			yaml: "history:\n  max_runs: 50\n",
			assert: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.History.Enabled)
				assert.Equal(t, 50, cfg.History.MaxRuns)
			},
		},
		{
			name: "history enabled false alone keeps retention",
			yaml: "history:\n  enabled: false\n",
			assert: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.History.Enabled)
				assert.Equal(t, 100, cfg.History.MaxRuns)
			},
		},
		{
			name: "cleanup script alone keeps the executable requirement",
			yaml: "cleanup:\n  script: teardown.sh\n",
			assert: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "teardown.sh", cfg.Cleanup.Script)
				assert.True(t, cfg.Cleanup.RequireExecutable)
			},
		},
		{
			name: "cleanup require_executable false alone keeps the script",
			yaml: "cleanup:\n  require_executable: false\n",
			assert: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "cleanup.sh", cfg.Cleanup.Script)
				assert.False(t, cfg.Cleanup.RequireExecutable)
			},
		},
		{
			name: "env min_vars zero is honored",
			yaml: "env:\n  min_vars: 0\n",
			assert: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 0, cfg.Env.MinVars)
				assert.Equal(t, ".env", cfg.Env.File)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
			require.NoError(t, os.WriteFile(filepath.Join(dir, ".sandboxcheck.yaml"), []byte(tt.yaml), 0o644))

			cfg, err := Load(dir)
			require.NoError(t, err)
			tt.assert(t, cfg)
		})
	}
}

func TestLoad_BuildContextMovesDockerfilePatterns(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	yaml := "build:\n  context: containers/dev\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".sandboxcheck.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "containers/dev", cfg.Build.Context)
	assert.Equal(t, []string{"FROM", "node", "python", "git"}, cfg.Patterns["containers/dev/Dockerfile"])
	assert.NotContains(t, cfg.Patterns, ".devcontainer/Dockerfile")
}

func TestLoad_BuildContextKeepsExplicitPatterns(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	yaml := `
build:
  context: containers/dev
patterns:
  "containers/dev/Dockerfile":
    - FROM
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".sandboxcheck.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"FROM"}, cfg.Patterns["containers/dev/Dockerfile"])
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("SANDBOXCHECK_BUILD_ENABLED", "false")
	t.Setenv("SANDBOXCHECK_BUILD_IMAGE", "env-image")
	t.Setenv("SANDBOXCHECK_LOG_LEVEL", "warn")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.False(t, cfg.Build.Enabled)
	assert.Equal(t, "env-image", cfg.Build.Image)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".sandboxcheck.yaml"), []byte("{not yaml"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(_ *Config) {},
			wantErr: false,
		},
		{
			name: "empty structure",
			mutate: func(c *Config) {
				c.Structure = StructureConfig{}
			},
			wantErr: true,
		},
		{
			name: "negative min vars",
			mutate: func(c *Config) {
				c.Env.MinVars = -1
			},
			wantErr: true,
		},
		{
			name: "bad build timeout",
			mutate: func(c *Config) {
				c.Build.Timeout = "soon"
			},
			wantErr: true,
		},
		{
			name: "build enabled without image",
			mutate: func(c *Config) {
				c.Build.Image = ""
			},
			wantErr: true,
		},
		{
			name: "bad log level",
			mutate: func(c *Config) {
				c.LogLevel = "loud"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuildTimeout(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, 10*time.Minute, cfg.BuildTimeout())

	cfg.Build.Timeout = "30s"
	assert.Equal(t, 30*time.Second, cfg.BuildTimeout())

	cfg.Build.Timeout = "bogus"
	assert.Equal(t, 10*time.Minute, cfg.BuildTimeout())
}

func TestFindWorkspaceRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	nested := filepath.Join(root, "src", "backend")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := FindWorkspaceRoot(nested)
	require.NoError(t, err)
	// Resolve symlinks so macOS /private/var temp dirs compare equal
	wantRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	gotRoot, err := filepath.EvalSymlinks(found)
	require.NoError(t, err)
	assert.Equal(t, wantRoot, gotRoot)
}

func TestFindWorkspaceRoot_NoMarkers(t *testing.T) {
	dir := t.TempDir()

	found, err := FindWorkspaceRoot(dir)
	require.NoError(t, err)

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	assert.Equal(t, abs, found)
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	path := filepath.Join(dir, ".sandboxcheck.yaml")

	cfg := NewConfig()
	cfg.Build.Image = "round-trip"
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "round-trip", loaded.Build.Image)
}
