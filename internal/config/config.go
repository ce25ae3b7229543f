// Package config provides layered configuration for sandboxcheck.
//
// Configuration is applied in order of increasing precedence:
//  1. Hardcoded defaults (the standard bootcamp sandbox layout)
//  2. User/global config (~/.config/sandboxcheck/config.yaml)
//  3. Workspace config (.sandboxcheck.yaml in the workspace root)
//  4. Environment variables (SANDBOXCHECK_*)
package config

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DataDirName is the per-workspace data directory used for run markers
// and the history database.
const DataDirName = ".sandboxcheck"

// Config describes what a valid sandbox workspace looks like.
// It replaces the working-directory and environment-variable state the
// original shell checklist relied on with one explicit struct threaded
// through the check functions.
type Config struct {
	Version int `yaml:"version" json:"version"`

	// Structure lists paths that must exist relative to the workspace root.
	Structure StructureConfig `yaml:"structure" json:"structure"`

	// Patterns maps a file path to substrings that must appear in it,
	// case-sensitively, anywhere in the file.
	Patterns map[string][]string `yaml:"patterns" json:"patterns"`

	// Env configures the environment-file gate.
	Env EnvConfig `yaml:"env" json:"env"`

	// Cleanup configures the cleanup-script gate.
	Cleanup CleanupConfig `yaml:"cleanup" json:"cleanup"`

	// Build configures the container build step of the container gate.
	Build BuildConfig `yaml:"build" json:"build"`

	// History configures the run-history store.
	History HistoryConfig `yaml:"history" json:"history"`

	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// StructureConfig lists required directories and files.
type StructureConfig struct {
	RequiredDirs  []string `yaml:"required_dirs" json:"required_dirs"`
	RequiredFiles []string `yaml:"required_files" json:"required_files"`
}

// EnvConfig configures the environment-file checks.
type EnvConfig struct {
	// File is the env file path relative to the workspace root.
	File string `yaml:"file" json:"file"`
	// MinVars is the minimum number of KEY=VALUE lines required.
	MinVars int `yaml:"min_vars" json:"min_vars"`
	// Ignore is the ignore file whose patterns must cover the env file.
	Ignore string `yaml:"ignore" json:"ignore"`
}

// CleanupConfig configures the cleanup-script checks.
type CleanupConfig struct {
	// Script is the cleanup script path relative to the workspace root.
	Script string `yaml:"script" json:"script"`
	// RequireExecutable requires the executable bit on the script.
	RequireExecutable bool `yaml:"require_executable" json:"require_executable"`
}

// BuildConfig configures the docker build invoked by the container gate.
type BuildConfig struct {
	// Enabled runs `docker build` as part of the container gate.
	// Disabled builds leave the gate to static Dockerfile checks only.
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Image is the tag passed to docker build -t.
	Image string `yaml:"image" json:"image"`
	// Context is the build context directory relative to the workspace root.
	Context string `yaml:"context" json:"context"`
	// Timeout bounds the build subprocess (duration string, e.g. "10m").
	Timeout string `yaml:"timeout" json:"timeout"`
}

// HistoryConfig configures run-history persistence.
type HistoryConfig struct {
	// Enabled records each validation run in the history database.
	Enabled bool `yaml:"enabled" json:"enabled"`
	// MaxRuns is the number of runs retained (oldest pruned first).
	MaxRuns int `yaml:"max_runs" json:"max_runs"`
}

// NewConfig creates a Config with the standard bootcamp sandbox defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Structure: StructureConfig{
			RequiredDirs: []string{
				".devcontainer",
				"src/frontend",
				"src/backend",
				"src/shared",
				"tests",
				"docs",
			},
			RequiredFiles: []string{
				".devcontainer/Dockerfile",
				".devcontainer/devcontainer.json",
				".env",
				".gitignore",
				"cleanup.sh",
			},
		},
		Patterns: map[string][]string{
			".devcontainer/Dockerfile": {"FROM", "node", "python", "git"},
			".gitignore":               {".env", "node_modules", "*.log"},
			"cleanup.sh":               {"docker", "node_modules", "confirm"},
		},
		Env: EnvConfig{
			File:    ".env",
			MinVars: 1,
			Ignore:  ".gitignore",
		},
		Cleanup: CleanupConfig{
			Script:            "cleanup.sh",
			RequireExecutable: true,
		},
		Build: BuildConfig{
			Enabled: true,
			Image:   "test-sandbox",
			Context: ".devcontainer",
			Timeout: "10m",
		},
		History: HistoryConfig{
			Enabled: true,
			MaxRuns: 100,
		},
		LogLevel: "info",
	}
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows the XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/sandboxcheck/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/sandboxcheck/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sandboxcheck", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "sandboxcheck", "config.yaml")
	}
	return filepath.Join(home, ".config", "sandboxcheck", "config.yaml")
}

// Load loads configuration for the given workspace directory.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadUserConfig loads the user/global configuration file if it exists.
// Returns nil config and nil error if the file doesn't exist (that's OK).
func loadUserConfig() (*fileConfig, error) {
	path := GetUserConfigPath()
	if !fileExists(path) {
		return nil, nil
	}

	parsed, err := parseFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", path, err)
	}
	return parsed, nil
}

// loadFromFile attempts to load configuration from .sandboxcheck.yaml or .yml.
func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, ".sandboxcheck.yaml")
	if fileExists(yamlPath) {
		return c.loadYAML(yamlPath)
	}

	ymlPath := filepath.Join(dir, ".sandboxcheck.yml")
	if fileExists(ymlPath) {
		return c.loadYAML(ymlPath)
	}

	// No config file is fine - use defaults
	return nil
}

// fileConfig mirrors Config for parsing config files. Scalar fields
// whose zero value is meaningful (booleans, min_vars) are pointers so
// an explicit `enabled: false` is distinguishable from an omitted key.
type fileConfig struct {
	Version   int                 `yaml:"version"`
	Structure StructureConfig     `yaml:"structure"`
	Patterns  map[string][]string `yaml:"patterns"`
	Env       fileEnvConfig       `yaml:"env"`
	Cleanup   fileCleanupConfig   `yaml:"cleanup"`
	Build     fileBuildConfig     `yaml:"build"`
	History   fileHistoryConfig   `yaml:"history"`
	LogLevel  string              `yaml:"log_level"`
}

type fileEnvConfig struct {
	File    string `yaml:"file"`
	MinVars *int   `yaml:"min_vars"`
	Ignore  string `yaml:"ignore"`
}

type fileCleanupConfig struct {
	Script            string `yaml:"script"`
	RequireExecutable *bool  `yaml:"require_executable"`
}

type fileBuildConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Image   string `yaml:"image"`
	Context string `yaml:"context"`
	Timeout string `yaml:"timeout"`
}

type fileHistoryConfig struct {
	Enabled *bool `yaml:"enabled"`
	MaxRuns *int  `yaml:"max_runs"`
}

// parseFile reads and parses a config file without merging it.
func parseFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed fileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &parsed, nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	parsed, err := parseFile(path)
	if err != nil {
		return err
	}
	c.mergeWith(parsed)
	return nil
}

// mergeWith merges the set values from other into c. Each field stands
// on its own: setting build.image never touches build.enabled.
func (c *Config) mergeWith(other *fileConfig) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if len(other.Structure.RequiredDirs) > 0 {
		c.Structure.RequiredDirs = other.Structure.RequiredDirs
	}
	if len(other.Structure.RequiredFiles) > 0 {
		c.Structure.RequiredFiles = other.Structure.RequiredFiles
	}

	// Pattern lists replace per file so a workspace can relax a single check
	for file, patterns := range other.Patterns {
		if len(patterns) > 0 {
			c.Patterns[file] = patterns
		}
	}

	if other.Env.File != "" {
		c.Env.File = other.Env.File
	}
	if other.Env.MinVars != nil {
		c.Env.MinVars = *other.Env.MinVars
	}
	if other.Env.Ignore != "" {
		c.Env.Ignore = other.Env.Ignore
	}

	if other.Cleanup.Script != "" {
		c.Cleanup.Script = other.Cleanup.Script
	}
	if other.Cleanup.RequireExecutable != nil {
		c.Cleanup.RequireExecutable = *other.Cleanup.RequireExecutable
	}

	if other.Build.Enabled != nil {
		c.Build.Enabled = *other.Build.Enabled
	}
	if other.Build.Image != "" {
		c.Build.Image = other.Build.Image
	}
	if other.Build.Context != "" && other.Build.Context != c.Build.Context {
		// The Dockerfile moves with the build context; carry its
		// pattern entry along unless the file overrode it.
		oldKey := path.Join(c.Build.Context, "Dockerfile")
		newKey := path.Join(other.Build.Context, "Dockerfile")
		if patterns, ok := c.Patterns[oldKey]; ok {
			if _, overridden := c.Patterns[newKey]; !overridden {
				c.Patterns[newKey] = patterns
				delete(c.Patterns, oldKey)
			}
		}
		c.Build.Context = other.Build.Context
	}
	if other.Build.Timeout != "" {
		c.Build.Timeout = other.Build.Timeout
	}

	if other.History.Enabled != nil {
		c.History.Enabled = *other.History.Enabled
	}
	if other.History.MaxRuns != nil {
		c.History.MaxRuns = *other.History.MaxRuns
	}

	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}

// applyEnvOverrides applies SANDBOXCHECK_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SANDBOXCHECK_BUILD_ENABLED"); v != "" {
		c.Build.Enabled = strings.ToLower(v) == "true" || v == "1"
	}
	if v := os.Getenv("SANDBOXCHECK_BUILD_IMAGE"); v != "" {
		c.Build.Image = v
	}
	if v := os.Getenv("SANDBOXCHECK_BUILD_TIMEOUT"); v != "" {
		c.Build.Timeout = v
	}
	if v := os.Getenv("SANDBOXCHECK_HISTORY_ENABLED"); v != "" {
		c.History.Enabled = strings.ToLower(v) == "true" || v == "1"
	}
	if v := os.Getenv("SANDBOXCHECK_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if len(c.Structure.RequiredDirs) == 0 && len(c.Structure.RequiredFiles) == 0 {
		return fmt.Errorf("structure must require at least one directory or file")
	}

	if c.Env.MinVars < 0 {
		return fmt.Errorf("env.min_vars must be non-negative, got %d", c.Env.MinVars)
	}

	if c.Build.Timeout != "" {
		if _, err := time.ParseDuration(c.Build.Timeout); err != nil {
			return fmt.Errorf("build.timeout must be a duration, got %q: %w", c.Build.Timeout, err)
		}
	}
	if c.Build.Enabled && c.Build.Image == "" {
		return fmt.Errorf("build.image must be set when build is enabled")
	}

	if c.History.MaxRuns < 0 {
		return fmt.Errorf("history.max_runs must be non-negative, got %d", c.History.MaxRuns)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.LogLevel)
	}

	return nil
}

// BuildTimeout returns the parsed build timeout, or 10 minutes if unset.
func (c *Config) BuildTimeout() time.Duration {
	if c.Build.Timeout == "" {
		return 10 * time.Minute
	}
	d, err := time.ParseDuration(c.Build.Timeout)
	if err != nil {
		return 10 * time.Minute
	}
	return d
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// FindWorkspaceRoot finds the sandbox workspace root directory.
// It looks for a .git directory or a .sandboxcheck.yaml/.yml file by
// walking up the directory tree, falling back to the start directory.
func FindWorkspaceRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	currentDir := absDir
	for {
		if dirExists(filepath.Join(currentDir, ".git")) {
			return currentDir, nil
		}

		if fileExists(filepath.Join(currentDir, ".sandboxcheck.yaml")) ||
			fileExists(filepath.Join(currentDir, ".sandboxcheck.yml")) {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return absDir, nil
		}
		currentDir = parentDir
	}
}

// DataDir returns the per-workspace data directory path.
func DataDir(root string) string {
	return filepath.Join(root, DataDirName)
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// dirExists checks if a directory exists.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
