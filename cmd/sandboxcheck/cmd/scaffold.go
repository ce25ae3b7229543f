package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/buildcamp/sandboxcheck/internal/config"
	"github.com/buildcamp/sandboxcheck/internal/output"
)

const scaffoldDockerfile = `FROM ubuntu:22.04

RUN apt-get update && apt-get install -y \
    curl \
    git \
    python3 \
    python3-pip \
    && rm -rf /var/lib/apt/lists/*

RUN curl -fsSL https://deb.nodesource.com/setup_20.x | bash - \
    && apt-get install -y nodejs

WORKDIR /workspace
`

const scaffoldDevcontainer = `{
  "name": "bootcamp-sandbox",
  "build": {
    "dockerfile": "Dockerfile"
  },
  "workspaceFolder": "/workspace"
}
`

const scaffoldEnv = `# Sandbox environment variables. Never commit this file.
DB_HOST=localhost
DB_PORT=5432
API_KEY=changeme
`

const scaffoldGitignore = `.env
node_modules
*.log
`

const scaffoldCleanup = `#!/bin/bash
# Reset the sandbox to a clean state.
set -euo pipefail

read -r -p "This removes containers and node_modules. Type yes to confirm: " answer
if [ "$answer" != "yes" ]; then
    echo "Aborted."
    exit 1
fi

docker system prune -f
find . -name node_modules -type d -prune -exec rm -rf {} +
echo "Sandbox clean."
`

func newScaffoldCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scaffold [path]",
		Short: "Create the expected sandbox layout",
		Long: `Scaffold creates the directories and starter files the sandbox gates
expect: the devcontainer configuration, source tree, environment file,
ignore rules, and cleanup script.

Existing files are never overwritten; they are reported and skipped.`,
		Example: `  # Scaffold into the current directory
  sandboxcheck scaffold

  # Scaffold a new sandbox
  sandboxcheck scaffold ~/bootcamp/sandbox`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runScaffold(cmd, dir)
		},
	}
	return cmd
}

func runScaffold(cmd *cobra.Command, dir string) error {
	root, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	cfg := config.NewConfig()
	w := output.New(cmd.OutOrStdout())

	for _, d := range cfg.Structure.RequiredDirs {
		path := filepath.Join(root, d)
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", d, err)
		}
		w.Statusf("", "dir  %s", d)
	}

	files := []struct {
		path    string
		content string
		mode    os.FileMode
	}{
		{filepath.Join(".devcontainer", "Dockerfile"), scaffoldDockerfile, 0o644},
		{filepath.Join(".devcontainer", "devcontainer.json"), scaffoldDevcontainer, 0o644},
		{".env", scaffoldEnv, 0o644},
		{".gitignore", scaffoldGitignore, 0o644},
		{"cleanup.sh", scaffoldCleanup, 0o755},
	}

	for _, f := range files {
		path := filepath.Join(root, f.path)
		if _, err := os.Stat(path); err == nil {
			w.Warningf("%s exists, skipped", f.path)
			continue
		}
		if err := os.WriteFile(path, []byte(f.content), f.mode); err != nil {
			return fmt.Errorf("write %s: %w", f.path, err)
		}
		w.Statusf("", "file %s", f.path)
	}

	w.Newline()
	w.Success("Sandbox scaffolded. Run 'sandboxcheck validate' to verify.")
	return nil
}
