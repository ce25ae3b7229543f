// Package configs provides embedded configuration templates for
// sandboxcheck.
//
// Templates are embedded at build time with go:embed so they ship in
// every distribution, source builds included. They are written by
// `sandboxcheck config init`, which creates a commented
// .sandboxcheck.yaml in the workspace root.
//
// Configuration hierarchy (see internal/config Load):
//  1. Hardcoded defaults (internal/config NewConfig)
//  2. User config (~/.config/sandboxcheck/config.yaml)
//  3. Workspace config (.sandboxcheck.yaml)
//  4. Environment variables (SANDBOXCHECK_*)
package configs

import _ "embed"

// WorkspaceConfigTemplate is the commented template for the workspace
// configuration file. Created by `sandboxcheck config init`.
//
//go:embed workspace-config.example.yaml
var WorkspaceConfigTemplate string
