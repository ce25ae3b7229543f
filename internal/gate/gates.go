package gate

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/buildcamp/sandboxcheck/internal/oracle"
)

// Gate names as they appear in reports and the history store.
const (
	GateContainer = "container config"
	GateStructure = "directory structure"
	GateEnv       = "environment config"
	GateCleanup   = "cleanup script"
)

// containerGate verifies the devcontainer definition: Dockerfile and
// devcontainer.json present, required Dockerfile components, and (when
// enabled) a successful image build.
func (r *Runner) containerGate(ctx context.Context) GateResult {
	g := GateResult{
		Name: GateContainer,
		Hint: "create .devcontainer/Dockerfile (with FROM, node, python, git) and devcontainer.json",
	}

	dockerfile := path.Join(r.cfg.Build.Context, "Dockerfile")
	devcontainer := path.Join(r.cfg.Build.Context, "devcontainer.json")

	g.add(r.checkFileExists("dockerfile", dockerfile))
	g.add(r.checkFileExists("devcontainer.json", devcontainer))
	g.add(r.checkPatterns("dockerfile components", dockerfile))

	g.add(r.checkBuild(ctx))

	g.finish()
	return g
}

// structureGate verifies the required directory and file layout,
// collecting every missing path before reporting.
func (r *Runner) structureGate(_ context.Context) GateResult {
	g := GateResult{
		Name: GateStructure,
		Hint: "create the missing directories and files listed above",
	}

	report := CheckPaths(r.oracle, r.cfg.Structure.RequiredDirs, r.cfg.Structure.RequiredFiles)

	if len(report.MissingDirs) == 0 {
		g.add(CheckResult{
			Name:    "directories",
			Status:  StatusPass,
			Message: fmt.Sprintf("all %d required directories present", len(r.cfg.Structure.RequiredDirs)),
		})
	} else {
		g.add(CheckResult{
			Name:    "directories",
			Status:  StatusFail,
			Message: "missing: " + strings.Join(report.MissingDirs, ", "),
		})
	}

	if len(report.MissingFiles) == 0 {
		g.add(CheckResult{
			Name:    "files",
			Status:  StatusPass,
			Message: fmt.Sprintf("all %d required files present", len(r.cfg.Structure.RequiredFiles)),
		})
	} else {
		g.add(CheckResult{
			Name:    "files",
			Status:  StatusFail,
			Message: "missing: " + strings.Join(report.MissingFiles, ", "),
		})
	}

	g.finish()
	return g
}

// envGate verifies the env file holds variables and that the ignore file
// excludes what it must.
func (r *Runner) envGate(_ context.Context) GateResult {
	g := GateResult{
		Name: GateEnv,
		Hint: fmt.Sprintf("create %s with your variables and exclude it in %s", r.cfg.Env.File, r.cfg.Env.Ignore),
	}

	g.add(r.checkEnvFile())
	g.add(r.checkFileExists("ignore file", r.cfg.Env.Ignore))
	g.add(r.checkPatterns("ignore entries", r.cfg.Env.Ignore))

	g.finish()
	return g
}

// cleanupGate verifies the cleanup script exists, is executable, and
// covers the required teardown features.
func (r *Runner) cleanupGate(_ context.Context) GateResult {
	script := r.cfg.Cleanup.Script
	g := GateResult{
		Name: GateCleanup,
		Hint: fmt.Sprintf("create an executable %s (chmod +x %s) handling docker and node_modules teardown with a confirm prompt", script, script),
	}

	g.add(r.checkFileExists("script", script))

	if r.cfg.Cleanup.RequireExecutable {
		c := CheckResult{Name: "executable"}
		if r.oracle.IsExecutable(script) {
			c.Status = StatusPass
			c.Message = "executable bit set"
		} else {
			c.Status = StatusFail
			c.Message = fmt.Sprintf("%s is not executable", script)
		}
		g.add(c)
	}

	g.add(r.checkPatterns("script features", script))

	g.finish()
	return g
}

// checkFileExists builds a pass/fail check for a single required file.
func (r *Runner) checkFileExists(name, file string) CheckResult {
	c := CheckResult{Name: name}
	if r.oracle.Exists(file) && !r.oracle.IsDir(file) {
		c.Status = StatusPass
		c.Message = file + " present"
	} else {
		c.Status = StatusFail
		c.Message = file + " not found"
	}
	return c
}

// checkPatterns verifies the configured required substrings for a file.
// A missing file fails closed with every pattern reported missing; a
// file with no configured patterns warns.
func (r *Runner) checkPatterns(name, file string) CheckResult {
	c := CheckResult{Name: name}

	patterns := r.cfg.Patterns[file]
	if len(patterns) == 0 {
		c.Status = StatusWarn
		c.Message = "no required patterns configured for " + file
		return c
	}

	missing := oracle.MissingPatterns(r.oracle, file, patterns)
	if len(missing) == 0 {
		c.Status = StatusPass
		c.Message = fmt.Sprintf("all %d required patterns found in %s", len(patterns), file)
		return c
	}

	c.Status = StatusFail
	c.Message = fmt.Sprintf("%s missing: %s", file, strings.Join(missing, ", "))
	return c
}

// checkEnvFile verifies the env file exists and defines enough variables.
// Comment and blank lines don't count.
func (r *Runner) checkEnvFile() CheckResult {
	c := CheckResult{Name: "env file"}
	file := r.cfg.Env.File

	lines, err := r.oracle.Lines(file)
	if err != nil {
		c.Status = StatusFail
		c.Message = file + " not found"
		return c
	}

	vars := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.Contains(trimmed, "=") {
			vars++
		}
	}

	if vars < r.cfg.Env.MinVars {
		c.Status = StatusFail
		c.Message = fmt.Sprintf("%s defines %d variable(s), need at least %d", file, vars, r.cfg.Env.MinVars)
		return c
	}

	c.Status = StatusPass
	c.Message = fmt.Sprintf("%s defines %d variable(s)", file, vars)
	return c
}

// checkBuild runs the container build when enabled. A skipped build is a
// warning, never a failure; a failed or unstartable build fails the gate.
func (r *Runner) checkBuild(ctx context.Context) CheckResult {
	c := CheckResult{Name: "image build"}

	if !r.cfg.Build.Enabled {
		c.Status = StatusPass
		c.Message = "build disabled in config"
		return c
	}
	if r.skipBuild {
		c.Status = StatusWarn
		c.Message = "build skipped"
		return c
	}

	result, err := r.builder.Build(ctx, r.cfg.Build.Context, r.cfg.Build.Image)
	if err != nil {
		c.Status = StatusFail
		c.Message = fmt.Sprintf("could not run docker build: %v", err)
		return c
	}

	if !result.Succeeded() {
		c.Status = StatusFail
		c.Message = fmt.Sprintf("docker build exited %d", result.ExitCode)
		c.Details = strings.TrimSpace(result.Stderr)
		return c
	}

	c.Status = StatusPass
	c.Message = fmt.Sprintf("image %s built in %s", r.cfg.Build.Image, result.Duration.Round(100*time.Millisecond))
	return c
}
