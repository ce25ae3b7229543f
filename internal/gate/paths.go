package gate

import "github.com/buildcamp/sandboxcheck/internal/oracle"

// PathReport lists every required path that is absent. Missing entries
// are collected in full before reporting so the user sees the complete
// gap list in one pass.
type PathReport struct {
	MissingDirs  []string `json:"missing_dirs,omitempty"`
	MissingFiles []string `json:"missing_files,omitempty"`
}

// Complete reports whether nothing is missing.
func (p PathReport) Complete() bool {
	return len(p.MissingDirs) == 0 && len(p.MissingFiles) == 0
}

// CheckPaths verifies that every required directory and file exists
// relative to the oracle's root. No short-circuit: all entries are
// inspected.
func CheckPaths(o oracle.Oracle, requiredDirs, requiredFiles []string) PathReport {
	var report PathReport

	for _, dir := range requiredDirs {
		if !o.IsDir(dir) {
			report.MissingDirs = append(report.MissingDirs, dir)
		}
	}

	for _, file := range requiredFiles {
		if !o.Exists(file) || o.IsDir(file) {
			report.MissingFiles = append(report.MissingFiles, file)
		}
	}

	return report
}
