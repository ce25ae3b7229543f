// Package oracle abstracts the filesystem questions the validator asks,
// so check logic can be unit-tested against an in-memory fake instead of
// real disk I/O.
package oracle

// Oracle answers existence and content questions about workspace paths.
// All paths are relative to the workspace root the oracle was built for.
type Oracle interface {
	// Exists reports whether the path exists (file or directory).
	Exists(path string) bool

	// IsDir reports whether the path exists and is a directory.
	IsDir(path string) bool

	// IsExecutable reports whether the path exists and has an executable bit.
	IsExecutable(path string) bool

	// Contains reports whether the file contains the literal pattern,
	// case-sensitively, anywhere in its contents. A missing or unreadable
	// file reports false.
	Contains(path, pattern string) bool

	// Lines returns the file's lines. A missing file returns an error.
	Lines(path string) ([]string, error)
}

// ContainsAll reports whether the file contains every pattern.
// It fails closed: a missing file reports false rather than erroring.
func ContainsAll(o Oracle, path string, patterns []string) bool {
	for _, p := range patterns {
		if !o.Contains(path, p) {
			return false
		}
	}
	return true
}

// MissingPatterns returns the subset of patterns not found in the file,
// in input order. A missing file reports all patterns as missing.
func MissingPatterns(o Oracle, path string, patterns []string) []string {
	var missing []string
	for _, p := range patterns {
		if !o.Contains(path, p) {
			missing = append(missing, p)
		}
	}
	return missing
}
