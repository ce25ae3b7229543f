package gate

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// MarkerFile records the last fully-passed validation run.
const MarkerFile = ".check-passed"

// markerLock guards marker writes between concurrent validator runs
// (a student's editor task and a terminal run racing is common).
const markerLock = ".check.lock"

// NeedsCheck returns true if no passing run has been recorded yet.
func NeedsCheck(dataDir string) bool {
	_, err := os.Stat(filepath.Join(dataDir, MarkerFile))
	return os.IsNotExist(err)
}

// MarkPassed records a fully-passed run. The write is serialized with a
// file lock so concurrent runs cannot interleave partial writes.
func MarkPassed(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create marker directory: %w", err)
	}

	lock := flock.New(filepath.Join(dataDir, markerLock))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("acquire marker lock: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	markerPath := filepath.Join(dataDir, MarkerFile)
	content := []byte(time.Now().Format(time.RFC3339))
	return os.WriteFile(markerPath, content, 0o644)
}

// ClearMarker removes the marker, forcing the next run to be treated as
// a first check.
func ClearMarker(dataDir string) error {
	err := os.Remove(filepath.Join(dataDir, MarkerFile))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("remove marker file: %w", err)
	}
	return nil
}

// MarkerAge returns how long ago the last passing run was recorded.
// Returns zero if no marker exists.
func MarkerAge(dataDir string) time.Duration {
	content, err := os.ReadFile(filepath.Join(dataDir, MarkerFile))
	if err != nil {
		return 0
	}

	t, err := time.Parse(time.RFC3339, string(content))
	if err != nil {
		return 0
	}

	return time.Since(t)
}
