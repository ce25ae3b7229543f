package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperation_String(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{OpCreate, "CREATE"},
		{OpModify, "MODIFY"},
		{OpDelete, "DELETE"},
		{OpRename, "RENAME"},
		{Operation(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.op.String())
	}
}

func TestShouldIgnore(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{".git/HEAD", true},
		{".sandboxcheck/history.db", true},
		{"node_modules/left-pad/index.js", true},
		{"src/frontend/node_modules/x.js", true},
		{".env", false},
		{"src/backend/main.py", false},
		{".gitignore", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldIgnore(tt.path))
		})
	}
}

func TestOptions_WithDefaults(t *testing.T) {
	o := Options{}.WithDefaults()
	assert.Equal(t, 200*time.Millisecond, o.DebounceWindow)
	assert.Equal(t, 100, o.EventBufferSize)

	custom := Options{DebounceWindow: time.Second, EventBufferSize: 5}.WithDefaults()
	assert.Equal(t, time.Second, custom.DebounceWindow)
	assert.Equal(t, 5, custom.EventBufferSize)
}

// startWatcher runs a watcher against dir and returns it once started.
func startWatcher(t *testing.T, dir string) *Watcher {
	t.Helper()

	w, err := New(Options{DebounceWindow: 50 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	t.Cleanup(func() { _ = w.Stop() })

	go func() { _ = w.Start(ctx, dir) }()

	// Give the recursive add a moment to finish
	time.Sleep(100 * time.Millisecond)
	return w
}

func waitForBatch(t *testing.T, w *Watcher) []Event {
	t.Helper()
	select {
	case batch := <-w.Events():
		return batch
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watch events")
		return nil
	}
}

func TestWatcher_DetectsFileCreation(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("A=1\n"), 0o644))

	batch := waitForBatch(t, w)
	require.NotEmpty(t, batch)
	assert.Equal(t, ".env", batch[0].Path)
}

func TestWatcher_IgnoresGitDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	w := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "index"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cleanup.sh"), []byte("#!/bin/bash\n"), 0o755))

	batch := waitForBatch(t, w)
	for _, ev := range batch {
		assert.NotContains(t, ev.Path, ".git")
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := New(Options{})
	require.NoError(t, err)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
