package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildcamp/sandboxcheck/internal/gate"
)

func testReport(passed int) *gate.Report {
	report := &gate.Report{
		Root:      "/workspace",
		Timestamp: time.Now(),
		Duration:  1500 * time.Millisecond,
		Tally:     gate.Tally{Passed: passed, Total: 4},
	}
	names := []string{gate.GateContainer, gate.GateStructure, gate.GateEnv, gate.GateCleanup}
	for i, name := range names {
		report.Gates = append(report.Gates, gate.GateResult{
			Name:   name,
			Passed: i < passed,
			Hint:   "fix " + name,
		})
	}
	return report
}

func newTestStore(t *testing.T, maxRuns int) *Store {
	t.Helper()
	s, err := New("", maxRuns)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_RecordAndList(t *testing.T) {
	s := newTestStore(t, 100)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, testReport(2)))
	require.NoError(t, s.Record(ctx, testReport(4)))

	runs, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first
	assert.Equal(t, 4, runs[0].Passed)
	assert.True(t, runs[0].AllPassed())
	assert.Empty(t, runs[0].FailedGates)

	assert.Equal(t, 2, runs[1].Passed)
	assert.False(t, runs[1].AllPassed())
	assert.Equal(t, []string{gate.GateEnv, gate.GateCleanup}, runs[1].FailedGates)
	assert.Equal(t, "/workspace", runs[1].Root)
	assert.Equal(t, 1500*time.Millisecond, runs[1].Duration)
}

func TestStore_ListLimit(t *testing.T) {
	s := newTestStore(t, 100)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Record(ctx, testReport(i%5)))
	}

	runs, err := s.List(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestStore_PrunesBeyondRetention(t *testing.T) {
	s := newTestStore(t, 3)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, s.Record(ctx, testReport(4)))
	}

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	runs, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	// The retained runs are the newest ones
	assert.Greater(t, runs[0].ID, runs[2].ID)
}

func TestStore_Latest(t *testing.T) {
	s := newTestStore(t, 100)
	ctx := context.Background()

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	require.NoError(t, s.Record(ctx, testReport(1)))
	require.NoError(t, s.Record(ctx, testReport(3)))

	latest, err = s.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 3, latest.Passed)
}

func TestStore_OnDiskRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "history.db")

	s, err := New(path, 100)
	require.NoError(t, err)
	require.NoError(t, s.Record(context.Background(), testReport(4)))
	require.NoError(t, s.Close())

	// Reopen and read back
	s2, err := New(path, 100)
	require.NoError(t, err)
	defer s2.Close()

	runs, err := s2.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 4, runs[0].Passed)
}

func TestStore_DefaultRetention(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	for i := 0; i < 105; i++ {
		require.NoError(t, s.Record(ctx, testReport(4)))
	}

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, n, fmt.Sprintf("default retention should cap at 100, got %d", n))
}
