package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndReadRun(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	run := Run{
		CreatedOn:     time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC),
		Gameweek:      25,
		Chip:          "bench_boost",
		Formation:     "4-4-2",
		SquadCost:     99.5,
		SquadExpected: 61.32,
		Projected:     74.11,
		Transfers:     2,
		Penalty:       0,
	}
	picks := []Pick{
		{Element: 10, Name: "Saka", Position: "MID", Team: "ARS", Cost: 10.5, Expected: 7.21, Role: RoleCaptain},
		{Element: 11, Name: "Wissa", Position: "FWD", Team: "BRE", Cost: 6.2, Expected: 4.05, Role: RoleStart},
		{Element: 12, Name: "Raya", Position: "GK", Team: "ARS", Cost: 5.6, Expected: 4.05, Role: RoleBench},
	}

	runID, err := s.RecordRun(ctx, run, picks)
	require.NoError(t, err)
	require.Positive(t, runID)

	runs, err := s.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	got := runs[0]
	assert.Equal(t, runID, got.ID)
	assert.Equal(t, 25, got.Gameweek)
	assert.Equal(t, "bench_boost", got.Chip)
	assert.Equal(t, "4-4-2", got.Formation)
	assert.InDelta(t, 99.5, got.SquadCost, 1e-9)
	assert.InDelta(t, 74.11, got.Projected, 1e-9)
	assert.Equal(t, 2, got.Transfers)
	assert.True(t, got.CreatedOn.Equal(run.CreatedOn))

	stored, err := s.Picks(ctx, runID)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	// Ordered by expected points, ties by element id.
	assert.Equal(t, "Saka", stored[0].Name)
	assert.Equal(t, RoleCaptain, stored[0].Role)
	assert.Equal(t, 11, stored[1].Element)
	assert.Equal(t, 12, stored[2].Element)
}

func TestRunsNewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for gw := 1; gw <= 5; gw++ {
		_, err := s.RecordRun(ctx, Run{Gameweek: gw, Formation: "3-4-3"}, nil)
		require.NoError(t, err)
	}

	runs, err := s.Runs(ctx, 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, 5, runs[0].Gameweek)
	assert.Equal(t, 4, runs[1].Gameweek)
	assert.Equal(t, 3, runs[2].Gameweek)
}

func TestPicksUnknownRun(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	picks, err := s.Picks(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, picks)
}
