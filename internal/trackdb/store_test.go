package trackdb

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/arden-bio/celltrack/internal/track"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "tracks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)

	res := &track.Result{
		CellMatrix: [][]int{
			{1, 0, 0},
			{0, 2, 1},
			{0, 1, 1},
		},
		DivisionMatrix: [][2]int{{3, 2}, {0, 0}, {0, 0}},
		DeathMatrix:    []int{0, 1, 0},
		Iterations:     2,
	}

	runID, err := db.SaveResult(res)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	got, err := db.LoadResult(runID)
	require.NoError(t, err)
	if diff := cmp.Diff(res, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestListRuns(t *testing.T) {
	db := openTestDB(t)

	res := &track.Result{
		CellMatrix:     [][]int{{1}},
		DivisionMatrix: [][2]int{{0, 0}},
		DeathMatrix:    []int{0},
		Iterations:     1,
	}
	id1, err := db.SaveResult(res)
	require.NoError(t, err)
	id2, err := db.SaveResult(res)
	require.NoError(t, err)

	runs, err := db.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)

	ids := map[string]bool{runs[0].ID: true, runs[1].ID: true}
	require.True(t, ids[id1] && ids[id2])
	for _, r := range runs {
		require.Equal(t, 1, r.Frames)
		require.Equal(t, 1, r.Cells)
		require.Equal(t, 1, r.Iterations)
	}
}

func TestLoadMissingRun(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.LoadResult("no-such-run"); err == nil {
		t.Fatal("expected an error for a missing run")
	}
}
