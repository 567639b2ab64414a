package monitor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arden-bio/celltrack/internal/track"
)

func TestSaveProgressPlots(t *testing.T) {
	dir := t.TempDir()
	history := []track.IterationStat{
		{Iteration: 1, PathScore: 34, NumCells: 1},
		{Iteration: 2, PathScore: 22, NumCells: 3},
	}
	scorePath := filepath.Join(dir, "scores.png")
	cellsPath := filepath.Join(dir, "cells.png")
	require.NoError(t, SaveProgressPlots(history, scorePath, cellsPath))

	for _, p := range []string{scorePath, cellsPath} {
		info, err := os.Stat(p)
		require.NoError(t, err)
		require.Greater(t, info.Size(), int64(0))
	}
}

func TestSaveProgressPlotsEmptyHistory(t *testing.T) {
	if err := SaveProgressPlots(nil, "a.png", "b.png"); err == nil {
		t.Fatal("expected an error for an empty history")
	}
}

func TestSaveLineageChart(t *testing.T) {
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
	path := filepath.Join(t.TempDir(), "lineage.html")
	require.NoError(t, SaveLineageChart(res, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(raw)
	require.True(t, strings.Contains(html, "track 1"))
	require.True(t, strings.Contains(html, "track 2 (dies)"))
}
