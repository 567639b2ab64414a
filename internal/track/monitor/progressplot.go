// Package monitor renders diagnostics for track-linking runs: PNG
// plots of the per-iteration progress and an HTML chart of the
// resulting lineage forest.
package monitor

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/arden-bio/celltrack/internal/track"
)

// SaveProgressPlots writes two PNG plots of a run's iteration history:
// the score of each inserted path and the cell count over iterations.
// AddCell is monotone, so the path-score series should be
// non-increasing apart from swap-enabled recoveries; the plot makes
// regressions easy to spot.
func SaveProgressPlots(history []track.IterationStat, scorePath, cellsPath string) error {
	if len(history) == 0 {
		return fmt.Errorf("monitor: no iterations to plot")
	}

	scorePts := make(plotter.XYs, 0, len(history))
	cellPts := make(plotter.XYs, 0, len(history))
	scores := make([]float64, 0, len(history))
	for _, h := range history {
		scorePts = append(scorePts, plotter.XY{X: float64(h.Iteration), Y: h.PathScore})
		cellPts = append(cellPts, plotter.XY{X: float64(h.Iteration), Y: float64(h.NumCells)})
		scores = append(scores, h.PathScore)
	}

	pScore := plot.New()
	pScore.Title.Text = fmt.Sprintf("Inserted path score per iteration (mean %.2f)", stat.Mean(scores, nil))
	pScore.X.Label.Text = "iteration"
	pScore.Y.Label.Text = "path score"
	scoreLine, err := plotter.NewLine(scorePts)
	if err != nil {
		return fmt.Errorf("monitor: %w", err)
	}
	scoreLine.Width = vg.Points(1)
	pScore.Add(scoreLine)
	if err := pScore.Save(10*vg.Inch, 4*vg.Inch, scorePath); err != nil {
		return fmt.Errorf("monitor: %w", err)
	}

	pCells := plot.New()
	pCells.Title.Text = "Cell tracks per iteration"
	pCells.X.Label.Text = "iteration"
	pCells.Y.Label.Text = "tracks"
	cellLine, err := plotter.NewLine(cellPts)
	if err != nil {
		return fmt.Errorf("monitor: %w", err)
	}
	cellLine.Width = vg.Points(1)
	pCells.Add(cellLine)
	if err := pCells.Save(10*vg.Inch, 4*vg.Inch, cellsPath); err != nil {
		return fmt.Errorf("monitor: %w", err)
	}
	return nil
}
