package monitor

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/arden-bio/celltrack/internal/track"
)

// SaveLineageChart renders a tracking result as an HTML page: one line
// series per track showing which detection it occupies in each frame,
// plus a graph of the division relationships between tracks.
func SaveLineageChart(result *track.Result, path string) error {
	numT := len(result.CellMatrix)
	numCells := len(result.DeathMatrix)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Cell lineage", Width: "1100px", Height: "520px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Cell tracks",
			Subtitle: fmt.Sprintf("%d tracks over %d frames", numCells, numT),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "frame"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "detection"}),
	)

	frames := make([]int, numT)
	for t := range frames {
		frames[t] = t + 1
	}
	line.SetXAxis(frames)
	for c := 0; c < numCells; c++ {
		series := make([]opts.LineData, numT)
		for t := 0; t < numT; t++ {
			if d := result.CellMatrix[t][c]; d > 0 {
				series[t] = opts.LineData{Value: d}
			} else {
				series[t] = opts.LineData{Value: "-"}
			}
		}
		name := fmt.Sprintf("track %d", c+1)
		if result.DeathMatrix[c] == 1 {
			name += " (dies)"
		}
		line.AddSeries(name, series)
	}

	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1100px", Height: "520px"}),
		charts.WithTitleOpts(opts.Title{Title: "Divisions"}),
	)
	nodes := make([]opts.GraphNode, 0, numCells)
	for c := 0; c < numCells; c++ {
		nodes = append(nodes, opts.GraphNode{Name: fmt.Sprintf("track %d", c+1)})
	}
	links := make([]opts.GraphLink, 0)
	for c, div := range result.DivisionMatrix {
		for _, child := range div {
			if child > 0 {
				links = append(links, opts.GraphLink{
					Source: fmt.Sprintf("track %d", c+1),
					Target: fmt.Sprintf("track %d", child),
				})
			}
		}
	}
	graph.AddSeries("lineage", nodes, links,
		charts.WithGraphChartOpts(opts.GraphChart{Layout: "force", Roam: opts.Bool(true)}))

	page := components.NewPage()
	page.AddCharts(line, graph)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("monitor: %w", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		return fmt.Errorf("monitor: %w", err)
	}
	return f.Close()
}
