// Command celltrack runs the two analysis cores from the command line:
// watershed region merging over a label volume, and Viterbi track
// linking over per-frame detection scores.
//
// Merge mode reads a label array and an intensity array in the binary
// array format and writes the merged label array:
//
//	celltrack -mode merge -labels labels.bin -image image.bin \
//	    -threshold 0.9 -min-size 10 -out merged.bin
//
// Track mode reads a problem description in JSON and writes the cell,
// division and death matrices, optionally persisting the run to a
// SQLite database and rendering diagnostics:
//
//	celltrack -mode track -problem problem.json -out result.json \
//	    -db runs.db -chart lineage.html -plot-dir plots/
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/arden-bio/celltrack/internal/arrayio"
	"github.com/arden-bio/celltrack/internal/segment"
	"github.com/arden-bio/celltrack/internal/track"
	"github.com/arden-bio/celltrack/internal/track/monitor"
	"github.com/arden-bio/celltrack/internal/trackdb"
)

var (
	mode = flag.String("mode", "track", "Analysis to run: merge or track")

	// Merge mode.
	labelsPath = flag.String("labels", "", "Label array (binary array format) for merge mode")
	imagePath  = flag.String("image", "", "Intensity array (binary array format) for merge mode")
	threshold  = flag.Float64("threshold", 1.0, "Ridge score threshold at or below which regions merge")
	minSize    = flag.Int("min-size", 0, "Regions at or below this pixel count merge regardless of score")

	// Track mode.
	problemPath  = flag.String("problem", "", "Problem description (JSON) for track mode")
	singleIdle   = flag.Bool("single-idle", false, "Use one idle state per frame instead of born-later and dead states")
	maxMigScore  = flag.Float64("max-mig-score", 100, "Cap on the score contribution of a single migration")
	iterationDir = flag.String("iteration-dir", "", "Directory for per-iteration matrix snapshots (empty disables)")
	dbPath       = flag.String("db", "", "SQLite database to persist the run to (empty disables)")
	chartPath    = flag.String("chart", "", "HTML lineage chart output path (empty disables)")
	plotDir      = flag.String("plot-dir", "", "Directory for PNG progress plots (empty disables)")
	verbose      = flag.Bool("v", false, "Log every executed event")

	outPath = flag.String("out", "", "Output path (binary array for merge, JSON for track)")
)

func main() {
	flag.Parse()
	if *outPath == "" {
		log.Fatal("missing -out")
	}

	switch *mode {
	case "merge":
		if err := runMerge(); err != nil {
			log.Fatalf("merge failed: %v", err)
		}
	case "track":
		if err := runTrack(); err != nil {
			log.Fatalf("track failed: %v", err)
		}
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}

func runMerge() error {
	if *labelsPath == "" || *imagePath == "" {
		return fmt.Errorf("merge mode needs -labels and -image")
	}
	dims, labelData, err := arrayio.LoadFloat64(*labelsPath)
	if err != nil {
		return err
	}
	imageDims, image, err := arrayio.LoadFloat64(*imagePath)
	if err != nil {
		return err
	}
	if len(imageDims) != len(dims) {
		return fmt.Errorf("label and image dimensionality differ: %v vs %v", dims, imageDims)
	}
	for i := range dims {
		if dims[i] != imageDims[i] {
			return fmt.Errorf("label and image dimensions differ: %v vs %v", dims, imageDims)
		}
	}

	labels := make([]int, len(labelData))
	for i, v := range labelData {
		labels[i] = int(v)
	}

	newLabels, err := segment.MergeSegments(dims, labels, image, *threshold, *minSize)
	if err != nil {
		return err
	}

	out := make([]float64, len(newLabels))
	for i, v := range newLabels {
		out[i] = float64(v)
	}
	return arrayio.SaveFloat64(*outPath, dims, out)
}

func runTrack() error {
	if *problemPath == "" {
		return fmt.Errorf("track mode needs -problem")
	}
	raw, err := os.ReadFile(*problemPath)
	if err != nil {
		return err
	}
	var problem track.Problem
	if err := json.Unmarshal(raw, &problem); err != nil {
		return fmt.Errorf("parse %s: %w", *problemPath, err)
	}

	opts := track.Options{
		SingleIdleState: *singleIdle,
		MaxMigScore:     *maxMigScore,
		IterationDir:    *iterationDir,
	}
	if *verbose {
		opts.Sink = track.LogSink{}
	}

	engine, err := track.NewEngine(&problem, opts)
	if err != nil {
		return err
	}
	result, err := engine.Track()
	if err != nil {
		return err
	}
	log.Printf("linked %d tracks over %d frames in %d iterations",
		len(result.DeathMatrix), len(result.CellMatrix), result.Iterations)

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(*outPath, encoded, 0o644); err != nil {
		return err
	}

	if *dbPath != "" {
		db, err := trackdb.Open(*dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		runID, err := db.SaveResult(result)
		if err != nil {
			return err
		}
		log.Printf("stored run %s in %s", runID, *dbPath)
	}

	if *chartPath != "" {
		if err := monitor.SaveLineageChart(result, *chartPath); err != nil {
			return err
		}
	}
	if *plotDir != "" && len(engine.History()) > 0 {
		if err := os.MkdirAll(*plotDir, 0o755); err != nil {
			return err
		}
		err := monitor.SaveProgressPlots(engine.History(),
			filepath.Join(*plotDir, "path_scores.png"),
			filepath.Join(*plotDir, "cell_counts.png"))
		if err != nil {
			return err
		}
	}
	return nil
}
