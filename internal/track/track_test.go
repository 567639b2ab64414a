package track

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arden-bio/celltrack/internal/arrayio"
)

// End-to-end run through the public entry point, with per-iteration
// snapshots enabled.
func TestViterbiTrackLinkingWritesSnapshots(t *testing.T) {
	dir := t.TempDir()
	p := &Problem{
		Detections: []int{1, 1},
		Counts: []CountScores{
			{Frame: 1, Detection: 1, Scores: []float64{0, 10}},
			{Frame: 2, Detection: 1, Scores: []float64{0, 10}},
		},
		Migrations: []MigrationScores{
			{Frame: 1, From: 1, To: 1, Scores: [2]float64{0, 2}},
		},
	}

	res, err := ViterbiTrackLinking(p, Options{MaxMigScore: 100, IterationDir: dir})
	require.NoError(t, err)
	require.Equal(t, 1, res.Iterations)
	require.Equal(t, [][]int{{1}, {1}}, res.CellMatrix)

	for _, name := range []string{"cellArray00001.bin", "divArray00001.bin", "deathArray00001.bin", "iterationArray00001.bin"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing snapshot %s: %v", name, err)
		}
	}

	dims, data, err := arrayio.LoadFloat64(filepath.Join(dir, "cellArray00001.bin"))
	require.NoError(t, err)
	require.Equal(t, []int{2, 1}, dims)
	require.Equal(t, []float64{1, 1}, data)
}

// Events executed against the forest are reported through the sink.
type captureSink struct {
	records []Record
}

func (c *captureSink) Emit(r Record) { c.records = append(c.records, r) }

func TestEventSinkReceivesRecords(t *testing.T) {
	sink := &captureSink{}
	p := &Problem{
		Detections: []int{1, 1},
		Counts: []CountScores{
			{Frame: 1, Detection: 1, Scores: []float64{0, 10}},
			{Frame: 2, Detection: 1, Scores: []float64{0, 10}},
		},
		Migrations: []MigrationScores{
			{Frame: 1, From: 1, To: 1, Scores: [2]float64{0, 2}},
		},
	}
	_, err := ViterbiTrackLinking(p, Options{MaxMigScore: 100, Sink: sink})
	require.NoError(t, err)

	require.NotEmpty(t, sink.records)
	kinds := make(map[string]int)
	for _, r := range sink.records {
		kinds[r.Kind]++
	}
	require.Equal(t, 1, kinds["add"], "one preexist insertion")
	require.Equal(t, 1, kinds["migration"])
}

func TestEngineHistory(t *testing.T) {
	p := &Problem{
		Detections: []int{1},
		Counts:     []CountScores{{Frame: 1, Detection: 1, Scores: []float64{0, 3}}},
	}
	e, err := NewEngine(p, Options{MaxMigScore: 100})
	require.NoError(t, err)
	_, err = e.Track()
	require.NoError(t, err)

	history := e.History()
	require.Len(t, history, 1)
	require.Equal(t, 1, history[0].Iteration)
	require.Equal(t, 3.0, history[0].PathScore)
	require.Equal(t, 1, history[0].NumCells)
}
