package track

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arden-bio/celltrack/internal/arrayio"
	"github.com/arden-bio/celltrack/internal/monitoring"
)

// Options configures the track linker.
type Options struct {
	// SingleIdleState collapses the born-later and dead idle states of
	// every frame into one. The split mode keeps them separate and
	// only allows swaps on the arcs from born-later to dead states.
	SingleIdleState bool

	// MaxMigScore caps how much score a single migration can
	// contribute in either direction.
	MaxMigScore float64

	// IterationDir, when non-empty, receives per-iteration binary
	// snapshots of the cell, division, death and iteration matrices.
	IterationDir string

	// Sink receives a record for every executed event except Persist
	// and the free idle-state arcs. Nil discards them.
	Sink EventSink
}

// Result is the output of the track linker. All detection and track
// indices are 1-based; zero means absent.
type Result struct {
	// CellMatrix[t][c] is the detection index occupied by track c in
	// frame t, or 0 when the cell is not present.
	CellMatrix [][]int
	// DivisionMatrix[c] holds the indices of the two daughter tracks
	// of track c, or zeros if it does not divide.
	DivisionMatrix [][2]int
	// DeathMatrix[c] is 1 when track c ends in apoptosis.
	DeathMatrix []int
	// Iterations is the number of AddCell iterations that modified the
	// forest.
	Iterations int
}

// Engine owns the trellis and the lineage forest and inserts one cell
// track per iteration: find the highest-scoring path through the
// trellis, execute its events against the forest, then regenerate the
// swap arcs around every CellNode the path touched.
type Engine struct {
	trellis *Trellis
	forest  *Forest

	startState *State
	endState   *State

	// detections[t][d] is detection d of frame t (both 0-based here).
	detections [][]*State

	// Single-idle mode uses idleStates; split mode uses bornLater and
	// dead.
	idleStates []*State
	bornLater  []*State
	dead       []*State

	history []IterationStat

	opts Options
}

// IterationStat summarizes one AddCell iteration that modified the
// forest.
type IterationStat struct {
	Iteration int
	PathScore float64
	NumCells  int
}

// NewEngine builds the trellis for a problem: states for every
// detection and the idle chains, then one Event arc per scored
// candidate. Mitoses are created dormant and enter the trellis when
// their supporting migration is first realized.
func NewEngine(p *Problem, opts Options) (*Engine, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	numT := p.NumFrames()

	e := &Engine{
		trellis: NewTrellis(numT + 2),
		forest:  NewForest(numT, opts.Sink),
		opts:    opts,
	}

	e.startState = NewIdleState(0, 0)
	e.endState = NewIdleState(numT+1, 0)

	for t := 0; t < numT; t++ {
		layer := make([]*State, p.Detections[t])
		for d := range layer {
			layer[d] = NewDetection(t+1, d)
		}
		e.detections = append(e.detections, layer)
	}
	for _, c := range p.Counts {
		det := e.detections[c.Frame-1][c.Detection-1]
		det.SetCount(NewVariable(0, c.Scores))
	}

	if opts.SingleIdleState {
		for t := 0; t < numT; t++ {
			e.idleStates = append(e.idleStates, NewIdleState(t+1, p.Detections[t]))
		}
	} else {
		for t := 0; t < numT; t++ {
			e.bornLater = append(e.bornLater, NewIdleState(t+1, p.Detections[t]))
		}
		for t := 0; t < numT; t++ {
			e.dead = append(e.dead, NewIdleState(t+1, p.Detections[t]+1))
		}
	}

	e.trellis.AddState(0, e.startState)
	for t := 0; t < numT; t++ {
		for _, det := range e.detections[t] {
			e.trellis.AddState(t+1, det)
		}
		if opts.SingleIdleState {
			e.trellis.AddState(t+1, e.idleStates[t])
		} else {
			e.trellis.AddState(t+1, e.bornLater[t])
			e.trellis.AddState(t+1, e.dead[t])
		}
	}
	e.trellis.AddState(numT+1, e.endState)

	// Arcs, in a fixed order so equal-scoring paths resolve the same
	// way on every run.
	for _, det := range e.detections[0] {
		NewPreexist(e.startState, det)
	}
	for _, det := range e.detections[numT-1] {
		NewPersist(det, e.endState)
	}
	for _, a := range p.Apoptoses {
		NewApoptosis(e.detections[a.Frame-1][a.Detection-1], e.deadState(a.Frame), 0, a.Scores[:])
	}
	for _, m := range p.Mitoses {
		parent := e.detections[m.Frame-1][m.Parent-1]
		child1 := e.detections[m.Frame][m.Child1-1]
		child2 := e.detections[m.Frame][m.Child2-1]
		from := e.bornLaterState(m.Frame)
		// A mirror pair, one per daughter detection; the arc of each
		// mirror leads to the daughter not yet occupied by a cell.
		mit := NewMitosis(from, child1, parent, child2, 0, m.Scores[:])
		mirror := NewMitosis(from, child2, parent, child1, 0, m.Scores[:])
		mit.LinkMirror(mirror)
	}
	for _, m := range p.Migrations {
		NewMigration(e.detections[m.Frame-1][m.From-1], e.detections[m.Frame][m.To-1],
			0, m.Scores[:], opts.MaxMigScore)
	}
	for _, a := range p.Appearances {
		NewAppearance(e.bornLaterState(a.Frame-1), e.detections[a.Frame-1][a.Detection-1], 0, a.Scores[:])
	}
	for _, a := range p.Disappearances {
		NewDisappearance(e.detections[a.Frame-1][a.Detection-1], e.deadState(a.Frame), 0, a.Scores[:])
	}

	// The idle chains carry paths that represent no cell at all, so a
	// zero-score start-to-end path always exists.
	if opts.SingleIdleState {
		NewFreeArcNoSwap(e.startState, e.idleStates[0])
		for t := 0; t < numT-1; t++ {
			NewFreeArc(e.idleStates[t], e.idleStates[t+1])
		}
		NewFreeArcNoSwap(e.idleStates[numT-1], e.endState)
	} else {
		NewFreeArcNoSwap(e.startState, e.bornLater[0])
		NewFreeArcNoSwap(e.startState, e.dead[0])
		for t := 0; t < numT-1; t++ {
			NewFreeArcNoSwap(e.bornLater[t], e.bornLater[t+1])
			NewFreeArcNoSwap(e.dead[t], e.dead[t+1])
			// The only swappable idle arc: it lets swaps terminate or
			// start tracks mid-sequence.
			NewFreeArc(e.bornLater[t], e.dead[t+1])
		}
		NewFreeArcNoSwap(e.bornLater[numT-1], e.endState)
		NewFreeArcNoSwap(e.dead[numT-1], e.endState)
	}

	return e, nil
}

// deadState returns the idle state a cell enters after ending in the
// 1-based frame.
func (e *Engine) deadState(frame int) *State {
	if e.opts.SingleIdleState {
		return e.idleStates[frame]
	}
	return e.dead[frame]
}

// bornLaterState returns the idle state a cell occupies before
// entering the 1-based frame+1.
func (e *Engine) bornLaterState(frame int) *State {
	if e.opts.SingleIdleState {
		return e.idleStates[frame-1]
	}
	return e.bornLater[frame-1]
}

// Forest returns the engine's lineage forest.
func (e *Engine) Forest() *Forest { return e.forest }

// Trellis returns the engine's trellis.
func (e *Engine) Trellis() *Trellis { return e.trellis }

// AddCell inserts one cell track if doing so increases the total
// score. It returns false when the best path scores zero or less, i.e.
// when no further insertion can improve the solution.
func (e *Engine) AddCell() (bool, error) {
	path, score, err := e.trellis.HighestScoringPath()
	if err != nil {
		return false, err
	}
	if score <= 0 {
		return false, nil
	}

	var newCells []*CellNode
	for _, arc := range path {
		arc.Execute(e.forest, &newCells, true)
	}

	// Every touched CellNode gets its swap neighborhood rebuilt. A
	// node left fully unlinked was orphaned by a swap that started
	// with a FreeArc and can go now that its own swaps are gone.
	for _, c := range newCells {
		c.removeDependentSwaps()
		if !c.HasNext() && !c.HasPrev() && !c.HasChildren() && !c.HasParent() {
			c.release()
		} else {
			e.addSwaps(c)
		}
	}

	e.history = append(e.history, IterationStat{
		Iteration: len(e.history) + 1,
		PathScore: score,
		NumCells:  e.forest.NumCells(),
	})
	return true, nil
}

// History returns one entry per AddCell iteration that modified the
// forest.
func (e *Engine) History() []IterationStat { return e.history }

// addSwaps regenerates the swap arcs that splice through cell: one for
// every admissible pair of a replacement inbound event and a
// replacement outbound event around the link into cell.
func (e *Engine) addSwaps(cell *CellNode) {
	if !cell.HasPrev() {
		panic("track: addSwaps on a cell without a predecessor")
	}
	startState := cell.Prev().State()
	endState := cell.State()
	ev2 := cell.PrevEvent()

	for i := 0; i < endState.NumBackward(); i++ {
		ev1 := endState.Backward(i)
		if !ev1.okSwap12(ev2) || !ev2.okSwap21(ev1) {
			// Rejects pairs that would add and remove the same link,
			// and events that cannot anchor a swap. Both directions
			// must agree because either side may be the special case.
			continue
		}
		for j := 0; j < startState.NumForward(); j++ {
			ev3 := startState.Forward(j)
			if !ev2.okSwap23(ev3) || !ev3.okSwap32(ev2) {
				continue
			}
			NewSwap(cell, ev1, ev3)
		}
	}
}

// Track runs AddCell until no insertion improves the score and renders
// the forest into the output matrices. With a snapshot directory set,
// the matrices are also dumped after every iteration.
func (e *Engine) Track() (*Result, error) {
	iter := 1
	for {
		e.forest.SetIteration(iter)
		added, err := e.AddCell()
		if err != nil {
			return nil, err
		}
		if !added {
			break
		}
		monitoring.Logf("track: iteration %d, %d cells", iter, e.forest.NumCells())

		if e.opts.IterationDir != "" {
			if err := e.saveIteration(iter); err != nil {
				return nil, err
			}
		}
		iter++
	}

	cells, divisions, deaths := e.forest.Matrices()
	return &Result{
		CellMatrix:     cells,
		DivisionMatrix: divisions,
		DeathMatrix:    deaths,
		Iterations:     iter - 1,
	}, nil
}

// saveIteration dumps the current matrices in the snapshot format, one
// file set per iteration.
func (e *Engine) saveIteration(iter int) error {
	numT := e.forest.NumFrames()
	numCells := e.forest.NumCells()
	cells, divisions, deaths := e.forest.Matrices()
	iterations := e.forest.IterationMatrix()

	// Column-major: cell c is a column.
	cellArray := make([]float64, numT*numCells)
	iterArray := make([]float64, numT*numCells)
	for t := 0; t < numT; t++ {
		for c := 0; c < numCells; c++ {
			cellArray[arrayio.Index2D(t, c, numT)] = float64(cells[t][c])
			iterArray[arrayio.Index2D(t, c, numT)] = float64(iterations[t][c])
		}
	}
	divArray := make([]float64, numCells*2)
	deathArray := make([]float64, numCells)
	for c := 0; c < numCells; c++ {
		divArray[arrayio.Index2D(c, 0, numCells)] = float64(divisions[c][0])
		divArray[arrayio.Index2D(c, 1, numCells)] = float64(divisions[c][1])
		deathArray[c] = float64(deaths[c])
	}

	saves := []struct {
		name string
		dims []int
		data []float64
	}{
		{fmt.Sprintf("cellArray%05d.bin", iter), []int{numT, numCells}, cellArray},
		{fmt.Sprintf("divArray%05d.bin", iter), []int{numCells, 2}, divArray},
		{fmt.Sprintf("deathArray%05d.bin", iter), []int{numCells, 1}, deathArray},
		{fmt.Sprintf("iterationArray%05d.bin", iter), []int{numT, numCells}, iterArray},
	}
	if err := os.MkdirAll(e.opts.IterationDir, 0o755); err != nil {
		return fmt.Errorf("track: %w", err)
	}
	for _, s := range saves {
		if err := arrayio.SaveFloat64(filepath.Join(e.opts.IterationDir, s.name), s.dims, s.data); err != nil {
			return err
		}
	}
	return nil
}

// ViterbiTrackLinking builds the trellis for a problem and links cell
// tracks until no insertion improves the score.
func ViterbiTrackLinking(p *Problem, opts Options) (*Result, error) {
	e, err := NewEngine(p, opts)
	if err != nil {
		return nil, err
	}
	return e.Track()
}
