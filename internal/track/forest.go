package track

// Forest is the lineage forest: the collection of cell tracks built so
// far, each starting at a first CellNode. The forest also tracks the
// active cell, the tip of the track currently being extended while the
// arcs of a trellis path execute, and the iteration counter stamped
// onto new CellNodes.
type Forest struct {
	numFrames  int
	firstCells []*CellNode
	activeCell *CellNode
	iteration  int
	sink       EventSink
}

// NewForest creates an empty forest for a sequence of numFrames
// frames. Records emitted by executing events go to sink; a nil sink
// discards them.
func NewForest(numFrames int, sink EventSink) *Forest {
	if sink == nil {
		sink = NopSink{}
	}
	return &Forest{numFrames: numFrames, iteration: 1, sink: sink}
}

// NumFrames returns the number of frames in the sequence.
func (f *Forest) NumFrames() int { return f.numFrames }

// NumCells returns the number of tracks in the forest.
func (f *Forest) NumCells() int { return len(f.firstCells) }

// FirstCells returns the first CellNodes of all tracks. The returned
// slice is the forest's own; callers must not modify it.
func (f *Forest) FirstCells() []*CellNode { return f.firstCells }

// SetIteration sets the iteration stamped onto CellNodes created from
// now on.
func (f *Forest) SetIteration(iteration int) { f.iteration = iteration }

// ActiveCell returns the tip of the track currently being extended, or
// nil.
func (f *Forest) ActiveCell() *CellNode { return f.activeCell }

// HasActiveCell reports whether a track is currently being extended.
func (f *Forest) HasActiveCell() bool { return f.activeCell != nil }

// SetActiveCell sets or clears the active cell.
func (f *Forest) SetActiveCell(c *CellNode) { f.activeCell = c }

// CreateCellFirst starts a new track at the idle state s and makes its
// first CellNode the active cell.
func (f *Forest) CreateCellFirst(s *State) *CellNode {
	if s.IsDetection() {
		panic("track: tracks must start in an idle state")
	}
	c := newCellNode(s, f.iteration)
	f.firstCells = append(f.firstCells, c)
	f.activeCell = c
	return c
}

// CreateCellLink extends link's track with a new CellNode in ev's end
// state and makes the new node the active cell.
func (f *Forest) CreateCellLink(link *CellNode, ev Event) *CellNode {
	c := newCellNode(ev.EndState(), f.iteration)
	link.AddLink(ev, c)
	f.activeCell = c
	return c
}

// RemoveFirstCell removes a track's first CellNode from the forest.
// The node must be in the first-cell list and already unlinked.
func (f *Forest) RemoveFirstCell(c *CellNode) {
	for i, v := range f.firstCells {
		if v == c {
			f.firstCells = append(f.firstCells[:i], f.firstCells[i+1:]...)
			c.release()
			return
		}
	}
	panic("track: RemoveFirstCell on a cell that is not a first cell")
}

func (f *Forest) emit(r Record) { f.sink.Emit(r) }

// Matrices renders the forest into the three output matrices. The cell
// matrix holds, per frame and track, the 1-based detection index the
// track occupies, or 0 when the cell is absent. The division matrix
// holds the 1-based indices of the two daughter tracks of each
// dividing track, or zeros. The death matrix holds 1 for tracks that
// end in apoptosis.
func (f *Forest) Matrices() (cells [][]int, divisions [][2]int, deaths []int) {
	numCells := f.NumCells()
	cells = make([][]int, f.numFrames)
	for t := range cells {
		cells[t] = make([]int, numCells)
	}
	divisions = make([][2]int, numCells)
	deaths = make([]int, numCells)

	trackIndex := make(map[*CellNode]int, numCells)
	for i, first := range f.firstCells {
		trackIndex[first] = i
	}

	for i, first := range f.firstCells {
		last := f.walkTrack(first, func(c *CellNode) {
			cells[c.state.T()-1][i] = c.state.Index() + 1
		})

		if last.HasChildren() {
			divisions[i][0] = trackIndex[last.Child(0).Prev()] + 1
			divisions[i][1] = trackIndex[last.Child(1).Prev()] + 1
		}
		if _, ok := last.NextEvent().(*Apoptosis); ok {
			deaths[i] = 1
		}
	}
	return cells, divisions, deaths
}

// IterationMatrix reports, per frame and track, the iteration in which
// the track's CellNode for that frame was created, or -1 when the cell
// is absent.
func (f *Forest) IterationMatrix() [][]int {
	m := make([][]int, f.numFrames)
	for t := range m {
		m[t] = make([]int, f.NumCells())
		for c := range m[t] {
			m[t][c] = -1
		}
	}
	for i, first := range f.firstCells {
		f.walkTrack(first, func(c *CellNode) {
			m[c.state.T()-1][i] = c.iteration
		})
	}
	return m
}

// walkTrack visits every Detection CellNode of a track, skipping the
// idle-state nodes at both ends, and returns the last Detection node.
func (f *Forest) walkTrack(first *CellNode, visit func(*CellNode)) *CellNode {
	cell := first.Next() // the first CellNode is an idle state
	for {
		visit(cell)
		next := cell.Next()
		if cell.HasChildren() || (!next.HasNext() && !next.HasChildren()) {
			return cell
		}
		cell = next
	}
}
