package track

// Preexist is the event of a cell already being present in the first
// frame. It links the pre-sequence idle state to a first-frame
// Detection and carries no score of its own; the score comes from the
// Detection's count.
type Preexist struct {
	eventBase
}

// NewPreexist creates a Preexist arc from the pre-sequence idle state
// to a Detection in the first frame.
func NewPreexist(start, end *State) *Preexist {
	ev := &Preexist{eventBase: newEventBase(start, end)}
	attach(ev)
	return ev
}

func (ev *Preexist) Score() float64 { return ev.end.PlusScore() }

func (ev *Preexist) Execute(f *Forest, endCells *[]*CellNode, emit bool) {
	if emit {
		f.emit(record("add", ev.start, ev.end, ev.Score()))
	}
	f.CreateCellFirst(ev.start)
	*endCells = append(*endCells, f.CreateCellLink(f.ActiveCell(), ev))
}

func (ev *Preexist) ExecuteAt(*Forest, *[]*CellNode, *CellNode) {
	// There is never a reason to swap events before the first frame.
	panic("track: Preexist cannot target an existing cell")
}

// Appearance is the event of a cell entering the field of view in an
// arbitrary frame: washed in, or surfacing by some other mechanism. It
// links the idle state of the previous frame to a Detection.
type Appearance struct {
	eventBase
}

// NewAppearance creates an Appearance arc with the given occurrence
// scores.
func NewAppearance(start, end *State, value int, scores []float64) *Appearance {
	ev := &Appearance{eventBase: newScoredEventBase(start, end, value, scores)}
	attach(ev)
	return ev
}

func (ev *Appearance) Score() float64 { return ev.end.PlusScore() + ev.PlusScore() }

func (ev *Appearance) Execute(f *Forest, endCells *[]*CellNode, emit bool) {
	if emit {
		f.emit(record("appearance", ev.start, ev.end, ev.Score()))
	}
	if !f.HasActiveCell() {
		f.CreateCellFirst(ev.start)
	}
	active := f.ActiveCell()
	if active.State() != ev.start {
		panic("track: appearance does not start in the active cell's state")
	}
	*endCells = append(*endCells, f.CreateCellLink(active, ev))
}

func (ev *Appearance) ExecuteAt(f *Forest, endCells *[]*CellNode, cell *CellNode) {
	if !f.HasActiveCell() {
		f.CreateCellFirst(ev.start)
	}
	active := f.ActiveCell()
	if active.State() != ev.start {
		panic("track: appearance does not start in the active cell's state")
	}
	active.AddLink(ev, cell)
	*endCells = append(*endCells, cell)
}

// Apoptosis is the event of a cell dying in a Detection. It links the
// Detection to the dead idle state of the same frame's successor
// layer and terminates the track.
type Apoptosis struct {
	eventBase
}

// NewApoptosis creates an Apoptosis arc with the given occurrence
// scores.
func NewApoptosis(start, end *State, value int, scores []float64) *Apoptosis {
	ev := &Apoptosis{eventBase: newScoredEventBase(start, end, value, scores)}
	attach(ev)
	return ev
}

func (ev *Apoptosis) Score() float64 { return ev.PlusScore() }

func (ev *Apoptosis) Execute(f *Forest, endCells *[]*CellNode, emit bool) {
	if emit {
		f.emit(record("apoptosis", ev.start, nil, ev.Score()))
	}
	*endCells = append(*endCells, f.CreateCellLink(f.ActiveCell(), ev))
	f.SetActiveCell(nil) // ends the track
}

func (ev *Apoptosis) ExecuteAt(f *Forest, endCells *[]*CellNode, cell *CellNode) {
	f.ActiveCell().AddLink(ev, cell)
	f.SetActiveCell(nil)
	*endCells = append(*endCells, cell)
}

// Disappearance is the event of a cell leaving the field of view:
// washed out in a media change, crawling out of frame, or vanishing by
// some other mechanism.
type Disappearance struct {
	eventBase
}

// NewDisappearance creates a Disappearance arc with the given
// occurrence scores.
func NewDisappearance(start, end *State, value int, scores []float64) *Disappearance {
	ev := &Disappearance{eventBase: newScoredEventBase(start, end, value, scores)}
	attach(ev)
	return ev
}

func (ev *Disappearance) Score() float64 { return ev.PlusScore() }

func (ev *Disappearance) Execute(f *Forest, endCells *[]*CellNode, emit bool) {
	if emit {
		f.emit(record("disappearance", ev.start, nil, ev.Score()))
	}
	*endCells = append(*endCells, f.CreateCellLink(f.ActiveCell(), ev))
	f.SetActiveCell(nil)
}

func (ev *Disappearance) ExecuteAt(f *Forest, endCells *[]*CellNode, cell *CellNode) {
	f.ActiveCell().AddLink(ev, cell)
	f.SetActiveCell(nil)
	*endCells = append(*endCells, cell)
}

// Persist is the event of a cell surviving to the end of the sequence.
// It links a last-frame Detection to the post-sequence idle state and
// always scores zero.
type Persist struct {
	eventBase
}

// NewPersist creates a Persist arc from a last-frame Detection to the
// post-sequence idle state.
func NewPersist(start, end *State) *Persist {
	ev := &Persist{eventBase: newEventBase(start, end)}
	attach(ev)
	return ev
}

func (ev *Persist) Score() float64 { return 0 }

func (ev *Persist) Execute(f *Forest, endCells *[]*CellNode, emit bool) {
	f.CreateCellLink(f.ActiveCell(), ev)
	f.SetActiveCell(nil)
}

func (ev *Persist) ExecuteAt(*Forest, *[]*CellNode, *CellNode) {
	// Linking to an existing CellNode would target the shared
	// post-sequence idle state.
	panic("track: Persist cannot target an existing cell")
}

// FreeArc links two idle states with score zero. It represents no cell
// event and must never link CellNodes on its own; its only execution
// effect is cleaning up a track that a swap reduced to a single first
// node.
type FreeArc struct {
	eventBase
}

// NewFreeArc creates a FreeArc between two idle states.
func NewFreeArc(start, end *State) *FreeArc {
	ev := &FreeArc{eventBase: newEventBase(start, end)}
	attach(ev)
	return ev
}

func (ev *FreeArc) Score() float64 { return 0 }

// check always fails: CellNodes must never be linked through a
// FreeArc.
func (ev *FreeArc) check(from, to *State) bool { return false }

func (ev *FreeArc) Execute(f *Forest, endCells *[]*CellNode, emit bool) {
	// Clean up after a swap that left the active track with nothing
	// but its first node.
	if f.HasActiveCell() {
		f.RemoveFirstCell(f.ActiveCell())
		f.SetActiveCell(nil)
	}
}

func (ev *FreeArc) ExecuteAt(f *Forest, endCells *[]*CellNode, cell *CellNode) {
	if cell.HasNext() || cell.HasPrev() || cell.HasChildren() || cell.HasParent() {
		panic("track: FreeArc targeted a cell that is still linked")
	}
	// The cell cannot be released yet: swap arcs may still reference
	// it. AddCell disposes it once its swaps are gone.
	*endCells = append(*endCells, cell)
}

// FreeArcNoSwap is a FreeArc that additionally refuses to take part in
// swaps. It is used along the idle chains where splicing a track in or
// out can never be meaningful.
type FreeArcNoSwap struct {
	FreeArc
}

// NewFreeArcNoSwap creates a FreeArcNoSwap between two idle states.
func NewFreeArcNoSwap(start, end *State) *FreeArcNoSwap {
	ev := &FreeArcNoSwap{FreeArc: FreeArc{eventBase: newEventBase(start, end)}}
	attach(ev)
	return ev
}

func (ev *FreeArcNoSwap) Execute(f *Forest, endCells *[]*CellNode, emit bool) {
	if f.HasActiveCell() {
		panic("track: FreeArcNoSwap traversed with an active cell")
	}
}

func (ev *FreeArcNoSwap) ExecuteAt(*Forest, *[]*CellNode, *CellNode) {
	panic("track: FreeArcNoSwap cannot target an existing cell")
}

func (ev *FreeArcNoSwap) okSwap12(Event) bool { return false }

func (ev *FreeArcNoSwap) okSwap32(Event) bool { return false }
