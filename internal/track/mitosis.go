package track

import "math"

// Mitosis is the event of one cell dividing into two. Mitoses come in
// mirror pairs, one per daughter Detection, representing the same
// division: each mirror links an idle state in the parent's frame to
// its own daughter Detection, and its execution replaces the existing
// migration into the other daughter. The CellNodes of a division are
// joined through parent/children fields rather than next/prev; the
// Mitosis is the inbound event of both daughters but never the
// outbound event of the parent.
//
// A Mitosis starts out dormant: constructed but not part of the
// trellis. It is inserted when the migration it depends on is first
// counted up. A mirror pair is created even when both daughters are
// the same Detection.
type Mitosis struct {
	eventBase

	// parent is the dividing cell's Detection; start is an idle state.
	parent *State

	// otherChild is the daughter Detection already occupied by a cell.
	// The migration into it is removed and replaced by the mirror
	// Mitosis on execution.
	otherChild *State

	mirror    *Mitosis
	inTrellis bool
}

// NewMitosis creates a dormant Mitosis arc from an idle state in the
// parent's frame to the daughter Detection end, for the division of
// parent into end and otherChild. Use LinkMirror to pair it with its
// mirror.
func NewMitosis(start, end, parent, otherChild *State, value int, scores []float64) *Mitosis {
	ev := &Mitosis{
		eventBase:  newScoredEventBase(start, end, value, scores),
		parent:     parent,
		otherChild: otherChild,
	}
	parent.addMitosis(ev)
	return ev
}

// LinkMirror pairs two mirror Mitoses of the same division. Both must
// still be unpaired.
func (ev *Mitosis) LinkMirror(mirror *Mitosis) {
	if ev.mirror != nil || mirror.mirror != nil {
		panic("track: mitosis mirror already linked")
	}
	ev.mirror = mirror
	mirror.mirror = ev
}

// Mirror returns the sibling Mitosis linking the other daughter.
func (ev *Mitosis) Mirror() *Mitosis { return ev.mirror }

// Parent returns the dividing cell's Detection.
func (ev *Mitosis) Parent() *State { return ev.parent }

// OtherChild returns the daughter Detection whose migration the
// mitosis replaces.
func (ev *Mitosis) OtherChild() *State { return ev.otherChild }

// InTrellis reports whether the Mitosis is currently an arc in the
// trellis.
func (ev *Mitosis) InTrellis() bool { return ev.inTrellis }

// AddToTrellis inserts the Mitosis into the arc lists of its states.
func (ev *Mitosis) AddToTrellis() {
	attach(ev)
	ev.inTrellis = true
}

// RemoveFromTrellis removes the Mitosis from the arc lists of its
// states.
func (ev *Mitosis) RemoveFromTrellis() {
	detach(ev)
	ev.inTrellis = false
}

// checkMitosis reports whether the division of from into to1 and to2
// matches this Mitosis.
func (ev *Mitosis) checkMitosis(from, to1, to2 *State) bool {
	if from != ev.parent {
		return false
	}
	if to1 == ev.end {
		return to2 == ev.otherChild
	}
	if to1 == ev.otherChild {
		return to2 == ev.end
	}
	return false
}

// acceptingCell returns a CellNode of the parent Detection whose
// outgoing migration into the other daughter can be replaced by the
// division, or nil if no such cell exists.
func (ev *Mitosis) acceptingCell() *CellNode {
	for _, cell := range ev.parent.Cells() {
		if cell.HasNext() && cell.Next().State() == ev.otherChild {
			return cell
		}
	}
	return nil
}

// Score returns the score of adding the division: the division's own
// plus score, plus the plus score of the required migration, plus the
// count plus score of the daughter Detection. If the migration the
// division depends on has left the forest, the score is minus
// infinity and the search ignores the arc.
func (ev *Mitosis) Score() float64 {
	if ev.acceptingCell() == nil {
		return math.Inf(-1)
	}
	migration := ev.parent.MigrationTo(ev.end)
	return ev.PlusScore() + migration.PlusScore() + ev.end.PlusScore()
}

// MinusScore accounts for the migration that replaces the division
// when it is removed.
func (ev *Mitosis) MinusScore() float64 {
	migration := ev.parent.MigrationTo(ev.end)
	return ev.Variable.MinusScore() - migration.PlusScore()
}

// Execute performs the division. The accepting cell's migration link
// into the other daughter is severed; two fresh chains rooted at
// idle-state CellNodes are linked to the two daughter Detections
// through the mirror pair; and both chains are attached to the
// accepting cell as children. Both daughter links are realized
// migrations, so both migration counters are re-incremented.
func (ev *Mitosis) Execute(f *Forest, endCells *[]*CellNode, emit bool) {
	if emit {
		f.emit(Record{
			Frame: ev.start.T(),
			Kind:  "mitosis",
			From:  ev.parent.Index() + 1,
			To:    ev.end.Index() + 1,
			Score: ev.Score(),
		})
	}
	ev.execute(f, endCells, nil)
}

func (ev *Mitosis) ExecuteAt(f *Forest, endCells *[]*CellNode, cell *CellNode) {
	ev.execute(f, endCells, cell)
}

// execute implements both execution forms: with a nil target the
// continuing daughter gets a fresh CellNode, otherwise it is linked to
// the existing target cell.
func (ev *Mitosis) execute(f *Forest, endCells *[]*CellNode, target *CellNode) {
	if ev.parent.NumCells() == 0 {
		panic("track: mitosis executed with no cell in the parent detection")
	}
	cell := ev.acceptingCell()
	if cell == nil {
		panic("track: mitosis executed without an accepting cell")
	}

	oldMig := cell.NextEvent().(*Migration)
	newMig := ev.parent.MigrationTo(ev.end)

	// The second child continues the active track, or starts a fresh
	// one if the path reached the division through non-cell arcs.
	if !f.HasActiveCell() {
		f.CreateCellFirst(ev.start)
	}
	child2 := f.ActiveCell()
	if child2.State() != ev.start {
		panic("track: mitosis does not start in the active cell's state")
	}

	// The first child takes over the severed continuation of the
	// accepting cell, behind a fresh idle-state root.
	nextCell := cell.Next()
	cell.RemoveLink(f)
	child1 := f.CreateCellFirst(ev.start)
	child1.AddLink(ev.mirror, nextCell)

	f.SetActiveCell(child2)
	if target == nil {
		f.CreateCellLink(child2, ev)
	} else {
		child2.AddLink(ev, target)
	}

	// Attach the CellNodes after the idle roots as the two children.
	cell.AddChildren(ev, child1.Next(), child2.Next())

	// Both daughter links are realized migrations.
	oldMig.Increment()
	newMig.Increment()

	*endCells = append(*endCells, child1.Next(), child2.Next())
}

// A Mitosis never takes part in a swap as an endpoint: unwinding a
// division whose support was swapped away is not tractable here.
func (ev *Mitosis) okSwap12(Event) bool { return false }

func (ev *Mitosis) okSwap32(Event) bool { return false }
