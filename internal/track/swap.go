package track

// Swap is a synthetic arc that splices the active track into the
// middle of an existing track. For a target CellNode with predecessor
// P and inbound event ev2, the swap removes the P-to-target link,
// links the active cell to the target through a replacement first
// event ev1, and extends P through a replacement third event ev3. The
// swap arc itself runs from ev1's start state to ev3's end state, so
// the Viterbi search can price the splice like any other arc.
//
// Swaps are owned by their target CellNode and regenerated locally
// after any modification near a new CellNode; they never survive a
// change to their neighborhood.
type Swap struct {
	eventBase

	cell *CellNode // second CellNode of the link being broken
	ev1  Event     // new inbound event for cell
	ev3  Event     // new outbound event for the severed predecessor
}

// NewSwap creates a swap arc targeting cell, registering it both as a
// trellis arc and as a dependent of cell.
func NewSwap(cell *CellNode, ev1, ev3 Event) *Swap {
	s := &Swap{
		eventBase: newEventBase(ev1.StartState(), ev3.EndState()),
		cell:      cell,
		ev1:       ev1,
		ev3:       ev3,
	}
	attach(s)
	cell.addDependentSwap(s)
	return s
}

// Score prices the splice: the new inbound event (without a cell-count
// change, the target cell already occupies its state), minus the event
// being removed, plus the full score of the extension event.
func (s *Swap) Score() float64 {
	score := s.ev1.PlusScore()
	score += s.cell.PrevEvent().MinusScore()
	score += s.ev3.Score()
	return score
}

// Execute performs the splice. If the target sits in a division, the
// sibling daughter's CellNode is reported too, so its swaps are
// regenerated after the division is unwound.
func (s *Swap) Execute(f *Forest, endCells *[]*CellNode, emit bool) {
	if emit {
		f.emit(Record{
			Frame: s.ev1.StartState().T(),
			Kind:  "swap",
			From:  stateIndex1(s.ev1.StartState()),
			To:    stateIndex1(s.ev3.EndState()),
			Score: s.Score(),
		})
	}

	prevCell := s.cell.Prev()

	if s.cell.HasParent() {
		parent := s.cell.Parent()
		if parent.Child(0) == s.cell {
			*endCells = append(*endCells, parent.Child(1))
		} else {
			*endCells = append(*endCells, parent.Child(0))
		}
	}

	// Remove the old event, then add the two new ones.
	prevCell.RemoveLink(f)
	s.ev1.ExecuteAt(f, endCells, s.cell)
	f.SetActiveCell(prevCell)
	s.ev3.Execute(f, endCells, false)
}

func (s *Swap) ExecuteAt(*Forest, *[]*CellNode, *CellNode) {
	// Only swaps call ExecuteAt on other events, and swaps never
	// operate on swaps.
	panic("track: Swap cannot target an existing cell")
}

// Swaps never take part in other swaps.
func (s *Swap) okSwap12(Event) bool { return false }

func (s *Swap) okSwap32(Event) bool { return false }

func stateIndex1(s *State) int {
	if s.IsDetection() {
		return s.Index() + 1
	}
	return 0
}
