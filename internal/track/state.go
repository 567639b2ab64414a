package track

import "fmt"

// StateKind distinguishes the two kinds of trellis states.
type StateKind int

const (
	// KindDetection marks a state backed by a detected candidate cell
	// region in one frame.
	KindDetection StateKind = iota
	// KindIdle marks a state representing the absence of a cell:
	// pre-birth, off-screen, or dead.
	KindIdle
)

// State is a node in the trellis: either a Detection or an idle state,
// tagged by Kind. It keeps its forward and backward arcs and the
// CellNodes currently residing in it. Detections additionally carry a
// count Variable and lookup maps for their outgoing migrations and the
// mitoses they can parent.
type State struct {
	kind  StateKind
	t     int // layer index: 0 = pre-sequence, numFrames+1 = post-sequence
	index int // index of the state within its layer

	forward  []Event // arcs starting here
	backward []Event // arcs ending here

	cells []*CellNode

	// Detection-only fields, nil for idle states.
	count      *Variable
	migrations map[*State]*Migration
	mitoses    map[*State][]*Mitosis
}

// NewDetection creates a Detection state in frame t with the given
// in-layer index. Its count Variable must be set with SetCount before
// any cell is linked through it.
func NewDetection(t, index int) *State {
	return &State{
		kind:       KindDetection,
		t:          t,
		index:      index,
		migrations: make(map[*State]*Migration),
		mitoses:    make(map[*State][]*Mitosis),
	}
}

// NewIdleState creates an idle state in frame t with the given
// in-layer index. The index space is shared with the frame's
// Detections.
func NewIdleState(t, index int) *State {
	return &State{kind: KindIdle, t: t, index: index}
}

// Kind returns the state kind.
func (s *State) Kind() StateKind { return s.kind }

// IsDetection reports whether the state is a Detection.
func (s *State) IsDetection() bool { return s.kind == KindDetection }

// T returns the layer (frame) index of the state.
func (s *State) T() int { return s.t }

// Index returns the state's index within its layer.
func (s *State) Index() int { return s.index }

// SetCount attaches the cell-count Variable of a Detection.
func (s *State) SetCount(count *Variable) {
	if s.kind != KindDetection {
		panic("track: SetCount on an idle state")
	}
	s.count = count
}

// Count returns the Detection's count Variable, or nil for idle
// states.
func (s *State) Count() *Variable { return s.count }

// PlusScore returns the score of routing one more cell through the
// state: the count plus-score for a Detection, zero for an idle state.
func (s *State) PlusScore() float64 {
	if s.count != nil {
		return s.count.PlusScore()
	}
	return 0
}

// MinusScore returns the score of routing one cell less through the
// state.
func (s *State) MinusScore() float64 {
	if s.count != nil {
		return s.count.MinusScore()
	}
	return 0
}

func (s *State) plus() {
	if s.count != nil {
		s.count.Plus()
	}
}

func (s *State) minus() {
	if s.count != nil {
		s.count.Minus()
	}
}

// NumCells returns the number of CellNodes currently residing in the
// state.
func (s *State) NumCells() int { return len(s.cells) }

// Cells returns the CellNodes currently residing in the state. The
// returned slice is the state's own; callers must not modify it.
func (s *State) Cells() []*CellNode { return s.cells }

func (s *State) addCell(c *CellNode) {
	if c.state != s {
		panic("track: cell added to a state it does not reference")
	}
	s.cells = append(s.cells, c)
}

func (s *State) removeCell(c *CellNode) {
	for i, v := range s.cells {
		if v == c {
			s.cells = append(s.cells[:i], s.cells[i+1:]...)
			return
		}
	}
	panic("track: cell removed from a state that does not hold it")
}

// NumForward returns the number of arcs starting in the state.
func (s *State) NumForward() int { return len(s.forward) }

// Forward returns outgoing arc i.
func (s *State) Forward(i int) Event { return s.forward[i] }

// NumBackward returns the number of arcs ending in the state.
func (s *State) NumBackward() int { return len(s.backward) }

// Backward returns incoming arc i.
func (s *State) Backward(i int) Event { return s.backward[i] }

func (s *State) addForward(ev Event) {
	if ev.StartState() != s {
		panic("track: forward arc does not start in this state")
	}
	s.forward = append(s.forward, ev)
}

func (s *State) addBackward(ev Event) {
	if ev.EndState() != s {
		panic("track: backward arc does not end in this state")
	}
	s.backward = append(s.backward, ev)
}

func (s *State) removeForward(ev Event) {
	for i, v := range s.forward {
		if v == ev {
			s.forward = append(s.forward[:i], s.forward[i+1:]...)
			return
		}
	}
}

func (s *State) removeBackward(ev Event) {
	for i, v := range s.backward {
		if v == ev {
			s.backward = append(s.backward[:i], s.backward[i+1:]...)
			return
		}
	}
}

// addMigration registers an outgoing Migration, keyed by its end
// Detection, so mitosis construction and execution can find it.
func (s *State) addMigration(m *Migration) {
	s.migrations[m.EndState()] = m
}

// MigrationTo returns the Migration from this Detection to end, or nil
// if none was declared.
func (s *State) MigrationTo(end *State) *Migration {
	return s.migrations[end]
}

// addMitosis registers a Mitosis parented by this Detection, keyed by
// the daughter Detection whose migration the mitosis depends on.
func (s *State) addMitosis(m *Mitosis) {
	s.mitoses[m.OtherChild()] = append(s.mitoses[m.OtherChild()], m)
}

// mitosesVia returns the mitoses of this Detection that become
// possible when a migration into otherChild exists.
func (s *State) mitosesVia(otherChild *State) []*Mitosis {
	return s.mitoses[otherChild]
}

func (s *State) String() string {
	kind := "idle"
	if s.kind == KindDetection {
		kind = "detection"
	}
	return fmt.Sprintf("%s(t=%d,n=%d)", kind, s.t, s.index)
}
