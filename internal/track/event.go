package track

// Event is a scored, directed arc between two trellis States. Events
// are the only arc type: they score a candidate path through the
// trellis and mutate the lineage forest when executed. Every Event is
// also a Variable counting how many times it occurs in the forest.
type Event interface {
	StartState() *State
	EndState() *State

	// Score returns the score of traversing the arc on a candidate
	// path, given the current forest.
	Score() float64

	// Execute adds one occurrence of the event to the forest, creating
	// a new CellNode in the end state. Every CellNode that gains a new
	// inbound link, except the post-sequence node a Persist creates, is
	// appended to endCells so the caller can regenerate its swaps.
	// emit controls whether the event reports
	// itself to the forest's sink; Swaps pass false for the events
	// they execute internally.
	Execute(f *Forest, endCells *[]*CellNode, emit bool)

	// ExecuteAt adds one occurrence of the event by linking the
	// forest's active cell to the existing CellNode cell in the end
	// state, instead of creating a new one. Used by Swaps.
	ExecuteAt(f *Forest, endCells *[]*CellNode, cell *CellNode)

	// Occurrence counter (Variable semantics).
	Value() int
	PlusScore() float64
	MinusScore() float64
	Plus()
	Minus()

	// check reports whether the event may link a CellNode in from to a
	// CellNode in to. Used to guard forest surgery.
	check(from, to *State) bool

	// Swap compatibility guards. A swap replaces the event ev2 ending
	// in a CellNode with a new first event ev1 and extends the severed
	// predecessor with a new third event ev3. The swap is built only
	// if ev1.okSwap12(ev2), ev2.okSwap21(ev1), ev2.okSwap23(ev3) and
	// ev3.okSwap32(ev2) all hold. The default guards reject pairs
	// sharing a start or an end state, which would add and remove the
	// same link; Mitosis, Swap and FreeArcNoSwap refuse to be swap
	// endpoints entirely.
	okSwap12(ev Event) bool
	okSwap21(ev Event) bool
	okSwap23(ev Event) bool
	okSwap32(ev Event) bool
}

// eventBase carries the endpoints and the occurrence Variable shared
// by all Event implementations, and the default swap guards.
type eventBase struct {
	*Variable
	start *State
	end   *State
}

func newEventBase(start, end *State) eventBase {
	return eventBase{Variable: newZeroVariable(), start: start, end: end}
}

func newScoredEventBase(start, end *State, value int, scores []float64) eventBase {
	return eventBase{Variable: NewVariable(value, scores), start: start, end: end}
}

func (e *eventBase) StartState() *State { return e.start }

func (e *eventBase) EndState() *State { return e.end }

func (e *eventBase) check(from, to *State) bool {
	return from == e.start && to == e.end
}

func (e *eventBase) okSwap12(ev Event) bool { return ev.StartState() != e.start }

func (e *eventBase) okSwap21(ev Event) bool { return ev.StartState() != e.start }

func (e *eventBase) okSwap23(ev Event) bool { return ev.EndState() != e.end }

func (e *eventBase) okSwap32(ev Event) bool { return ev.EndState() != e.end }

// attach inserts ev into the arc lists of its two states. Called by
// every event constructor except NewMitosis; a Mitosis is attached
// only when its supporting migration appears.
func attach(ev Event) {
	ev.StartState().addForward(ev)
	ev.EndState().addBackward(ev)
}

// detach removes ev from the arc lists of its two states.
func detach(ev Event) {
	ev.StartState().removeForward(ev)
	ev.EndState().removeBackward(ev)
}
