package track

// Migration links two Detections in consecutive frames and represents
// a cell moving between them. Its plus score is capped and its minus
// score floored at the engine's migration score limit, so a single
// very confident migration cannot dominate the objective. Counting a
// migration up can also activate mitoses that require it.
type Migration struct {
	eventBase
	maxScore float64
}

// NewMigration creates a Migration arc between two Detections with the
// given occurrence scores and score limit, and registers it with its
// start Detection so mitoses can find it.
func NewMigration(start, end *State, value int, scores []float64, maxScore float64) *Migration {
	ev := &Migration{eventBase: newScoredEventBase(start, end, value, scores), maxScore: maxScore}
	attach(ev)
	start.addMigration(ev)
	return ev
}

// PlusScore caps the underlying staircase score at the migration score
// limit.
func (ev *Migration) PlusScore() float64 {
	return min(ev.Variable.PlusScore(), ev.maxScore)
}

// MinusScore floors the underlying staircase score at the negated
// migration score limit.
func (ev *Migration) MinusScore() float64 {
	return max(ev.Variable.MinusScore(), -ev.maxScore)
}

func (ev *Migration) Score() float64 { return ev.end.PlusScore() + ev.PlusScore() }

func (ev *Migration) Execute(f *Forest, endCells *[]*CellNode, emit bool) {
	if emit {
		f.emit(record("migration", ev.start, ev.end, ev.Score()))
	}
	*endCells = append(*endCells, f.CreateCellLink(f.ActiveCell(), ev))
}

func (ev *Migration) ExecuteAt(f *Forest, endCells *[]*CellNode, cell *CellNode) {
	f.ActiveCell().AddLink(ev, cell)
	*endCells = append(*endCells, cell)
}

// Increment counts the migration up without activating dependent
// mitoses. Used when a division absorbs the migration, where the
// mitoses are already in play.
func (ev *Migration) Increment() { ev.Variable.Plus() }

// Plus counts the migration up and inserts into the trellis any
// mitosis that requires this migration and is not in the trellis yet.
// Mitoses are not removed again on Minus: a mitosis whose supporting
// migration has gone scores minus infinity and the search ignores it.
func (ev *Migration) Plus() {
	ev.Variable.Plus()
	for _, mit := range ev.start.mitosesVia(ev.end) {
		if !mit.InTrellis() {
			mit.AddToTrellis()
		}
	}
}
