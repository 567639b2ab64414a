package track

import "fmt"

// Variable is a nonnegative integer counter with a staircase score
// table. The score of value v is scores[v] for v below the table
// length; past the end of the table every further step repeats the
// table's last step, except that the residual plus score is clipped to
// at most zero and the residual minus score to at least zero, so
// occurrences beyond the
// table can never raise the objective. Detection counts and event
// occurrence counts are both Variables.
type Variable struct {
	value  int
	scores []float64
}

// NewVariable creates a Variable with the given starting value and
// score table. The table must have at least two entries.
func NewVariable(value int, scores []float64) *Variable {
	if len(scores) < 2 {
		panic(fmt.Sprintf("track: variable needs at least 2 scores, got %d", len(scores)))
	}
	return &Variable{value: value, scores: append([]float64(nil), scores...)}
}

// newZeroVariable creates the dummy Variable used by events that carry
// no score of their own.
func newZeroVariable() *Variable {
	return &Variable{value: 0, scores: []float64{0, 0}}
}

// Value returns the current value.
func (v *Variable) Value() int { return v.value }

// PlusScore returns the score change of increasing the value by one.
// Past the end of the score table the residual is clipped to at most
// zero so duplicated events cannot keep earning score.
func (v *Variable) PlusScore() float64 {
	n := len(v.scores)
	if v.value < n-1 {
		return v.scores[v.value+1] - v.scores[v.value]
	}
	return min(v.scores[n-1]-v.scores[n-2], 0)
}

// MinusScore returns the score change of decreasing the value by one.
// The value must be positive. Past the end of the score table the
// residual is clipped to at least zero so removing a duplicated event
// can never cost score.
func (v *Variable) MinusScore() float64 {
	if v.value <= 0 {
		panic("track: MinusScore on a variable with value 0")
	}
	n := len(v.scores)
	if v.value < n {
		return v.scores[v.value-1] - v.scores[v.value]
	}
	return max(v.scores[n-2]-v.scores[n-1], 0)
}

// Plus increases the value by one. The exact value is tracked even
// beyond the score table, because it may have to come back down.
func (v *Variable) Plus() { v.value++ }

// Minus decreases the value by one. The value must be positive.
func (v *Variable) Minus() {
	if v.value <= 0 {
		panic("track: Minus on a variable with value 0")
	}
	v.value--
}
