package track

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVariableStaircase(t *testing.T) {
	v := NewVariable(0, []float64{0, 5, 7})

	require.Equal(t, 5.0, v.PlusScore())
	v.Plus()
	require.Equal(t, 2.0, v.PlusScore())
	require.Equal(t, -5.0, v.MinusScore())
	v.Plus()
	require.Equal(t, 2, v.Value())
	require.Equal(t, -2.0, v.MinusScore())
}

// Past the end of the score table, extra occurrences must never add
// score and removing them must never cost score.
func TestVariableTailClipping(t *testing.T) {
	rising := NewVariable(2, []float64{0, 5, 7})
	require.Equal(t, 0.0, rising.PlusScore(), "plus residual of a rising table clips to 0")
	rising.Plus()
	require.Equal(t, 3, rising.Value())
	require.Equal(t, 0.0, rising.MinusScore(), "minus residual of a rising table clips to 0")

	falling := NewVariable(3, []float64{0, 5, 3})
	require.Equal(t, -2.0, falling.PlusScore(), "falling tables keep charging for extras")
	require.Equal(t, 2.0, falling.MinusScore())
}

func TestVariableMinusAtZeroPanics(t *testing.T) {
	v := NewVariable(0, []float64{0, 1})
	require.Panics(t, func() { v.Minus() })
	require.Panics(t, func() { v.MinusScore() })
}

func TestVariableValueTrackedPastTable(t *testing.T) {
	v := NewVariable(0, []float64{0, 1})
	for i := 0; i < 5; i++ {
		v.Plus()
	}
	require.Equal(t, 5, v.Value())
	for i := 0; i < 5; i++ {
		v.Minus()
	}
	require.Equal(t, 0, v.Value())
}
