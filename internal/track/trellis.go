package track

import (
	"fmt"
	"math"
)

// Trellis is the layered DAG the Viterbi search runs over. Layer 0
// holds the pre-sequence idle state and layer numLayers-1 the
// post-sequence idle state; the layers between hold one frame's states
// each. Arcs live on the states; the trellis only tracks layer
// membership. Every arc must go forward by exactly one layer.
type Trellis struct {
	layers [][]*State
}

// NewTrellis creates an empty trellis with numLayers layers.
func NewTrellis(numLayers int) *Trellis {
	return &Trellis{layers: make([][]*State, numLayers)}
}

// NumLayers returns the number of layers.
func (tr *Trellis) NumLayers() int { return len(tr.layers) }

// NumStates returns the number of states in layer t.
func (tr *Trellis) NumStates(t int) int { return len(tr.layers[t]) }

// State returns state n of layer t.
func (tr *Trellis) State(t, n int) *State { return tr.layers[t][n] }

// AddState appends s to layer t. The state's in-layer index must equal
// its position, because the search uses it to address the layer.
func (tr *Trellis) AddState(t int, s *State) {
	if s.Index() != len(tr.layers[t]) {
		panic(fmt.Sprintf("track: state index %d does not match layer position %d", s.Index(), len(tr.layers[t])))
	}
	tr.layers[t] = append(tr.layers[t], s)
}

// HighestScoringPath runs the Viterbi recursion over the layers and
// returns the arcs of the highest-scoring path from layer 0 to the
// final layer, with its total score. States with no inbound arc keep a
// score of minus infinity and correctly lose every comparison. An
// error is returned when the final layer is unreachable; callers
// should always have wired the zero-score idle chain, so an
// unreachable end means the trellis was built from inconsistent data.
func (tr *Trellis) HighestScoringPath() ([]Event, float64, error) {
	numLayers := len(tr.layers)
	bestArcs := make([][]Event, numLayers)
	bestScores := make([][]float64, numLayers)
	prevIndex := make([][]int, numLayers)
	for t, layer := range tr.layers {
		bestArcs[t] = make([]Event, len(layer))
		bestScores[t] = make([]float64, len(layer))
		prevIndex[t] = make([]int, len(layer))
		for n := range layer {
			bestScores[t][n] = math.Inf(-1)
			prevIndex[t][n] = -1
		}
	}
	for n := range tr.layers[0] {
		bestScores[0][n] = 0
	}

	for t := 1; t < numLayers; t++ {
		for n, state := range tr.layers[t] {
			for i := 0; i < state.NumBackward(); i++ {
				arc := state.Backward(i)
				start := arc.StartState()
				if start.T() != t-1 {
					panic(fmt.Sprintf("track: arc into layer %d starts in layer %d", t, start.T()))
				}
				p := start.Index()
				score := bestScores[t-1][p] + arc.Score()
				if i == 0 || score > bestScores[t][n] {
					bestArcs[t][n] = arc
					bestScores[t][n] = score
					prevIndex[t][n] = p
				}
			}
		}
	}

	// Find the best final state and backtrack.
	endIndex := 0
	for n := range tr.layers[numLayers-1] {
		if bestScores[numLayers-1][n] > bestScores[numLayers-1][endIndex] {
			endIndex = n
		}
	}
	if math.IsInf(bestScores[numLayers-1][endIndex], -1) {
		return nil, 0, fmt.Errorf("track: no path through the trellis; the idle chain is missing")
	}

	arcs := make([]Event, numLayers-1)
	n := endIndex
	for t := numLayers - 1; t > 0; t-- {
		arcs[t-1] = bestArcs[t][n]
		n = prevIndex[t][n]
	}
	return arcs, bestScores[numLayers-1][endIndex], nil
}
