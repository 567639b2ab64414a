// Package track links per-frame cell detections into a lineage forest
// by repeatedly inserting the highest-scoring cell track found with a
// Viterbi search over a time-layered trellis.
//
// The trellis has one layer per frame plus a pre-sequence and a
// post-sequence idle layer. Its arcs are Events (migration, mitosis,
// apoptosis, appearance, ...) that play two roles: they score a
// candidate path given the current forest, and they mutate the forest
// when the chosen path is executed. Each insertion also regenerates
// the Swap arcs around the CellNodes it touched, which lets later
// iterations splice new cells into the middle of existing tracks and
// undo earlier greedy choices.
//
// The Engine owns the trellis, which owns its States, which own their
// arcs; the Forest owns the CellNodes. CellNodes are always released
// before the State they reside in.
package track
