package segment

import "github.com/google/btree"

// surfaceLess orders Surfaces by (score, lower segment index, higher
// segment index). The index tie-break makes the order total: two
// distinct Surfaces can never share the same pair of Segments, so the
// merge loop pops Surfaces in a deterministic order even when scores
// are equal.
func surfaceLess(a, b *Surface) bool {
	sa, sb := a.Score(), b.Score()
	if sa != sb {
		return sa < sb
	}

	minA, maxA := a.segments[0].index, a.segments[1].index
	if maxA < minA {
		minA, maxA = maxA, minA
	}
	minB, maxB := b.segments[0].index, b.segments[1].index
	if maxB < minB {
		minB, maxB = maxB, minB
	}

	if minA != minB {
		return minA < minB
	}
	return maxA < maxB
}

// surfaceQueue keeps Surfaces ordered by surfaceLess. Surfaces must be
// removed from the queue before anything that can change their score
// is mutated, and reinserted afterwards, or the ordering invariant of
// the underlying tree breaks.
type surfaceQueue struct {
	tree *btree.BTreeG[*Surface]
}

func newSurfaceQueue() *surfaceQueue {
	return &surfaceQueue{tree: btree.NewG[*Surface](8, surfaceLess)}
}

func (q *surfaceQueue) insert(s *Surface) { q.tree.ReplaceOrInsert(s) }

func (q *surfaceQueue) remove(s *Surface) { q.tree.Delete(s) }

// min returns the Surface with the lowest score, or nil if the queue
// is empty.
func (q *surfaceQueue) min() *Surface {
	s, ok := q.tree.Min()
	if !ok {
		return nil
	}
	return s
}

func (q *surfaceQueue) len() int { return q.tree.Len() }
