package segment

import "fmt"

// border is the common base of Surface and Corner: a region of ridge
// pixels together with the list of Segments it touches.
type border struct {
	Region
	segments []*Segment
}

// NumSegments returns the number of Segments adjacent to the border.
func (b *border) NumSegments() int { return len(b.segments) }

// Segment returns adjacent Segment number i.
func (b *border) Segment(i int) *Segment { return b.segments[i] }

// Neighbor returns the Segment on the other side of the border,
// relative to seg. The border must have exactly two adjacent Segments
// and seg must be one of them.
func (b *border) Neighbor(seg *Segment) *Segment {
	if len(b.segments) != 2 {
		panic(fmt.Sprintf("segment: Neighbor on a border with %d segments", len(b.segments)))
	}
	switch seg {
	case b.segments[0]:
		return b.segments[1]
	case b.segments[1]:
		return b.segments[0]
	}
	panic("segment: Neighbor called with a segment that is not adjacent")
}

// IsAdjacent reports whether seg touches the border.
func (b *border) IsAdjacent(seg *Segment) bool {
	for _, s := range b.segments {
		if s == seg {
			return true
		}
	}
	return false
}

// replaceSegment swaps oldSeg for newSeg in the adjacency list. If
// newSeg is already adjacent, oldSeg is removed without duplicating
// newSeg. The Segments' own border lists are not touched. Returns
// whether newSeg was already adjacent.
func (b *border) replaceSegment(oldSeg, newSeg *Segment) bool {
	if oldSeg == newSeg {
		panic("segment: replaceSegment with identical segments")
	}
	already := false
	for _, s := range b.segments {
		if s == newSeg {
			already = true
			break
		}
	}
	if !already {
		b.segments = append(b.segments, newSeg)
	}
	for i, s := range b.segments {
		if s == oldSeg {
			b.segments = append(b.segments[:i], b.segments[i+1:]...)
			return already
		}
	}
	panic("segment: replaceSegment called for a segment that is not adjacent")
}
