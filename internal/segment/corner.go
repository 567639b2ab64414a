package segment

import "fmt"

// Corner is a region of ridge pixels adjacent to three or more
// Segments. Merging can reduce a Corner to two neighbors, at which
// point it is merged into an existing Surface between those neighbors
// or converted into a new one.
type Corner struct {
	border
}

// NewCorner creates an empty Corner with no pixels or neighbors.
func NewCorner() *Corner { return &Corner{} }

// AddSegment adds seg as a neighbor of the Corner and registers the
// Corner with seg.
func (c *Corner) AddSegment(seg *Segment) {
	c.segments = append(c.segments, seg)
	seg.addCorner(c)
}

// ConvertToSurface turns a two-neighbor Corner into a Surface between
// its neighbors, carrying the Corner's pixels, and detaches the Corner
// from both Segments. The Corner itself is not modified otherwise.
func (c *Corner) ConvertToSurface() *Surface {
	if len(c.segments) != 2 {
		panic(fmt.Sprintf("segment: ConvertToSurface on a corner with %d neighbors", len(c.segments)))
	}
	surf := NewSurface(c.segments[0], c.segments[1])
	for i := 0; i < c.NumPixels(); i++ {
		surf.AddPixel(c.Pixel(i), c.Value(i))
	}
	for _, seg := range c.segments {
		seg.RemoveCorner(c)
	}
	return surf
}

// SwitchSegment replaces oldSeg with newSeg in the Corner's neighbor
// list. If newSeg was already a neighbor, oldSeg is simply dropped;
// otherwise the Corner registers itself with newSeg.
func (c *Corner) SwitchSegment(oldSeg, newSeg *Segment) {
	if !c.replaceSegment(oldSeg, newSeg) {
		newSeg.addCorner(c)
	}
}
