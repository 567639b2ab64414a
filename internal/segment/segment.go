package segment

// Segment is a labeled watershed region. Its index is the zero-based
// original watershed label, and after merging it is the lowest index
// of all regions merged into it.
type Segment struct {
	Region
	index    int
	surfaces []*Surface
	corners  []*Corner
}

// NewSegment creates an empty Segment with the given index.
func NewSegment(index int) *Segment { return &Segment{index: index} }

// Index returns the Segment's index.
func (s *Segment) Index() int { return s.index }

// NumSurfaces returns the number of adjacent Surfaces.
func (s *Segment) NumSurfaces() int { return len(s.surfaces) }

// Surface returns adjacent Surface number i.
func (s *Segment) Surface(i int) *Surface { return s.surfaces[i] }

// NumCorners returns the number of adjacent Corners.
func (s *Segment) NumCorners() int { return len(s.corners) }

// Corner returns adjacent Corner number i.
func (s *Segment) Corner(i int) *Corner { return s.corners[i] }

func (s *Segment) addSurface(surf *Surface) { s.surfaces = append(s.surfaces, surf) }

func (s *Segment) addCorner(c *Corner) { s.corners = append(s.corners, c) }

// RemoveSurface removes surf from the adjacency list. The surface must
// be adjacent.
func (s *Segment) RemoveSurface(surf *Surface) {
	for i, v := range s.surfaces {
		if v == surf {
			s.surfaces = append(s.surfaces[:i], s.surfaces[i+1:]...)
			return
		}
	}
	panic("segment: RemoveSurface called for a surface that is not adjacent")
}

// RemoveCorner removes c from the adjacency list. The corner must be
// adjacent.
func (s *Segment) RemoveCorner(c *Corner) {
	for i, v := range s.corners {
		if v == c {
			s.corners = append(s.corners[:i], s.corners[i+1:]...)
			return
		}
	}
	panic("segment: RemoveCorner called for a corner that is not adjacent")
}

// mergeSurface absorbs the pixels of an adjacent Surface into the
// Segment and detaches the Surface from all of its Segments. Used when
// the Surface sits between the two Segments being merged.
func (s *Segment) mergeSurface(surf *Surface) {
	s.Region.Merge(&surf.Region)
	for _, seg := range surf.segments {
		seg.RemoveSurface(surf)
	}
}

// Merge absorbs other into the Segment. The Segment takes over other's
// pixels and the pixels of the Surface between them. Surfaces and
// Corners of other are re-homed to the Segment or merged into its
// preexisting Surfaces. Corners reduced to two neighbors are merged
// into a matching Surface or converted into a new one; any Surfaces
// created this way are appended to createdSurfaces so the caller can
// track them.
func (s *Segment) Merge(other *Segment, createdSurfaces *[]*Surface) {
	s.Region.Merge(&other.Region)

	// The adjacency lists are modified while they are processed, so
	// iterate over copies.
	otherSurfaces := append([]*Surface(nil), other.surfaces...)
	for _, surf2 := range otherSurfaces {
		neighbor2 := surf2.Neighbor(other)

		if neighbor2 == s {
			// The surface between the two merging segments becomes
			// interior pixels of the merged segment.
			s.mergeSurface(surf2)
			continue
		}

		merged := false
		for _, surf1 := range s.surfaces {
			if surf1.Neighbor(s) == neighbor2 {
				surf1.MergeSurface(surf2)
				merged = true
				break
			}
		}
		if !merged {
			surf2.SwitchSegment(other, s)
		}
	}

	otherCorners := append([]*Corner(nil), other.corners...)
	for _, c := range otherCorners {
		c.SwitchSegment(other, s)
		if c.NumSegments() != 2 {
			continue
		}
		neighbor2 := c.Neighbor(s)

		merged := false
		for _, surf1 := range s.surfaces {
			if surf1.Neighbor(s) == neighbor2 {
				surf1.MergeCorner(c)
				merged = true
				break
			}
		}
		if !merged {
			*createdSurfaces = append(*createdSurfaces, c.ConvertToSurface())
		}
	}
}
