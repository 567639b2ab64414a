package segment

import (
	"fmt"

	"github.com/arden-bio/celltrack/internal/arrayio"
	"github.com/arden-bio/celltrack/internal/monitoring"
)

// MergeEngine owns the region graph built from a label image and runs
// the priority-driven merge loop over it. Segments are kept in a slice
// indexed by original label; a slot is set to nil when its Segment has
// been merged away. Surfaces and Corners created at any point are also
// tracked in flat lists so teardown stays bounded even after they have
// been detached from all Segments.
type MergeEngine struct {
	dims     []int
	segments []*Segment
	queue    *surfaceQueue

	allSurfaces []*Surface
	allCorners  []*Corner

	threshold float64
	minSize   int
}

// NewMergeEngine builds the region graph for a label image. dims must
// have two or three elements; labels and image must both hold
// arrayio.NumElements(dims) values in column-major order, with label 0
// marking ridge pixels.
func NewMergeEngine(dims []int, labels []int, image []float64, threshold float64, minSize int) (*MergeEngine, error) {
	if len(dims) != 2 && len(dims) != 3 {
		return nil, fmt.Errorf("segment: image must be 2D or 3D, got %d dimensions", len(dims))
	}
	n := arrayio.NumElements(dims)
	if len(labels) != n || len(image) != n {
		return nil, fmt.Errorf("segment: dims %v imply %d elements, got %d labels and %d intensities",
			dims, n, len(labels), len(image))
	}

	e := &MergeEngine{
		dims:      append([]int(nil), dims...),
		queue:     newSurfaceQueue(),
		threshold: threshold,
		minSize:   minSize,
	}

	numSegments := 0
	for _, l := range labels {
		if l < 0 {
			return nil, fmt.Errorf("segment: negative label %d", l)
		}
		if l > numSegments {
			numSegments = l
		}
	}
	for s := 0; s < numSegments; s++ {
		e.segments = append(e.segments, NewSegment(s))
	}

	if len(dims) == 2 {
		e.scan2D(labels, image)
	} else {
		e.scan3D(labels, image)
	}

	// Surfaces go into the score-ordered queue only after the whole
	// image has been scanned: inserting earlier would freeze scores
	// computed from incomplete pixel lists.
	for _, surf := range e.allSurfaces {
		e.queue.insert(surf)
	}

	return e, nil
}

func (e *MergeEngine) scan2D(labels []int, image []float64) {
	h, w := e.dims[0], e.dims[1]
	var neighbors []int
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			index := arrayio.Index2D(i, j, h)
			label := labels[index]
			if label > 0 {
				e.segments[label-1].AddPixel(index, image[index])
				continue
			}

			neighbors = neighbors[:0]
			for ii := i - 1; ii <= i+1; ii++ {
				for jj := j - 1; jj <= j+1; jj++ {
					if ii < 0 || ii >= h || jj < 0 || jj >= w {
						continue
					}
					nb := labels[arrayio.Index2D(ii, jj, h)] - 1
					if nb >= 0 {
						neighbors = appendUnique(neighbors, nb)
					}
				}
			}
			e.addRidgePixel(index, image[index], neighbors)
		}
	}
}

func (e *MergeEngine) scan3D(labels []int, image []float64) {
	h, w, d := e.dims[0], e.dims[1], e.dims[2]
	var neighbors []int
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			for k := 0; k < d; k++ {
				index := arrayio.Index3D(i, j, k, h, w)
				label := labels[index]
				if label > 0 {
					e.segments[label-1].AddPixel(index, image[index])
					continue
				}

				neighbors = neighbors[:0]
				for ii := i - 1; ii <= i+1; ii++ {
					for jj := j - 1; jj <= j+1; jj++ {
						for kk := k - 1; kk <= k+1; kk++ {
							if ii < 0 || ii >= h || jj < 0 || jj >= w || kk < 0 || kk >= d {
								continue
							}
							nb := labels[arrayio.Index3D(ii, jj, kk, h, w)] - 1
							if nb >= 0 {
								neighbors = appendUnique(neighbors, nb)
							}
						}
					}
				}
				e.addRidgePixel(index, image[index], neighbors)
			}
		}
	}
}

// addRidgePixel routes a zero-labeled voxel to a Surface or a Corner
// based on how many distinct Segments its neighborhood touches.
// Ridge voxels with fewer than two neighbors are stray background and
// are ignored.
func (e *MergeEngine) addRidgePixel(index int, value float64, neighbors []int) {
	switch {
	case len(neighbors) < 2:
		return
	case len(neighbors) == 2:
		seg1 := e.segments[neighbors[0]]
		seg2 := e.segments[neighbors[1]]
		for i := 0; i < seg1.NumSurfaces(); i++ {
			if surf := seg1.Surface(i); surf.IsAdjacent(seg2) {
				surf.AddPixel(index, value)
				return
			}
		}
		surf := NewSurface(seg1, seg2)
		surf.AddPixel(index, value)
		e.allSurfaces = append(e.allSurfaces, surf)
	default:
		c := NewCorner()
		c.AddPixel(index, value)
		e.allCorners = append(e.allCorners, c)
		for _, nb := range neighbors {
			c.AddSegment(e.segments[nb])
		}
	}
}

func appendUnique(s []int, v int) []int {
	for _, x := range s {
		if x == v {
			return s
		}
	}
	return append(s, v)
}

// Run removes Surfaces weakest first until every remaining Surface has
// a score above the threshold and both endpoints exceed the minimum
// size. Every iteration either erases a Surface or merges a Segment
// away, so the loop terminates.
func (e *MergeEngine) Run() {
	iterations := 0
	for e.queue.len() > 0 {
		weakest := e.queue.min()

		if weakest.Score() > e.threshold &&
			weakest.Segment(0).NumPixels() > e.minSize &&
			weakest.Segment(1).NumPixels() > e.minSize {
			// Strong enough to keep, and neither endpoint needs to
			// grow past the size floor.
			e.queue.remove(weakest)
			continue
		}

		lo, hi := weakest.Segment(0), weakest.Segment(1)
		if hi.Index() < lo.Index() {
			lo, hi = hi, lo
		}

		// Every surface touching either endpoint can change score, so
		// pull them all out of the queue before mutating anything.
		for i := 0; i < lo.NumSurfaces(); i++ {
			e.queue.remove(lo.Surface(i))
		}
		for i := 0; i < hi.NumSurfaces(); i++ {
			e.queue.remove(hi.Surface(i))
		}

		var created []*Surface
		lo.Merge(hi, &created)
		e.segments[hi.Index()] = nil
		e.allSurfaces = append(e.allSurfaces, created...)

		for i := 0; i < lo.NumSurfaces(); i++ {
			e.queue.insert(lo.Surface(i))
		}

		iterations++
	}
	monitoring.Logf("segment: merged %d region pairs", iterations)
}

// NewLabels returns the relabeled image. Ridge pixels stay 0 and
// surviving Segments are numbered 1, 2, ... in order of ascending
// original index.
func (e *MergeEngine) NewLabels() []int {
	newLabels := make([]int, arrayio.NumElements(e.dims))
	next := 1
	for _, seg := range e.segments {
		if seg == nil {
			continue
		}
		for i := 0; i < seg.NumPixels(); i++ {
			newLabels[seg.Pixel(i)] = next
		}
		next++
	}
	return newLabels
}

// NumSegments returns the number of surviving Segments.
func (e *MergeEngine) NumSegments() int {
	n := 0
	for _, seg := range e.segments {
		if seg != nil {
			n++
		}
	}
	return n
}

// MergeSegments merges watershed regions whose separating ridge has a
// score at or below mergeThreshold, or whose size is at or below
// minSize. labels holds the watershed labels in column-major order
// with 0 marking ridge pixels; image holds the intensities the
// watershed transform was computed from. The returned label image uses
// fresh contiguous labels 1..K ordered by the lowest original label
// merged into each region; ridge pixels remain 0.
func MergeSegments(dims []int, labels []int, image []float64, mergeThreshold float64, minSize int) ([]int, error) {
	e, err := NewMergeEngine(dims, labels, image, mergeThreshold, minSize)
	if err != nil {
		return nil, err
	}
	e.Run()
	return e.NewLabels(), nil
}
