package segment

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// checkGraph verifies the structural invariants of the region graph:
// surface endpoints are distinct and mutually registered, segment
// pairs have at most one surface, and corners list at least two
// segments that all know about them.
func checkGraph(t *testing.T, e *MergeEngine) {
	t.Helper()

	for _, seg := range e.segments {
		if seg == nil {
			continue
		}
		type pair struct{ lo, hi int }
		seen := make(map[pair]bool)
		for i := 0; i < seg.NumSurfaces(); i++ {
			surf := seg.Surface(i)
			require.Equal(t, 2, surf.NumSegments(), "surface endpoint count")
			require.NotSame(t, surf.Segment(0), surf.Segment(1), "surface endpoints must differ")
			require.True(t, surf.IsAdjacent(seg), "surface must list the segment that lists it")

			other := surf.Neighbor(seg)
			lo, hi := seg.Index(), other.Index()
			if hi < lo {
				lo, hi = hi, lo
			}
			require.False(t, seen[pair{lo, hi}], "segments %d and %d have two surfaces", lo, hi)
			seen[pair{lo, hi}] = true

			found := false
			for j := 0; j < other.NumSurfaces(); j++ {
				if other.Surface(j) == surf {
					found = true
					break
				}
			}
			require.True(t, found, "surface missing from the other endpoint's adjacency")
		}
		for i := 0; i < seg.NumCorners(); i++ {
			c := seg.Corner(i)
			require.GreaterOrEqual(t, c.NumSegments(), 2, "corner neighbor count")
			require.True(t, c.IsAdjacent(seg))
		}
	}
}

func TestRegionMeanCaching(t *testing.T) {
	var r Region
	r.AddPixel(0, 2)
	r.AddPixel(1, 4)
	require.Equal(t, 3.0, r.Mean())

	// Adding a pixel must invalidate the cached mean.
	r.AddPixel(2, 12)
	require.Equal(t, 6.0, r.Mean())

	var other Region
	other.AddPixel(3, 6)
	r.Merge(&other)
	require.Equal(t, 6.0, r.Mean())
	require.Equal(t, 1, other.NumPixels(), "merge must not mutate the source region")
}

func TestSurfaceScore(t *testing.T) {
	a, b := NewSegment(0), NewSegment(1)
	a.AddPixel(0, 10)
	b.AddPixel(1, 20)
	surf := NewSurface(a, b)
	surf.AddPixel(2, 9)

	// 9 divided by the smaller endpoint mean, epsilon guarded.
	require.InDelta(t, 9.0/10.001, surf.Score(), 1e-12)
}

func TestSurfaceScoreZeroMean(t *testing.T) {
	a, b := NewSegment(0), NewSegment(1)
	a.AddPixel(0, 0)
	b.AddPixel(1, 0)
	surf := NewSurface(a, b)
	surf.AddPixel(2, 0)
	require.Equal(t, 0.0, surf.Score())
}

// A 4x1 block and a 4x2 block separated by a weak ridge column merge
// into a single region, and the absorbed ridge pixels take its label.
func TestTwoRegionToyMerge(t *testing.T) {
	dims := []int{4, 4}
	labels := []int{
		1, 1, 1, 1,
		0, 0, 0, 0,
		2, 2, 2, 2,
		2, 2, 2, 2,
	}
	// Column-major: column 1 is the ridge.
	image := make([]float64, 16)
	for i := range image {
		image[i] = 10
	}
	for i := 4; i < 8; i++ {
		image[i] = 9
	}

	got, err := MergeSegments(dims, labels, image, 1.0, 0)
	require.NoError(t, err)

	want := make([]int, 16)
	for i := range want {
		want[i] = 1
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("label mismatch (-want +got):\n%s", diff)
	}
}

// With a threshold below the ridge score and a size floor both blocks
// satisfy, the surface is erased without merging and the input labels
// come back unchanged.
func TestSizeGatedNonMerge(t *testing.T) {
	dims := []int{4, 4}
	labels := []int{
		1, 1, 1, 1,
		0, 0, 0, 0,
		2, 2, 2, 2,
		2, 2, 2, 2,
	}
	image := make([]float64, 16)
	for i := range image {
		image[i] = 10
	}
	for i := 4; i < 8; i++ {
		image[i] = 9
	}

	got, err := MergeSegments(dims, labels, image, 0.5, 1)
	require.NoError(t, err)
	if diff := cmp.Diff(labels, got); diff != "" {
		t.Errorf("label mismatch (-want +got):\n%s", diff)
	}
}

// A small segment is merged even when its ridge score exceeds the
// threshold, because the size guard keeps the surface in play.
func TestSmallSegmentMergesDespiteStrongRidge(t *testing.T) {
	dims := []int{1, 3}
	labels := []int{1, 0, 2}
	image := []float64{10, 9, 10}

	got, err := MergeSegments(dims, labels, image, 0.5, 1)
	require.NoError(t, err)
	require.Equal(t, []int{1, 1, 1}, got)
}

// The central ridge pixel of [[1,0,2],[0,0,0],[3,0,3]] is a corner
// adjacent to all three regions. With uniform intensities everything
// merges into one region; the bottom-middle ridge pixel borders only
// region 3 and stays background.
func TestCornerImageFullMerge(t *testing.T) {
	dims := []int{3, 3}
	// Column-major layout of [[1,0,2],[0,0,0],[3,0,3]].
	labels := []int{
		1, 0, 3,
		0, 0, 0,
		2, 0, 3,
	}
	image := make([]float64, 9)
	for i := range image {
		image[i] = 5
	}

	e, err := NewMergeEngine(dims, labels, image, 1.0, 0)
	require.NoError(t, err)
	checkGraph(t, e)
	require.Len(t, e.allCorners, 1, "the center pixel should be a corner")
	require.Equal(t, 3, e.allCorners[0].NumSegments())

	// Every proper ridge pixel belongs to exactly one surface or
	// corner; the stray background pixel at index 5 belongs to none.
	ridge := make(map[int]int)
	for _, surf := range e.allSurfaces {
		for i := 0; i < surf.NumPixels(); i++ {
			ridge[surf.Pixel(i)]++
		}
	}
	for _, c := range e.allCorners {
		for i := 0; i < c.NumPixels(); i++ {
			ridge[c.Pixel(i)]++
		}
	}
	require.Equal(t, map[int]int{1: 1, 3: 1, 4: 1, 7: 1}, ridge)

	e.Run()
	checkGraph(t, e)
	got := e.NewLabels()

	want := []int{
		1, 1, 1,
		1, 1, 0,
		1, 1, 1,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("label mismatch (-want +got):\n%s", diff)
	}
}

// Hand-built graph where merging reduces a corner to two neighbors
// that share no surface: the corner must be converted into a new
// surface carrying its pixels.
func TestCornerToSurfacePromotion(t *testing.T) {
	a, b, c := NewSegment(0), NewSegment(1), NewSegment(2)
	a.AddPixel(0, 10)
	b.AddPixel(1, 10)
	c.AddPixel(2, 10)

	ab := NewSurface(a, b)
	ab.AddPixel(3, 1)

	corner := NewCorner()
	corner.AddPixel(4, 7)
	corner.AddSegment(a)
	corner.AddSegment(b)
	corner.AddSegment(c)

	var created []*Surface
	a.Merge(b, &created)

	require.Len(t, created, 1, "corner should have been promoted to a surface")
	promoted := created[0]
	require.Equal(t, 2, promoted.NumSegments())
	require.True(t, promoted.IsAdjacent(a))
	require.True(t, promoted.IsAdjacent(c))
	require.Equal(t, 1, promoted.NumPixels())
	require.Equal(t, 4, promoted.Pixel(0))
	require.Equal(t, 0, a.NumCorners(), "corner must be detached after promotion")
	require.Equal(t, 0, c.NumCorners())
}

// A corner reduced to two neighbors that already share a surface is
// merged into that surface instead of creating a second one.
func TestCornerMergesIntoExistingSurface(t *testing.T) {
	a, b, c := NewSegment(0), NewSegment(1), NewSegment(2)
	a.AddPixel(0, 10)
	b.AddPixel(1, 10)
	c.AddPixel(2, 10)

	ab := NewSurface(a, b)
	ab.AddPixel(3, 1)
	ac := NewSurface(a, c)
	ac.AddPixel(4, 8)

	corner := NewCorner()
	corner.AddPixel(5, 7)
	corner.AddSegment(a)
	corner.AddSegment(b)
	corner.AddSegment(c)

	var created []*Surface
	a.Merge(b, &created)

	require.Empty(t, created)
	require.Equal(t, 2, ac.NumPixels(), "corner pixels should fold into the existing surface")
	require.Equal(t, 1, a.NumSurfaces())
	require.Equal(t, 0, a.NumCorners())
}

// Re-running the merge on its own output with the same parameters must
// leave the labels unchanged.
func TestMergeIdempotent(t *testing.T) {
	dims := []int{4, 5}
	labels := []int{
		1, 1, 1, 1,
		0, 0, 0, 0,
		2, 2, 2, 2,
		0, 0, 0, 0,
		3, 3, 3, 3,
	}
	image := []float64{
		10, 10, 10, 10,
		2, 2, 2, 2,
		10, 10, 10, 10,
		9, 9, 9, 9,
		10, 10, 10, 10,
	}

	first, err := MergeSegments(dims, labels, image, 0.5, 0)
	require.NoError(t, err)

	second, err := MergeSegments(dims, first, image, 0.5, 0)
	require.NoError(t, err)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second run changed the labels (-first +second):\n%s", diff)
	}
}

func TestMergeSegments3D(t *testing.T) {
	// Two 2x2x1 slabs separated by a ridge plane in the third
	// dimension.
	dims := []int{2, 2, 3}
	labels := []int{
		1, 1, 1, 1,
		0, 0, 0, 0,
		2, 2, 2, 2,
	}
	image := []float64{
		10, 10, 10, 10,
		3, 3, 3, 3,
		10, 10, 10, 10,
	}

	got, err := MergeSegments(dims, labels, image, 0.5, 0)
	require.NoError(t, err)
	for i, l := range got {
		require.Equal(t, 1, l, "voxel %d", i)
	}
}

func TestMergeSegmentsInputValidation(t *testing.T) {
	if _, err := MergeSegments([]int{4}, []int{1, 1, 1, 1}, []float64{1, 1, 1, 1}, 1, 0); err == nil {
		t.Error("expected an error for a 1D image")
	}
	if _, err := MergeSegments([]int{2, 2}, []int{1, 1, 1}, []float64{1, 1, 1, 1}, 1, 0); err == nil {
		t.Error("expected an error for a short label buffer")
	}
	if _, err := MergeSegments([]int{2, 2}, []int{1, -1, 1, 1}, []float64{1, 1, 1, 1}, 1, 0); err == nil {
		t.Error("expected an error for a negative label")
	}
}

// Equal scores fall back to segment-index ordering, which makes the
// merge order, and therefore the output, deterministic.
func TestTieBreakDeterminism(t *testing.T) {
	dims := []int{1, 5}
	labels := []int{1, 0, 2, 0, 3}
	image := []float64{10, 9, 10, 9, 10}

	first, err := MergeSegments(dims, labels, image, 1.0, 0)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		again, err := MergeSegments(dims, labels, image, 1.0, 0)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}
