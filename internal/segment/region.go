// Package segment merges over-segmented watershed regions in a label
// image. The label image is represented as a graph of Segments
// (labeled regions), Surfaces (ridge pixels between exactly two
// Segments) and Corners (ridge pixels adjacent to three or more
// Segments). Surfaces are removed one at a time, weakest ridge first,
// until every remaining ridge is stronger than the merge threshold.
package segment

import "gonum.org/v1/gonum/stat"

// Region holds the pixel indices and intensity values of an image
// region. It is the common base of Segment, Surface and Corner. The
// mean intensity is cached and recomputed lazily after pixels have
// been added.
type Region struct {
	pixels []int
	values []float64

	mean      float64
	meanFresh bool
}

// AddPixel appends a pixel to the region and invalidates the cached
// mean.
func (r *Region) AddPixel(pixel int, value float64) {
	r.pixels = append(r.pixels, pixel)
	r.values = append(r.values, value)
	r.meanFresh = false
}

// Mean returns the mean pixel intensity of the region. The region must
// not be empty. The value is cached until the next AddPixel or Merge.
func (r *Region) Mean() float64 {
	if !r.meanFresh {
		r.mean = stat.Mean(r.values, nil)
		r.meanFresh = true
	}
	return r.mean
}

// Merge appends the pixels of other to the region. The pixels are not
// removed from other.
func (r *Region) Merge(other *Region) {
	r.pixels = append(r.pixels, other.pixels...)
	r.values = append(r.values, other.values...)
	r.meanFresh = false
}

// NumPixels returns the number of pixels in the region.
func (r *Region) NumPixels() int { return len(r.pixels) }

// Pixel returns the image index of pixel i in the region.
func (r *Region) Pixel(i int) int { return r.pixels[i] }

// Value returns the image intensity of pixel i in the region.
func (r *Region) Value(i int) float64 { return r.values[i] }
