// Package arrayio reads and writes the length-prefixed binary array
// format used to exchange label and intensity volumes with the host
// application, and provides index helpers for the column-major layout
// shared by all image buffers.
//
// The file format is: int32 numDims, int32 dims[numDims], then the
// payload in column-major order. In 2D the linear index of (i, j) is
// i + j*H; in 3D the index of (i, j, k) is i + j*H + k*H*W. Higher
// dimensions take precedence over lower ones in the element ordering.
package arrayio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// NumElements returns the product of dims, i.e. the length a
// column-major buffer with those dimensions must have.
func NumElements(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}

// Index2D returns the column-major linear index of (i, j) in an image
// of height h.
func Index2D(i, j, h int) int {
	return i + j*h
}

// Index3D returns the column-major linear index of (i, j, k) in a
// volume of height h and width w.
func Index3D(i, j, k, h, w int) int {
	return i + j*h + k*h*w
}

// SaveFloat64 writes a column-major float64 array to path.
func SaveFloat64(path string, dims []int, data []float64) error {
	if len(data) != NumElements(dims) {
		return fmt.Errorf("arrayio: data length %d does not match dims %v", len(data), dims)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("arrayio: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := writeHeader(w, dims); err != nil {
		return err
	}
	buf := make([]byte, 8)
	for _, v := range data {
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("arrayio: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("arrayio: %w", err)
	}
	return f.Close()
}

// SaveInt32 writes a column-major int32 array to path.
func SaveInt32(path string, dims []int, data []int32) error {
	if len(data) != NumElements(dims) {
		return fmt.Errorf("arrayio: data length %d does not match dims %v", len(data), dims)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("arrayio: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := writeHeader(w, dims); err != nil {
		return err
	}
	buf := make([]byte, 4)
	for _, v := range data {
		binary.LittleEndian.PutUint32(buf, uint32(v))
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("arrayio: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("arrayio: %w", err)
	}
	return f.Close()
}

// LoadFloat64 reads a float64 array written by SaveFloat64 and returns
// its dimensions and column-major payload.
func LoadFloat64(path string) ([]int, []float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("arrayio: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	dims, err := readHeader(r)
	if err != nil {
		return nil, nil, err
	}
	data := make([]float64, NumElements(dims))
	buf := make([]byte, 8)
	for i := range data {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, nil, fmt.Errorf("arrayio: %w", err)
		}
		data[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf))
	}
	return dims, data, nil
}

func writeHeader(w *bufio.Writer, dims []int) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(len(dims)))
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("arrayio: %w", err)
	}
	for _, d := range dims {
		binary.LittleEndian.PutUint32(buf, uint32(d))
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("arrayio: %w", err)
		}
	}
	return nil
}

func readHeader(r *bufio.Reader) ([]int, error) {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("arrayio: %w", err)
	}
	numDims := int(int32(binary.LittleEndian.Uint32(buf)))
	if numDims < 1 || numDims > 8 {
		return nil, fmt.Errorf("arrayio: implausible dimension count %d", numDims)
	}
	dims := make([]int, numDims)
	for i := range dims {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("arrayio: %w", err)
		}
		dims[i] = int(int32(binary.LittleEndian.Uint32(buf)))
	}
	return dims, nil
}
