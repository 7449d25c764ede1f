/*
DESCRIPTION
  frame.go provides an immutable single channel frame of real valued
  intensities, backed by a gonum dense matrix.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package frame provides the grayscale frame and keypoint types used for
// sparse optical flow, along with the spatial operations performed on them:
// gradients, windowing, smoothing and resizing.
package frame

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrOutOfBounds is returned when a requested window does not lie entirely
// inside a frame.
var ErrOutOfBounds = errors.New("window out of frame bounds")

// Frame is a single channel image of real valued intensities. A Frame is not
// modified after construction, so it may be shared between goroutines.
type Frame struct {
	m *mat.Dense
}

// New returns a new frame with the given dimensions holding a copy of data,
// which is in row-major order. A nil data gives a frame of zeros.
func New(rows, cols int, data []float64) (*Frame, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errors.Errorf("invalid frame dimensions %dx%d", rows, cols)
	}
	if data == nil {
		return &Frame{m: mat.NewDense(rows, cols, nil)}, nil
	}
	if len(data) != rows*cols {
		return nil, errors.Errorf("data length %d does not match dimensions %dx%d", len(data), rows, cols)
	}
	d := make([]float64, len(data))
	copy(d, data)
	return &Frame{m: mat.NewDense(rows, cols, d)}, nil
}

// FromMatrix returns a new frame holding a copy of m.
func FromMatrix(m mat.Matrix) *Frame {
	return &Frame{m: mat.DenseCopyOf(m)}
}

// FromImage returns a new frame holding the luminance of img mapped to [0, 1].
// Frame row 0, column 0 corresponds to img.Bounds().Min.
func FromImage(img image.Image) *Frame {
	b := img.Bounds()
	m := mat.NewDense(b.Dy(), b.Dx(), nil)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
			m.Set(y-b.Min.Y, x-b.Min.X, float64(g.Y)/0xffff)
		}
	}
	return &Frame{m: m}
}

// Dims returns the number of rows and columns in the frame.
func (f *Frame) Dims() (rows, cols int) { return f.m.Dims() }

// At returns the intensity at row r and column c. At panics if (r, c) is
// outside the frame.
func (f *Frame) At(r, c int) float64 { return f.m.At(r, c) }

// SameShape reports whether f and g have the same dimensions.
func (f *Frame) SameShape(g *Frame) bool {
	fr, fc := f.Dims()
	gr, gc := g.Dims()
	return fr == gr && fc == gc
}

// Contains reports whether the square window of half-size w centred on
// (r, c) lies entirely inside the frame.
func (f *Frame) Contains(r, c, w int) bool {
	rows, cols := f.Dims()
	return w >= 0 && r-w >= 0 && r+w < rows && c-w >= 0 && c+w < cols
}

// Window returns a read-only view of the (2w+1)x(2w+1) window centred on
// (r, c). ErrOutOfBounds is returned if the window leaves the frame.
func (f *Frame) Window(r, c, w int) (mat.Matrix, error) {
	if !f.Contains(r, c, w) {
		return nil, errors.Wrapf(ErrOutOfBounds, "window of half-size %d at (%d, %d)", w, r, c)
	}
	return f.m.Slice(r-w, r+w+1, c-w, c+w+1), nil
}

// Image returns an 8 bit grayscale rendering of the frame, clamping
// intensities to [0, 1].
func (f *Frame) Image() *image.Gray {
	rows, cols := f.Dims()
	img := image.NewGray(image.Rect(0, 0, cols, rows))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := f.m.At(r, c)
			switch {
			case v < 0:
				v = 0
			case v > 1:
				v = 1
			}
			img.SetGray(c, r, color.Gray{Y: uint8(v*0xff + 0.5)})
		}
	}
	return img
}
