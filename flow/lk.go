/*
DESCRIPTION
  lk.go provides the single window gradient based (Lucas-Kanade) flow
  estimate and the structure matrix it is built on.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package flow provides sparse optical flow estimation: a local linear
// least squares estimate over a window, its iterative refinement, and the
// coarse-to-fine composition of refinements across an image pyramid.
package flow

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/ausocean/opticflow/frame"
)

var (
	// ErrOutOfBounds is returned when a window needed for estimation does not
	// lie entirely inside a frame.
	ErrOutOfBounds = frame.ErrOutOfBounds

	// ErrSingular is returned when the structure matrix of a window cannot be
	// inverted, typically because the window has no texture.
	ErrSingular = errors.New("singular structure matrix")
)

// Vector is a displacement between two frames.
type Vector struct {
	Row, Col float64
}

// Add returns v+u.
func (v Vector) Add(u Vector) Vector { return Vector{Row: v.Row + u.Row, Col: v.Col + u.Col} }

// Scale returns v scaled by s.
func (v Vector) Scale(s float64) Vector { return Vector{Row: v.Row * s, Col: v.Col * s} }

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 { return math.Hypot(v.Row, v.Col) }

// Apply returns k displaced by v.
func (v Vector) Apply(k frame.Keypoint) frame.Keypoint {
	return frame.Keypoint{Row: k.Row + v.Row, Col: k.Col + v.Col}
}

// structure is the inverted structure matrix of a reference window,
// G = sum [[Ir*Ir, Ir*Ic], [Ir*Ic, Ic*Ic]].
type structure struct {
	r, c, w int // Window centre and half-size.
	inv     mat.Dense
}

// newStructure computes and inverts the structure matrix of the window of
// half-size w centred on (r, c) in the frame whose gradient is grad.
func newStructure(grad frame.Gradient, r, c, w int) (*structure, error) {
	if !grad.Row.Contains(r, c, w) {
		return nil, errors.Wrapf(ErrOutOfBounds, "reference window at (%d, %d)", r, c)
	}
	var srr, src, scc float64
	for y := r - w; y <= r+w; y++ {
		for x := c - w; x <= c+w; x++ {
			gr, gc := grad.Row.At(y, x), grad.Col.At(y, x)
			srr += gr * gr
			src += gr * gc
			scc += gc * gc
		}
	}

	s := &structure{r: r, c: c, w: w}
	err := s.inv.Inverse(mat.NewDense(2, 2, []float64{srr, src, src, scc}))
	if err != nil {
		return nil, errors.Wrapf(ErrSingular, "at (%d, %d): %v", r, c, err)
	}
	return s, nil
}

// solve returns G⁻¹b for b = (br, bc).
func (s *structure) solve(br, bc float64) Vector {
	var v mat.VecDense
	v.MulVec(&s.inv, mat.NewVecDense(2, []float64{br, bc}))
	return Vector{Row: v.AtVec(0), Col: v.AtVec(1)}
}

// LocalFlow estimates the displacement of the window around keypoint k from
// frame i to frame j by solving the linearised brightness constancy
// equations over the window in the least squares sense. grad must be the
// gradient of i and window the odd width of the square window. Windows that
// leave either frame give ErrOutOfBounds; a textureless window gives
// ErrSingular.
func LocalFlow(i, j *frame.Frame, grad frame.Gradient, k frame.Keypoint, window int) (Vector, error) {
	w := window / 2
	r, c := k.Round()
	s, err := newStructure(grad, r, c, w)
	if err != nil {
		return Vector{}, err
	}
	if !j.Contains(r, c, w) {
		return Vector{}, errors.Wrapf(ErrOutOfBounds, "target window at (%d, %d)", r, c)
	}

	var br, bc float64
	for y := r - w; y <= r+w; y++ {
		for x := c - w; x <= c+w; x++ {
			it := j.At(y, x) - i.At(y, x)
			br -= it * grad.Row.At(y, x)
			bc -= it * grad.Col.At(y, x)
		}
	}
	return s.solve(br, bc), nil
}
