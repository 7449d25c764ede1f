/*
DESCRIPTION
  refine.go provides iterative refinement of the local flow estimate.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package flow

import (
	"math"

	"github.com/pkg/errors"

	"github.com/ausocean/opticflow/frame"
)

// Refiner iteratively refines the flow of a single keypoint.
type Refiner struct {
	Window int // Odd width of the square estimation window.
	Iters  int // Iteration budget.
}

// Refine estimates the flow of keypoint k from frame i to frame j, starting
// from the displacement guess carried from a coarser pyramid level. grad
// must be the gradient of i.
//
// The structure matrix is computed once, from i at the reference window.
// Each iteration compares the reference window in i with the window in j at
// the current candidate position k+guess+v and adds the solved increment to
// v. The returned vector excludes guess.
//
// If the reference window leaves i, or its structure matrix is singular, a
// zero vector is returned with ErrOutOfBounds or ErrSingular. If a
// candidate window leaves j, refinement stops and the estimate so far is
// returned along with ErrOutOfBounds.
func (rf Refiner) Refine(i, j *frame.Frame, grad frame.Gradient, k frame.Keypoint, guess Vector) (Vector, error) {
	w := rf.Window / 2
	r, c := k.Round()
	s, err := newStructure(grad, r, c, w)
	if err != nil {
		return Vector{}, err
	}

	var v Vector
	for n := 0; n < rf.Iters; n++ {
		r2 := int(math.Round(k.Row + guess.Row + v.Row))
		c2 := int(math.Round(k.Col + guess.Col + v.Col))
		if !j.Contains(r2, c2, w) {
			return v, errors.Wrapf(ErrOutOfBounds, "candidate window at (%d, %d) on iteration %d", r2, c2, n)
		}

		var br, bc float64
		for dy := -w; dy <= w; dy++ {
			for dx := -w; dx <= w; dx++ {
				d := i.At(r+dy, c+dx) - j.At(r2+dy, c2+dx)
				br += d * grad.Row.At(r+dy, c+dx)
				bc += d * grad.Col.At(r+dy, c+dx)
			}
		}

		inc := s.solve(br, bc)
		if inc == (Vector{}) {
			// Every remaining iteration would see the same candidate.
			break
		}
		v = v.Add(inc)
	}
	return v, nil
}
