/*
DESCRIPTION
  patch.go provides the normalised patch error used to decide whether a
  tracked keypoint still looks like itself.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package track

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrShapeMismatch is returned by PatchError for patches of different shape.
var ErrShapeMismatch = errors.New("patch shapes differ")

// PatchError returns the mean squared difference of a and b after each has
// been independently min-max normalised to [0, 1]. A constant patch
// normalises to zeros. The result is in [0, 1].
func PatchError(a, b mat.Matrix) (float64, error) {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return 0, errors.Wrapf(ErrShapeMismatch, "%dx%d and %dx%d", ar, ac, br, bc)
	}

	na := normalise(a)
	floats.Sub(na, normalise(b))
	return floats.Dot(na, na) / float64(len(na)), nil
}

// normalise returns the elements of m in row-major order, min-max
// normalised to [0, 1].
func normalise(m mat.Matrix) []float64 {
	r, c := m.Dims()
	v := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v = append(v, m.At(i, j))
		}
	}

	lo, hi := floats.Min(v), floats.Max(v)
	if hi == lo {
		for i := range v {
			v[i] = 0
		}
		return v
	}
	floats.AddConst(-lo, v)
	floats.Scale(1/(hi-lo), v)
	return v
}
