/*
DESCRIPTION
  gradient.go computes first order spatial intensity gradients of a frame.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package frame

import "gonum.org/v1/gonum/mat"

// Gradient holds the vertical (Row) and horizontal (Col) first derivative
// approximations of a frame. Both have the frame's shape.
type Gradient struct {
	Row *Frame // d/drow.
	Col *Frame // d/dcol.
}

// Gradient returns the spatial gradient of f using central differences in
// the interior and one-sided differences on the first and last row/column.
// Along a dimension of length 1 the derivative is zero.
func (f *Frame) Gradient() Gradient {
	rows, cols := f.Dims()
	src := f.m.RawMatrix()
	dr := mat.NewDense(rows, cols, nil)
	dc := mat.NewDense(rows, cols, nil)
	rd := dr.RawMatrix()
	cd := dc.RawMatrix()

	at := func(r, c int) float64 { return src.Data[r*src.Stride+c] }
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			rd.Data[r*rd.Stride+c] = diff(r, rows, func(i int) float64 { return at(i, c) })
			cd.Data[r*cd.Stride+c] = diff(c, cols, func(i int) float64 { return at(r, i) })
		}
	}
	return Gradient{Row: &Frame{m: dr}, Col: &Frame{m: dc}}
}

// diff returns the finite difference at index i of a line of n samples.
func diff(i, n int, at func(int) float64) float64 {
	switch {
	case n < 2:
		return 0
	case i == 0:
		return at(1) - at(0)
	case i == n-1:
		return at(n-1) - at(n-2)
	default:
		return (at(i+1) - at(i-1)) / 2
	}
}
