/*
DESCRIPTION
  smooth.go provides Gaussian smoothing and bilinear resizing of frames, as
  needed to construct image pyramids.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package frame

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// truncate is the number of standard deviations at which the Gaussian
// kernel is cut off.
const truncate = 4.0

// Blur returns f smoothed by a Gaussian of standard deviation sigma. The
// kernel is applied separably and the frame is extended by reflection about
// its edges (d c b a | a b c d | d c b a). A sigma <= 0 returns f.
func (f *Frame) Blur(sigma float64) *Frame {
	if sigma <= 0 {
		return f
	}
	k := gaussianKernel(sigma)
	rows, cols := f.Dims()
	src := f.m.RawMatrix()

	tmp := make([]float64, rows*cols)
	for r := 0; r < rows; r++ {
		line := src.Data[r*src.Stride : r*src.Stride+cols]
		convolve(tmp[r*cols:(r+1)*cols], func(i int) float64 { return line[i] }, cols, k)
	}

	out := make([]float64, rows*cols)
	col := make([]float64, rows)
	for c := 0; c < cols; c++ {
		convolve(col, func(i int) float64 { return tmp[i*cols+c] }, rows, k)
		for r := 0; r < rows; r++ {
			out[r*cols+c] = col[r]
		}
	}
	return &Frame{m: mat.NewDense(rows, cols, out)}
}

// Resize returns f resampled to rows x cols by bilinear interpolation.
// Pixel centres are aligned, so output pixel i samples input position
// (i+0.5)*in/out - 0.5, clamped to the frame.
func (f *Frame) Resize(rows, cols int) *Frame {
	inRows, inCols := f.Dims()
	out := mat.NewDense(rows, cols, nil)
	sr := float64(inRows) / float64(rows)
	sc := float64(inCols) / float64(cols)
	for r := 0; r < rows; r++ {
		y0, y1, fy := sample(r, sr, inRows)
		for c := 0; c < cols; c++ {
			x0, x1, fx := sample(c, sc, inCols)
			top := (1-fx)*f.m.At(y0, x0) + fx*f.m.At(y0, x1)
			bottom := (1-fx)*f.m.At(y1, x0) + fx*f.m.At(y1, x1)
			out.Set(r, c, (1-fy)*top+fy*bottom)
		}
	}
	return &Frame{m: out}
}

// sample returns the two input indices neighbouring output index i and the
// interpolation weight of the second.
func sample(i int, scale float64, n int) (i0, i1 int, frac float64) {
	p := (float64(i)+0.5)*scale - 0.5
	p = math.Max(0, math.Min(p, float64(n-1)))
	i0 = int(math.Floor(p))
	i1 = min(i0+1, n-1)
	return i0, i1, p - float64(i0)
}

// gaussianKernel returns a normalised Gaussian kernel of odd length.
func gaussianKernel(sigma float64) []float64 {
	radius := int(truncate*sigma + 0.5)
	k := make([]float64, 2*radius+1)
	for i := range k {
		x := float64(i - radius)
		k[i] = math.Exp(-x * x / (2 * sigma * sigma))
	}
	floats.Scale(1/floats.Sum(k), k)
	return k
}

// convolve writes the convolution of the n samples given by at with the
// symmetric kernel k into dst, reflecting at the ends.
func convolve(dst []float64, at func(int) float64, n int, k []float64) {
	radius := len(k) / 2
	for i := 0; i < n; i++ {
		var sum float64
		for j, w := range k {
			sum += w * at(reflect(i+j-radius, n))
		}
		dst[i] = sum
	}
}

// reflect maps index i onto [0, n) by reflection about the sample edges.
func reflect(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}
