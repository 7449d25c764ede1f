/*
DESCRIPTION
  frame_test.go provides testing for frame construction, windowing, gradients,
  smoothing and resizing.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package frame

import (
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// values returns the frame contents as a slice of rows.
func values(f *Frame) [][]float64 {
	rows, cols := f.Dims()
	v := make([][]float64, rows)
	for r := range v {
		v[r] = make([]float64, cols)
		for c := range v[r] {
			v[r][c] = f.At(r, c)
		}
	}
	return v
}

func mustNew(t *testing.T, rows, cols int, data []float64) *Frame {
	t.Helper()
	f, err := New(rows, cols, data)
	if err != nil {
		t.Fatalf("could not create frame: %v", err)
	}
	return f
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		rows    int
		cols    int
		data    []float64
		wantErr bool
	}{
		{name: "valid", rows: 2, cols: 3, data: []float64{1, 2, 3, 4, 5, 6}},
		{name: "zeros", rows: 2, cols: 2},
		{name: "short data", rows: 2, cols: 2, data: []float64{1, 2, 3}, wantErr: true},
		{name: "zero rows", rows: 0, cols: 2, wantErr: true},
		{name: "negative cols", rows: 2, cols: -1, wantErr: true},
	}

	for _, test := range tests {
		_, err := New(test.rows, test.cols, test.data)
		if (err != nil) != test.wantErr {
			t.Errorf("%s: unexpected error state, got: %v, wantErr: %v", test.name, err, test.wantErr)
		}
	}
}

func TestNewCopiesData(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	f := mustNew(t, 2, 2, data)
	data[0] = 100
	if f.At(0, 0) != 1 {
		t.Errorf("frame changed with source data, got: %v, want: 1", f.At(0, 0))
	}
}

func TestGradient(t *testing.T) {
	// Intensity increases by 1 per column and 10 per row, except for the last
	// row which breaks the pattern to exercise the one-sided difference.
	f := mustNew(t, 3, 4, []float64{
		0, 1, 2, 3,
		10, 11, 12, 13,
		30, 31, 32, 33,
	})
	g := f.Gradient()

	wantRow := [][]float64{
		{10, 10, 10, 10},
		{15, 15, 15, 15},
		{20, 20, 20, 20},
	}
	wantCol := [][]float64{
		{1, 1, 1, 1},
		{1, 1, 1, 1},
		{1, 1, 1, 1},
	}
	if diff := cmp.Diff(wantRow, values(g.Row)); diff != "" {
		t.Errorf("unexpected row gradient (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantCol, values(g.Col)); diff != "" {
		t.Errorf("unexpected column gradient (-want +got):\n%s", diff)
	}
}

func TestGradientSingleRow(t *testing.T) {
	f := mustNew(t, 1, 3, []float64{0, 2, 6})
	g := f.Gradient()
	if diff := cmp.Diff([][]float64{{0, 0, 0}}, values(g.Row)); diff != "" {
		t.Errorf("unexpected row gradient (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]float64{{2, 3, 4}}, values(g.Col)); diff != "" {
		t.Errorf("unexpected column gradient (-want +got):\n%s", diff)
	}
}

func TestWindow(t *testing.T) {
	data := make([]float64, 25)
	for i := range data {
		data[i] = float64(i)
	}
	f := mustNew(t, 5, 5, data)

	w, err := f.Window(2, 2, 1)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	want := mat.NewDense(3, 3, []float64{6, 7, 8, 11, 12, 13, 16, 17, 18})
	if !mat.Equal(w, want) {
		t.Errorf("unexpected window\ngot: %v\nwant: %v", mat.Formatted(w), mat.Formatted(want))
	}

	for _, p := range [][2]int{{0, 2}, {2, 0}, {4, 2}, {2, 4}} {
		_, err := f.Window(p[0], p[1], 1)
		if !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("window at %v: got error %v, want %v", p, err, ErrOutOfBounds)
		}
	}
}

func TestInside(t *testing.T) {
	f := mustNew(t, 4, 4, nil)
	tests := []struct {
		k    Keypoint
		want bool
	}{
		{Keypoint{0, 0}, true},
		{Keypoint{3.4, 3.4}, true},
		{Keypoint{3.5, 0}, false},
		{Keypoint{-0.6, 0}, false},
		{Keypoint{-0.4, 0}, true},
	}
	for _, test := range tests {
		if got := f.Inside(test.k); got != test.want {
			t.Errorf("Inside(%v) = %v, want %v", test.k, got, test.want)
		}
	}
}

func TestBlurPreservesConstant(t *testing.T) {
	data := make([]float64, 7*9)
	for i := range data {
		data[i] = 0.25
	}
	f := mustNew(t, 7, 9, data)
	b := f.Blur(1.5)
	for _, row := range values(b) {
		for _, v := range row {
			if !cmp.Equal(v, 0.25, cmpopts.EquateApprox(0, 1e-12)) {
				t.Fatalf("blurred constant frame changed value, got: %v, want: 0.25", v)
			}
		}
	}
}

func TestBlurSpreadsImpulse(t *testing.T) {
	data := make([]float64, 81)
	data[4*9+4] = 1
	f := mustNew(t, 9, 9, data)
	b := f.Blur(1)

	var sum float64
	for _, row := range values(b) {
		for _, v := range row {
			sum += v
		}
	}
	if !cmp.Equal(sum, 1.0, cmpopts.EquateApprox(0, 1e-9)) {
		t.Errorf("blur did not preserve mass, got: %v", sum)
	}
	if b.At(4, 4) >= 1 || b.At(4, 4) <= b.At(4, 5) {
		t.Errorf("blurred impulse not peaked at centre: centre %v, neighbour %v", b.At(4, 4), b.At(4, 5))
	}
	if b.At(4, 3) != b.At(4, 5) || b.At(3, 4) != b.At(5, 4) {
		t.Errorf("blurred impulse not symmetric")
	}
}

func TestResize(t *testing.T) {
	f := mustNew(t, 4, 4, []float64{
		0, 0, 1, 1,
		0, 0, 1, 1,
		2, 2, 3, 3,
		2, 2, 3, 3,
	})
	got := f.Resize(2, 2)
	want := [][]float64{{0, 1}, {2, 3}}
	if diff := cmp.Diff(want, values(got)); diff != "" {
		t.Errorf("unexpected resized frame (-want +got):\n%s", diff)
	}

	rows, cols := f.Resize(3, 7).Dims()
	if rows != 3 || cols != 7 {
		t.Errorf("unexpected dimensions, got: %dx%d, want: 3x7", rows, cols)
	}
}

func TestFromImage(t *testing.T) {
	img := image.NewGray(image.Rect(10, 20, 13, 22))
	img.SetGray(10, 20, color.Gray{Y: 0xff})
	img.SetGray(12, 21, color.Gray{Y: 0x00})
	img.SetGray(11, 20, color.Gray{Y: 0x80})

	f := FromImage(img)
	rows, cols := f.Dims()
	if rows != 2 || cols != 3 {
		t.Fatalf("unexpected dimensions, got: %dx%d, want: 2x3", rows, cols)
	}
	if f.At(0, 0) != 1 {
		t.Errorf("unexpected intensity at (0, 0), got: %v, want: 1", f.At(0, 0))
	}
	if f.At(1, 2) != 0 {
		t.Errorf("unexpected intensity at (1, 2), got: %v, want: 0", f.At(1, 2))
	}
	if !cmp.Equal(f.At(0, 1), 128.0/255, cmpopts.EquateApprox(0, 1e-9)) {
		t.Errorf("unexpected intensity at (0, 1), got: %v, want: %v", f.At(0, 1), 128.0/255)
	}

	back := f.Image()
	if back.GrayAt(0, 0).Y != 0xff || back.GrayAt(1, 0).Y != 0x80 {
		t.Errorf("unexpected round trip pixels: %v %v", back.GrayAt(0, 0), back.GrayAt(1, 0))
	}
}
