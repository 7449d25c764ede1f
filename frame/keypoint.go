/*
DESCRIPTION
  keypoint.go provides the keypoint type, a floating point position within a
  frame.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package frame

import "math"

// Keypoint is a position in a frame's coordinate space. Row increases
// downwards and Col increases to the right.
type Keypoint struct {
	Row, Col float64
}

// Round returns the integer pixel nearest to k. Halves round away from zero.
func (k Keypoint) Round() (r, c int) {
	return int(math.Round(k.Row)), int(math.Round(k.Col))
}

// Scale returns k with both coordinates multiplied by s.
func (k Keypoint) Scale(s float64) Keypoint {
	return Keypoint{Row: k.Row * s, Col: k.Col * s}
}

// Finite reports whether both coordinates of k are finite.
func (k Keypoint) Finite() bool {
	return !math.IsNaN(k.Row) && !math.IsInf(k.Row, 0) && !math.IsNaN(k.Col) && !math.IsInf(k.Col, 0)
}

// Inside reports whether k rounds to a pixel of f.
func (f *Frame) Inside(k Keypoint) bool {
	if !k.Finite() {
		return false
	}
	r, c := k.Round()
	return f.Contains(r, c, 0)
}
