/*
DESCRIPTION
  eval.go provides utilities for evaluating trajectory sets: bounding box
  overlap and per-sequence tracking summaries.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package track

import (
	"image"
	"math"

	"gonum.org/v1/gonum/stat"
)

// IoU returns the intersection over union of two boxes, or 0 if they do not
// intersect.
func IoU(a, b image.Rectangle) float64 {
	inter := a.Intersect(b)
	if inter.Empty() {
		return 0
	}
	interArea := inter.Dx() * inter.Dy()
	union := a.Dx()*a.Dy() + b.Dx()*b.Dy() - interArea
	return float64(interArea) / float64(union)
}

// Bounds returns the smallest pixel rectangle containing the rounded
// positions of the snapshot's points. It is empty if there are no points.
func (s Snapshot) Bounds() image.Rectangle {
	var b image.Rectangle
	for _, p := range s.Points {
		r, c := p.Pos.Round()
		b = b.Union(image.Rect(c, r, c+1, r+1))
	}
	return b
}

// Summary describes the outcome of tracking a sequence.
type Summary struct {
	Frames  int // Number of snapshots.
	Initial int // Points in the first snapshot.
	Final   int // Points in the last snapshot.

	// Survival is Final/Initial, or 0 with no initial points.
	Survival float64

	// MeanDisplacement is the mean distance, in pixels, between the first
	// and last positions of the surviving points.
	MeanDisplacement float64

	// Overlap is the IoU of the bounding boxes of the surviving points in
	// the first and last snapshots.
	Overlap float64
}

// Summarize summarises a trajectory set as returned by Tracker.Track.
func Summarize(snaps []Snapshot) Summary {
	if len(snaps) == 0 {
		return Summary{}
	}
	first, last := snaps[0], snaps[len(snaps)-1]
	s := Summary{Frames: len(snaps), Initial: len(first.Points), Final: len(last.Points)}
	if s.Initial == 0 {
		return s
	}
	s.Survival = float64(s.Final) / float64(s.Initial)

	start := make(map[int]Point, len(first.Points))
	for _, p := range first.Points {
		start[p.ID] = p
	}
	var d []float64
	survivors := Snapshot{Points: make([]Point, 0, len(last.Points))}
	for _, p := range last.Points {
		p0, ok := start[p.ID]
		if !ok {
			continue
		}
		d = append(d, math.Hypot(p.Pos.Row-p0.Pos.Row, p.Pos.Col-p0.Pos.Col))
		survivors.Points = append(survivors.Points, p0)
	}
	if len(d) != 0 {
		s.MeanDisplacement = stat.Mean(d, nil)
	}
	s.Overlap = IoU(survivors.Bounds(), last.Bounds())
	return s
}
