/*
DESCRIPTION
  trajplot.go renders keypoint trajectory sets to image files.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package trajplot renders trajectory sets produced by the tracker using
// gonum/plot. Trajectories are drawn in image coordinates, with rows
// increasing downwards.
package trajplot

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/ausocean/opticflow/track"
)

// Default rendered size.
const (
	defaultWidth  = 8 * vg.Inch
	defaultHeight = 6 * vg.Inch
)

// Trajectories returns the path of each point in snaps, keyed by point ID,
// as (column, row) pairs in frame order.
func Trajectories(snaps []track.Snapshot) map[int]plotter.XYs {
	paths := make(map[int]plotter.XYs)
	for _, s := range snaps {
		for _, p := range s.Points {
			paths[p.ID] = append(paths[p.ID], plotter.XY{X: p.Pos.Col, Y: p.Pos.Row})
		}
	}
	return paths
}

// Plot returns a plot of the trajectories in snaps. Each trajectory is a
// line ending in a marker at its last position; points lost during tracking
// are marked with a cross where they were rejected.
func Plot(snaps []track.Snapshot, title string) (*plot.Plot, error) {
	if len(snaps) == 0 {
		return nil, errors.New("no snapshots to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Column"
	p.Y.Label.Text = "Row"
	p.Y.Scale = plot.InvertedScale{Normalizer: p.Y.Scale}
	p.Add(plotter.NewGrid())

	paths := Trajectories(snaps)
	ids := make([]int, 0, len(paths))
	for id := range paths {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for i, id := range ids {
		xys := paths[id]
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("could not create line for point %d: %w", id, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1)
		p.Add(line)

		end, err := plotter.NewScatter(xys[len(xys)-1:])
		if err != nil {
			return nil, fmt.Errorf("could not create marker for point %d: %w", id, err)
		}
		end.Color = plotutil.Color(i)
		end.Shape = draw.CircleGlyph{}
		p.Add(end)
	}

	var lost plotter.XYs
	for _, s := range snaps {
		for _, l := range s.Lost {
			lost = append(lost, plotter.XY{X: l.Pos.Col, Y: l.Pos.Row})
		}
	}
	if len(lost) > 0 {
		sc, err := plotter.NewScatter(lost)
		if err != nil {
			return nil, fmt.Errorf("could not create lost markers: %w", err)
		}
		sc.Shape = draw.CrossGlyph{}
		p.Add(sc)
		p.Legend.Add("lost", sc)
	}
	p.Legend.Top = true
	return p, nil
}

// Save renders the trajectories in snaps to file. The format is chosen by
// the file extension, for example .png or .svg.
func Save(snaps []track.Snapshot, title, file string) error {
	p, err := Plot(snaps, title)
	if err != nil {
		return err
	}
	err = p.Save(defaultWidth, defaultHeight, file)
	if err != nil {
		return fmt.Errorf("could not save plot: %w", err)
	}
	return nil
}
