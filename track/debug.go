//go:build debug && withcv
// +build debug,withcv

/*
DESCRIPTION
  debug.go displays tracked keypoints over each frame for debugging.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package track

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ausocean/opticflow/frame"
)

// debugWindows is used for displaying debug information for the tracker.
type debugWindows struct {
	windows []*gocv.Window
}

// close frees resources used by gocv.
func (d *debugWindows) close() error {
	for _, window := range d.windows {
		err := window.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// newWindows creates debugging windows for the tracker.
func newWindows(name string) debugWindows {
	return debugWindows{
		windows: []*gocv.Window{gocv.NewWindow(name + ": Keypoints")},
	}
}

// show draws the surviving and lost keypoints of s over f.
func (d *debugWindows) show(f *frame.Frame, s Snapshot) {
	var green = color.RGBA{31, 191, 31, 0}
	var drkRed = color.RGBA{191, 0, 0, 0}

	im, err := gocv.ImageToMatRGB(f.Image())
	if err != nil {
		return
	}
	defer im.Close()

	for _, p := range s.Points {
		r, c := p.Pos.Round()
		gocv.Circle(&im, image.Pt(c, r), 3, green, 1)
	}
	for _, l := range s.Lost {
		r, c := l.Pos.Round()
		gocv.Circle(&im, image.Pt(c, r), 3, drkRed, 1)
	}
	text := fmt.Sprintf("Frame: %d Tracked: %d", s.Frame, len(s.Points))
	gocv.PutText(&im, text, image.Pt(8, 16), gocv.FontHersheyPlain, 1.0, drkRed, 1)

	d.windows[0].IMShow(im)
	d.windows[0].WaitKey(1)
}
