//go:build !debug || !withcv
// +build !debug !withcv

/*
DESCRIPTION
  release.go provides no-op debug display for builds without the debug and
  withcv tags.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package track

import "github.com/ausocean/opticflow/frame"

// debugWindows is used for displaying debug information for the tracker.
type debugWindows struct{}

// close frees resources used by gocv.
func (d *debugWindows) close() error { return nil }

// newWindows creates debugging windows for the tracker.
func newWindows(name string) debugWindows { return debugWindows{} }

// show displays tracked keypoints over a frame.
func (d *debugWindows) show(f *frame.Frame, s Snapshot) {}
