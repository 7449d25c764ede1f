//go:build !withcv
// +build !withcv

/*
DESCRIPTION
  Replaces the gocv video source and corner detection when built without
  the withcv tag, for environments without OpenCV.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package source

import (
	"errors"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/opticflow/frame"
)

// ErrNoCV is returned by the gocv backed functions in builds without the
// withcv tag.
var ErrNoCV = errors.New("built without withcv tag")

// Video is a frame source over the frames of a video file.
type Video struct{}

// NewVideo returns ErrNoCV.
func NewVideo(l logging.Logger, path string) (*Video, error) { return nil, ErrNoCV }

// Next implements track.FrameSource.
func (v *Video) Next() (*frame.Frame, error) { return nil, ErrNoCV }

// Close does nothing.
func (v *Video) Close() error { return nil }

// Detect returns ErrNoCV.
func Detect(f *frame.Frame, n int, quality, minDist float64) ([]frame.Keypoint, error) {
	return nil, ErrNoCV
}
