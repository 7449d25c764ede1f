//go:build withcv
// +build withcv

/*
DESCRIPTION
  video.go provides a frame source over video files and corner detection
  for choosing keypoints, both using gocv.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package source

import (
	"fmt"
	"io"

	"github.com/ausocean/utils/logging"
	"gocv.io/x/gocv"

	"github.com/ausocean/opticflow/frame"
)

// Video is a frame source over the frames of a video file.
type Video struct {
	log  logging.Logger
	vc   *gocv.VideoCapture
	img  gocv.Mat
	gray gocv.Mat
	n    int
}

// NewVideo opens the video file at path.
func NewVideo(l logging.Logger, path string) (*Video, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open video file: %w", err)
	}
	l.Debug("video capture open", "path", path)
	return &Video{log: l, vc: vc, img: gocv.NewMat(), gray: gocv.NewMat()}, nil
}

// Next implements track.FrameSource.
func (v *Video) Next() (*frame.Frame, error) {
	for {
		if ok := v.vc.Read(&v.img); !ok {
			v.log.Debug("end of video", "frames", v.n)
			return nil, io.EOF
		}
		if !v.img.Empty() {
			break
		}
	}
	v.n++

	gocv.CvtColor(v.img, &v.gray, gocv.ColorBGRToGray)
	img, err := v.gray.ToImage()
	if err != nil {
		return nil, fmt.Errorf("could not convert frame %d: %w", v.n, err)
	}
	return frame.FromImage(img), nil
}

// Close frees resources used by gocv.
func (v *Video) Close() error {
	v.img.Close()
	v.gray.Close()
	return v.vc.Close()
}

// Detect returns up to n strong corners of f, at least minDist pixels apart
// and with quality at least quality times that of the strongest corner.
func Detect(f *frame.Frame, n int, quality, minDist float64) ([]frame.Keypoint, error) {
	img, err := gocv.ImageGrayToMatGray(f.Image())
	if err != nil {
		return nil, fmt.Errorf("could not convert frame: %w", err)
	}
	defer img.Close()

	corners := gocv.NewMat()
	defer corners.Close()
	gocv.GoodFeaturesToTrack(img, &corners, n, quality, minDist)

	kps := make([]frame.Keypoint, 0, corners.Rows())
	for row := 0; row < corners.Rows(); row++ {
		pt := corners.GetVecfAt(row, 0)
		kps = append(kps, frame.Keypoint{Row: float64(pt[1]), Col: float64(pt[0])})
	}
	return kps, nil
}
