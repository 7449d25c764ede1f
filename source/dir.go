/*
DESCRIPTION
  dir.go provides a frame source reading a directory of still images in
  name order.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package source provides frame sources and keypoint inputs for the tracker:
// image directories, watched directories, video files and keypoint lists.
package source

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/opticflow/frame"
)

// isImage reports whether the file name has an extension of a supported
// image format.
func isImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return true
	default:
		return false
	}
}

// Load decodes the image file at path into a frame.
func Load(path string) (*frame.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode %s: %w", path, err)
	}
	return frame.FromImage(img), nil
}

// Dir is a frame source over the image files of a directory, in
// lexical order of file name.
type Dir struct {
	log   logging.Logger
	files []string
	n     int
}

// NewDir returns a new Dir for the images in path. Files that are not
// images are ignored. It is an error for the directory to hold no images.
func NewDir(l logging.Logger, path string) (*Dir, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("could not read frame directory: %w", err)
	}

	d := &Dir{log: l}
	for _, e := range entries {
		if e.IsDir() || !isImage(e.Name()) {
			continue
		}
		d.files = append(d.files, filepath.Join(path, e.Name()))
	}
	if len(d.files) == 0 {
		return nil, fmt.Errorf("no images in %s", path)
	}
	sort.Strings(d.files)
	l.Debug("frame directory opened", "path", path, "frames", len(d.files))
	return d, nil
}

// Len returns the number of frames in the directory.
func (d *Dir) Len() int { return len(d.files) }

// Next implements track.FrameSource.
func (d *Dir) Next() (*frame.Frame, error) {
	if d.n == len(d.files) {
		return nil, io.EOF
	}
	path := d.files[d.n]
	d.n++
	d.log.Debug("loading frame", "path", path)
	return Load(path)
}
