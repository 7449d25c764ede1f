/*
DESCRIPTION
  keypoints.go provides reading and writing of keypoint lists in a simple
  line based text format.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package source

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ausocean/opticflow/frame"
)

// ReadKeypoints reads keypoints from r, one per line as a row and column
// separated by white space or a comma. Blank lines and text following a #
// are ignored.
func ReadKeypoints(r io.Reader) ([]frame.Keypoint, error) {
	var kps []frame.Keypoint
	s := bufio.NewScanner(r)
	for line := 1; s.Scan(); line++ {
		text, _, _ := strings.Cut(s.Text(), "#")
		fields := strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: expected row and column, got %q", line, s.Text())
		}
		row, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad row: %w", line, err)
		}
		col, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad column: %w", line, err)
		}
		kps = append(kps, frame.Keypoint{Row: row, Col: col})
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("could not read keypoints: %w", err)
	}
	return kps, nil
}

// WriteKeypoints writes kps to w in the format read by ReadKeypoints.
func WriteKeypoints(w io.Writer, kps []frame.Keypoint) error {
	bw := bufio.NewWriter(w)
	for _, k := range kps {
		_, err := fmt.Fprintf(bw, "%g %g\n", k.Row, k.Col)
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}
