/*
DESCRIPTION
  source_test.go provides testing for the directory, watched directory and
  keypoint list sources.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package source

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/google/go-cmp/cmp"

	"github.com/ausocean/opticflow/frame"
)

// writePNG writes a 4x3 gray image with top left pixel v to path, via a
// temporary file and rename so watchers only see the complete file.
func writePNG(t *testing.T, path string, v uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 4, 3))
	img.SetGray(0, 0, color.Gray{Y: v})

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		t.Fatalf("could not create file: %v", err)
	}
	err = png.Encode(f, img)
	if err != nil {
		t.Fatalf("could not encode image: %v", err)
	}
	f.Close()
	err = os.Rename(tmp, path)
	if err != nil {
		t.Fatalf("could not rename file: %v", err)
	}
}

func TestDir(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "frame002.png"), 0xff)
	writePNG(t, filepath.Join(dir, "frame000.png"), 0x00)
	writePNG(t, filepath.Join(dir, "frame001.png"), 0x80)
	err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a frame"), 0o644)
	if err != nil {
		t.Fatalf("could not write file: %v", err)
	}

	d, err := NewDir((*logging.TestLogger)(t), dir)
	if err != nil {
		t.Fatalf("could not open directory: %v", err)
	}
	if d.Len() != 3 {
		t.Fatalf("unexpected frame count, got: %d, want: 3", d.Len())
	}

	var got []uint8
	for {
		f, err := d.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		rows, cols := f.Dims()
		if rows != 3 || cols != 4 {
			t.Errorf("unexpected frame shape %dx%d", rows, cols)
		}
		got = append(got, f.Image().GrayAt(0, 0).Y)
	}
	if diff := cmp.Diff([]uint8{0x00, 0x80, 0xff}, got); diff != "" {
		t.Errorf("frames out of order (-want +got):\n%s", diff)
	}
}

func TestDirEmpty(t *testing.T) {
	_, err := NewDir((*logging.TestLogger)(t), t.TempDir())
	if err == nil {
		t.Error("expected error for directory without images")
	}
	_, err = NewDir((*logging.TestLogger)(t), filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := NewWatch(ctx, (*logging.TestLogger)(t), dir, 2*time.Second)
	if err != nil {
		t.Fatalf("could not watch directory: %v", err)
	}
	defer w.Close()

	writePNG(t, filepath.Join(dir, "a.png"), 0x40)
	f, err := w.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.Image().GrayAt(0, 0).Y; got != 0x40 {
		t.Errorf("unexpected frame, got pixel: %#x, want: 0x40", got)
	}

	// No further frames, so the idle timeout ends the sequence.
	_, err = w.Next()
	if err != io.EOF {
		t.Errorf("got error %v, want %v", err, io.EOF)
	}
}

func TestWatchClose(t *testing.T) {
	w, err := NewWatch(context.Background(), (*logging.TestLogger)(t), t.TempDir(), 0)
	if err != nil {
		t.Fatalf("could not watch directory: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("could not close watch: %v", err)
	}
	if _, err := w.Next(); err != io.EOF {
		t.Errorf("got error %v, want %v", err, io.EOF)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second close failed: %v", err)
	}
}

func TestReadKeypoints(t *testing.T) {
	in := `# row col
25 25
  3.5,	7   # trailing comment

-1e1 0
`
	got, err := ReadKeypoints(strings.NewReader(in))
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	want := []frame.Keypoint{{Row: 25, Col: 25}, {Row: 3.5, Col: 7}, {Row: -10, Col: 0}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected keypoints (-want +got):\n%s", diff)
	}

	for _, bad := range []string{"1 2 3\n", "1\n", "x 2\n", "1 y\n"} {
		_, err := ReadKeypoints(strings.NewReader(bad))
		if err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestWriteKeypoints(t *testing.T) {
	kps := []frame.Keypoint{{Row: 1.5, Col: 2}, {Row: 30, Col: 0.25}}
	var buf bytes.Buffer
	err := WriteKeypoints(&buf, kps)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if got, want := buf.String(), "1.5 2\n30 0.25\n"; got != want {
		t.Errorf("unexpected output, got: %q, want: %q", got, want)
	}
}
