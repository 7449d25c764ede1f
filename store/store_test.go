/*
DESCRIPTION
  store_test.go provides testing for the SQLite run store.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ausocean/opticflow/frame"
	"github.com/ausocean/opticflow/track"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testSnapshots() []track.Snapshot {
	return []track.Snapshot{
		{Frame: 0, Points: []track.Point{
			{ID: 0, Pos: frame.Keypoint{Row: 10, Col: 10}},
			{ID: 1, Pos: frame.Keypoint{Row: 20, Col: 5}},
			{ID: 2, Pos: frame.Keypoint{Row: 30, Col: 30}},
		}},
		{Frame: 1, Points: []track.Point{
			{ID: 0, Pos: frame.Keypoint{Row: 11.5, Col: 12.25}},
			{ID: 2, Pos: frame.Keypoint{Row: 31, Col: 32}},
		}, Lost: []track.Loss{
			{ID: 1, Pos: frame.Keypoint{Row: 21, Col: 3}, Reason: track.LostBorder},
		}},
		{Frame: 2},
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	p := Params{WindowSize: 9, NumIters: 7, Levels: 3, Scale: 2, ErrorThresh: 1.5, ExcludeBorder: 5}
	id, err := s.StartRun("frames/", p, 3)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	want := testSnapshots()
	for _, snap := range want {
		require.NoError(t, s.SaveSnapshot(id, snap))
	}

	got, err := s.Snapshots(id)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	runs, err := s.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, "frames/", runs[0].Source)
	assert.Equal(t, p, runs[0].Params)
	assert.Equal(t, 3, runs[0].Keypoints)
	assert.NotZero(t, runs[0].CreatedAt)

	traj, err := s.Trajectory(id, 0)
	require.NoError(t, err)
	assert.Equal(t, []frame.Keypoint{{Row: 10, Col: 10}, {Row: 11.5, Col: 12.25}}, traj)
}

func TestSaveSnapshotErrors(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	// Unknown run.
	err := s.SaveSnapshot("missing", testSnapshots()[0])
	assert.Error(t, err)

	id, err := s.StartRun("video.mp4", Params{}, 3)
	require.NoError(t, err)
	require.NoError(t, s.SaveSnapshot(id, testSnapshots()[0]))

	// Duplicate frame is rejected as a whole.
	err = s.SaveSnapshot(id, testSnapshots()[0])
	assert.Error(t, err)

	got, err := s.Snapshots(id)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRunsSeparate(t *testing.T) {
	t.Parallel()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer s.Close()

	a, err := s.StartRun("a", Params{}, 1)
	require.NoError(t, err)
	b, err := s.StartRun("b", Params{}, 1)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	snaps := testSnapshots()
	require.NoError(t, s.SaveSnapshot(a, snaps[0]))
	require.NoError(t, s.SaveSnapshot(b, snaps[2]))

	got, err := s.Snapshots(b)
	require.NoError(t, err)
	assert.Equal(t, []track.Snapshot{{Frame: 2}}, got)

	runs, err := s.Runs()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}
