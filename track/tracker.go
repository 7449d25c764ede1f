/*
DESCRIPTION
  tracker.go provides the keypoint tracker, which follows a set of keypoints
  across a frame sequence using pyramidal optical flow, dropping those that
  approach the frame border or change appearance.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package track provides a sparse keypoint tracker built on pyramidal
// optical flow, along with the patch error it uses to detect lost keypoints
// and utilities for evaluating the resulting trajectories.
package track

import (
	"context"
	"io"
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"

	"github.com/ausocean/opticflow/config"
	"github.com/ausocean/opticflow/flow"
	"github.com/ausocean/opticflow/frame"
	"github.com/ausocean/opticflow/metric"
)

// patchRadius is the half-size of the patches compared by the appearance
// check, giving 3x3 patches.
const patchRadius = 1

// Tracker errors.
var (
	ErrFrameShape      = errors.New("frames differ in shape")
	ErrKeypointOutside = errors.New("keypoint outside frame")
	ErrNoFrames        = errors.New("no frames to track")
	errNoLogger        = errors.New("config has no logger")
)

// LossReason describes why a keypoint stopped being tracked.
type LossReason int

// Reasons for losing a keypoint.
const (
	LostBorder     LossReason = iota + 1 // Moved within the excluded border.
	LostAppearance                       // Patch error exceeded the threshold.
	LostPatch                            // Reference patch did not fit in the frame.
)

// String implements fmt.Stringer.
func (r LossReason) String() string {
	switch r {
	case LostBorder:
		return metric.ReasonBorder
	case LostAppearance:
		return metric.ReasonAppearance
	case LostPatch:
		return metric.ReasonPatch
	default:
		return "unknown"
	}
}

// Point is a tracked keypoint. ID is the keypoint's index in the initial
// keypoint set and does not change while it is tracked.
type Point struct {
	ID  int
	Pos frame.Keypoint
}

// Loss records a keypoint dropped during a step. Pos is the rejected
// candidate position.
type Loss struct {
	ID     int
	Pos    frame.Keypoint
	Reason LossReason
}

// Snapshot holds the keypoints still being tracked at a frame.
type Snapshot struct {
	Frame  int     // Index of the frame in the sequence.
	Points []Point // Surviving points, in initial order.
	Lost   []Loss  // Points dropped in the step that produced this snapshot.
}

// Keypoints returns the positions of the snapshot's points.
func (s Snapshot) Keypoints() []frame.Keypoint {
	kps := make([]frame.Keypoint, len(s.Points))
	for i, p := range s.Points {
		kps[i] = p.Pos
	}
	return kps
}

// FrameSource provides a sequence of frames. Next returns io.EOF when the
// sequence is exhausted.
type FrameSource interface {
	Next() (*frame.Frame, error)
}

// Tracker tracks keypoints across frame sequences. A Tracker holds no per
// sequence state, so it may be reused.
type Tracker struct {
	cfg     config.Config
	log     logging.Logger
	est     flow.Estimator
	metrics *metric.Metrics
	windows debugWindows
}

// Option is a functional option for a Tracker.
type Option func(*Tracker) error

// WithMetrics returns an option that records tracking metrics to m.
func WithMetrics(m *metric.Metrics) Option {
	return func(t *Tracker) error {
		if m == nil {
			return errors.New("nil metrics")
		}
		t.metrics = m
		return nil
	}
}

// New returns a new Tracker using the configuration c, which is validated
// and defaulted. An even window size is an error.
func New(c config.Config, options ...Option) (*Tracker, error) {
	if c.Logger == nil {
		return nil, errNoLogger
	}
	err := c.Validate()
	if err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	t := &Tracker{
		cfg: c,
		log: c.Logger,
		est: flow.Estimator{
			Refiner: flow.Refiner{Window: c.WindowSize, Iters: c.NumIters},
			Levels:  c.Levels,
			Scale:   c.Scale,
			Workers: c.Workers,
		},
		windows: newWindows("tracker"),
	}

	for i, opt := range options {
		err := opt(t)
		if err != nil {
			return nil, errors.Wrapf(err, "could not apply option %d", i)
		}
	}
	return t, nil
}

// Close frees any resources held by the tracker.
func (t *Tracker) Close() error {
	return t.windows.close()
}

// Config returns the validated configuration of the tracker.
func (t *Tracker) Config() config.Config { return t.cfg }

// Start returns the snapshot for the first frame f of a sequence, holding
// all of kps. Every keypoint must round to a pixel of f.
func (t *Tracker) Start(f *frame.Frame, kps []frame.Keypoint) (Snapshot, error) {
	s := Snapshot{Points: make([]Point, len(kps))}
	for i, k := range kps {
		if !f.Inside(k) {
			return Snapshot{}, errors.Wrapf(ErrKeypointOutside, "keypoint %d at %v", i, k)
		}
		s.Points[i] = Point{ID: i, Pos: k}
	}
	t.metrics.SetActive(len(kps))
	return s, nil
}

// Step advances prev, the snapshot for frame i, to frame j. Each point is
// moved by its estimated flow and dropped if its rounded new position is
// closer than ExcludeBorder pixels to an edge of j, or if the patch error
// between its old and new 3x3 neighbourhoods exceeds ErrorThresh. prev is
// not modified.
func (t *Tracker) Step(ctx context.Context, prev Snapshot, i, j *frame.Frame) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	if !i.SameShape(j) {
		return Snapshot{}, ErrFrameShape
	}
	start := time.Now()

	next := Snapshot{Frame: prev.Frame + 1, Points: make([]Point, 0, len(prev.Points))}
	if len(prev.Points) == 0 {
		t.metrics.AddStep(time.Since(start), 0)
		return next, nil
	}

	res, err := t.est.Estimate(i, j, prev.Keypoints())
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "could not estimate flow")
	}

	for n, p := range prev.Points {
		t.flowError(p, res[n].Err)
		pos := res[n].Flow.Apply(p.Pos)

		reason, err := t.check(i, j, p.Pos, pos)
		if err != nil {
			return Snapshot{}, err
		}
		if reason != 0 {
			t.log.Debug("keypoint lost", "frame", next.Frame, "id", p.ID, "reason", reason.String(), "row", pos.Row, "col", pos.Col)
			t.metrics.AddLost(reason.String())
			next.Lost = append(next.Lost, Loss{ID: p.ID, Pos: pos, Reason: reason})
			continue
		}
		next.Points = append(next.Points, Point{ID: p.ID, Pos: pos})
	}

	t.metrics.AddStep(time.Since(start), len(next.Points))
	t.windows.show(j, next)
	return next, nil
}

// check returns the reason a point moving from pos in i to next in j should
// be dropped, or zero if it survives. Only misuse of PatchError is an error.
func (t *Tracker) check(i, j *frame.Frame, pos, next frame.Keypoint) (LossReason, error) {
	if !next.Finite() {
		return LostBorder, nil
	}
	r, c := next.Round()
	rows, cols := j.Dims()
	b := t.cfg.ExcludeBorder
	if r < b || rows-1-r < b || c < b || cols-1-c < b {
		return LostBorder, nil
	}

	pr, pc := pos.Round()
	ref, err := i.Window(pr, pc, patchRadius)
	if err != nil {
		return LostPatch, nil
	}
	cand, err := j.Window(r, c, patchRadius)
	if err != nil {
		return LostPatch, nil
	}

	e, err := PatchError(ref, cand)
	if err != nil {
		return 0, errors.Wrap(err, "could not evaluate patch error")
	}
	t.metrics.AddPatchError(e)
	if e > t.cfg.ErrorThresh {
		return LostAppearance, nil
	}
	return 0, nil
}

// flowError logs and counts a recoverable flow estimation failure.
func (t *Tracker) flowError(p Point, err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, flow.ErrSingular):
		t.metrics.AddFlowError(metric.KindSingular)
	case errors.Is(err, flow.ErrOutOfBounds):
		t.metrics.AddFlowError(metric.KindOutOfBounds)
	}
	t.log.Debug("flow estimation incomplete", "id", p.ID, "error", err.Error())
}

// Track tracks kps, which must lie within the first frame, across frames
// and returns one snapshot per frame. The first snapshot holds all of kps.
func (t *Tracker) Track(ctx context.Context, frames []*frame.Frame, kps []frame.Keypoint) ([]Snapshot, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	for n, f := range frames[1:] {
		if !f.SameShape(frames[0]) {
			return nil, errors.Wrapf(ErrFrameShape, "frame %d", n+1)
		}
	}

	snaps := make([]Snapshot, 0, len(frames))
	err := t.Run(ctx, &sliceSource{frames: frames}, kps, func(s Snapshot) error {
		snaps = append(snaps, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snaps, nil
}

// Run tracks kps across the frames provided by src until it returns io.EOF,
// calling fn with each snapshot as it is produced. Cancellation of ctx is
// observed between steps. An error from fn stops tracking and is returned.
func (t *Tracker) Run(ctx context.Context, src FrameSource, kps []frame.Keypoint, fn func(Snapshot) error) error {
	prev, err := src.Next()
	if err == io.EOF {
		return ErrNoFrames
	}
	if err != nil {
		return errors.Wrap(err, "could not get first frame")
	}

	snap, err := t.Start(prev, kps)
	if err != nil {
		return err
	}
	t.log.Info("tracking started", "keypoints", len(kps))
	err = fn(snap)
	if err != nil {
		return err
	}

	for {
		f, err := src.Next()
		if err == io.EOF {
			t.log.Info("tracking finished", "frames", snap.Frame+1, "keypoints", len(snap.Points))
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "could not get frame %d", snap.Frame+1)
		}
		if !f.SameShape(prev) {
			return errors.Wrapf(ErrFrameShape, "frame %d", snap.Frame+1)
		}

		next, err := t.Step(ctx, snap, prev, f)
		if err != nil {
			return errors.Wrapf(err, "step to frame %d failed", snap.Frame+1)
		}
		snap = next
		err = fn(snap)
		if err != nil {
			return err
		}
		prev = f
	}
}

// sliceSource is a FrameSource over a slice of frames.
type sliceSource struct {
	frames []*frame.Frame
	n      int
}

func (s *sliceSource) Next() (*frame.Frame, error) {
	if s.n == len(s.frames) {
		return nil, io.EOF
	}
	f := s.frames[s.n]
	s.n++
	return f, nil
}
