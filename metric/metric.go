/*
DESCRIPTION
  metric.go provides Prometheus instrumentation of keypoint tracking.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package metric provides Prometheus metrics for the keypoint tracker.
// A nil *Metrics is valid and records nothing.
package metric

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Label values for lost keypoints and flow estimation failures.
const (
	ReasonBorder     = "border"
	ReasonAppearance = "appearance"
	ReasonPatch      = "patch"

	KindOutOfBounds = "out_of_bounds"
	KindSingular    = "singular"
)

// Metrics holds the tracker's collectors.
type Metrics struct {
	mu sync.Mutex

	frames     prometheus.Counter
	active     prometheus.Gauge
	lost       *prometheus.CounterVec
	flowErrors *prometheus.CounterVec
	stepTime   prometheus.Histogram
	patchError prometheus.Histogram
}

// New returns a new set of tracker metrics. Nil bucket slices use
// prometheus.DefBuckets for step times and linear buckets over [0, 1] for
// patch errors.
func New(stepBuckets, patchBuckets []float64) *Metrics {
	if stepBuckets == nil {
		stepBuckets = prometheus.DefBuckets
	}
	if patchBuckets == nil {
		patchBuckets = prometheus.LinearBuckets(0.05, 0.05, 20)
	}

	return &Metrics{
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "opticflow_frames_total",
			Help: "Count of frames tracked.",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "opticflow_active_keypoints",
			Help: "Number of keypoints still being tracked.",
		}),
		lost: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opticflow_keypoints_lost_total",
			Help: "Count of keypoints lost, by reason.",
		}, []string{"reason"}),
		flowErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opticflow_flow_errors_total",
			Help: "Count of recoverable flow estimation failures, by kind.",
		}, []string{"kind"}),
		stepTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "opticflow_step_duration_seconds",
			Help:    "Histogram of per frame step durations.",
			Buckets: stepBuckets,
		}),
		patchError: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "opticflow_patch_error",
			Help:    "Histogram of patch errors of tracked keypoints.",
			Buckets: patchBuckets,
		}),
	}
}

// Register registers the metrics with r.
func (m *Metrics) Register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.frames, m.active, m.lost, m.flowErrors, m.stepTime, m.patchError} {
		err := r.Register(c)
		if err != nil {
			return fmt.Errorf("could not register collector: %w", err)
		}
	}
	return nil
}

// MustRegister registers the metrics with the default registerer and panics
// on failure.
func (m *Metrics) MustRegister() {
	prometheus.MustRegister(m.frames, m.active, m.lost, m.flowErrors, m.stepTime, m.patchError)
}

// AddStep records a completed step that took d and left n active keypoints.
func (m *Metrics) AddStep(d time.Duration, n int) {
	if m == nil {
		return
	}
	m.lock()
	defer m.unlock()
	m.frames.Inc()
	m.stepTime.Observe(d.Seconds())
	m.active.Set(float64(n))
}

// SetActive sets the number of active keypoints.
func (m *Metrics) SetActive(n int) {
	if m == nil {
		return
	}
	m.active.Set(float64(n))
}

// AddLost records a keypoint lost for the given reason.
func (m *Metrics) AddLost(reason string) {
	if m == nil {
		return
	}
	m.lost.WithLabelValues(reason).Inc()
}

// AddFlowError records a recoverable flow estimation failure of the given kind.
func (m *Metrics) AddFlowError(kind string) {
	if m == nil {
		return
	}
	m.flowErrors.WithLabelValues(kind).Inc()
}

// AddPatchError records the patch error of a keypoint.
func (m *Metrics) AddPatchError(e float64) {
	if m == nil {
		return
	}
	m.patchError.Observe(e)
}

func (m *Metrics) lock() {
	m.mu.Lock()
}

func (m *Metrics) unlock() {
	m.mu.Unlock()
}

// ParseBuckets parses a comma separated list of histogram bucket bounds. An
// empty string gives nil buckets.
func ParseBuckets(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var buckets []float64
	for _, p := range strings.Split(s, ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("could not parse bucket value %q: %w", p, err)
		}
		buckets = append(buckets, f)
	}
	return buckets, nil
}
