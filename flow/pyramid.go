/*
DESCRIPTION
  pyramid.go provides Gaussian image pyramids and coarse to fine flow
  estimation over them.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package flow

import (
	"math"
	"runtime"
	"sync"

	"github.com/pkg/errors"

	"github.com/ausocean/opticflow/frame"
)

// Pyramid is a sequence of progressively downscaled frames. Level 0 is the
// full resolution frame.
type Pyramid []*frame.Frame

// NewPyramid returns a pyramid of the given number of levels built from f,
// each level downscaled from the previous one by scale. Before resizing,
// each level is smoothed with a Gaussian of standard deviation 2*scale/6.
// Fewer than one level is treated as one.
func NewPyramid(f *frame.Frame, levels int, scale float64) Pyramid {
	p := Pyramid{f}
	sigma := 2 * scale / 6
	for l := 1; l < levels; l++ {
		prev := p[l-1]
		rows, cols := prev.Dims()
		r := int(math.Ceil(float64(rows) / scale))
		c := int(math.Ceil(float64(cols) / scale))
		p = append(p, prev.Blur(sigma).Resize(r, c))
	}
	return p
}

// Result is the estimated flow of one keypoint.
type Result struct {
	Flow Vector

	// Err holds the recoverable error, if any, from refinement at full
	// resolution. Flow is still the best available estimate.
	Err error
}

// Estimator performs pyramidal iterative flow estimation.
type Estimator struct {
	Refiner
	Levels  int     // Number of pyramid levels including full resolution.
	Scale   float64 // Downscale factor between levels.
	Workers int     // Goroutines used per estimate; <= 0 uses runtime.NumCPU().
}

// Estimate returns the flow of each keypoint from frame i to frame j. Frames
// must have the same shape. Results are in the order of kps.
func (e Estimator) Estimate(i, j *frame.Frame, kps []frame.Keypoint) ([]Result, error) {
	if !i.SameShape(j) {
		return nil, errors.New("frames differ in shape")
	}
	return e.EstimatePyramids(NewPyramid(i, e.Levels, e.Scale), NewPyramid(j, e.Levels, e.Scale), kps)
}

// EstimatePyramids is as Estimate for prebuilt pyramids, which must have
// been built with e's levels and scale.
func (e Estimator) EstimatePyramids(pi, pj Pyramid, kps []frame.Keypoint) ([]Result, error) {
	if len(pi) != len(pj) || len(pi) == 0 {
		return nil, errors.Errorf("pyramid depths differ or are empty: %d and %d", len(pi), len(pj))
	}

	grads := make([]frame.Gradient, len(pi))
	for l, f := range pi {
		grads[l] = f.Gradient()
	}

	res := make([]Result, len(kps))
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(kps))

	idx := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for n := range idx {
				res[n] = e.estimate(pi, pj, grads, kps[n])
			}
		}()
	}
	for n := range kps {
		idx <- n
	}
	close(idx)
	wg.Wait()
	return res, nil
}

// estimate refines the flow of k from the coarsest level down to level 0,
// carrying the guess g = scale*(g+d) between levels.
func (e Estimator) estimate(pi, pj Pyramid, grads []frame.Gradient, k frame.Keypoint) Result {
	var g Vector
	for l := len(pi) - 1; l > 0; l-- {
		kl := k.Scale(math.Pow(e.Scale, -float64(l)))
		d, _ := e.Refine(pi[l], pj[l], grads[l], kl, g)
		g = g.Add(d).Scale(e.Scale)
	}
	d, err := e.Refine(pi[0], pj[0], grads[0], k, g)
	return Result{Flow: g.Add(d), Err: err}
}
