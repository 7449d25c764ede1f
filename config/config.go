/*
NAME
  config.go

DESCRIPTION
  config.go contains the configuration settings for keypoint tracking.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config contains the configuration settings for the optical flow
// estimator and keypoint tracker.
package config

import (
	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
)

// ErrEvenWindow is returned by Validate when the window size is even. The
// estimation window is centred on a pixel, so it must have odd width.
var ErrEvenWindow = errors.New("window size must be odd")

// Config provides parameters relevant to a tracker instance. A new config
// must be validated before use; unset fields are given the default values
// defined in variables.go.
type Config struct {
	// Logger holds an implementation of the Logger interface. This must be
	// set for the tracker to work correctly.
	Logger logging.Logger

	// LogLevel is the logging verbosity level.
	// Valid values are defined by enums from the logger package: logging.Debug,
	// logging.Info, logging.Warning logging.Error, logging.Fatal.
	LogLevel int8

	// WindowSize is the width of the square window, in pixels, over which
	// local flow is estimated. It must be odd.
	WindowSize int

	NumIters int // Refinement iterations per pyramid level.

	// Levels is the number of levels in the image pyramid, including the full
	// resolution frame, so the coarsest level has index Levels-1. A value of 1
	// gives single scale estimation.
	Levels int

	Scale float64 // Downscale factor between pyramid levels, must be > 1.

	// ErrorThresh is the patch error above which a keypoint is considered
	// lost. Patch errors are mean squared differences of min-max normalised
	// patches so they lie in [0, 1].
	ErrorThresh float64

	// ExcludeBorder is the minimum distance, in pixels, a keypoint must keep
	// from every frame edge to remain tracked. It must be positive.
	ExcludeBorder int

	// Workers is the number of goroutines used to estimate flow for the
	// keypoints of a single frame pair.
	Workers int
}

// Validate checks for any errors in the config fields and defaults settings
// if particular parameters have not been defined.
func (c *Config) Validate() error {
	for _, v := range Variables {
		if v.Validate != nil {
			v.Validate(c)
		}
	}
	if c.WindowSize%2 == 0 {
		return errors.Wrapf(ErrEvenWindow, "got %d", c.WindowSize)
	}
	return nil
}

// Update takes a map of configuration variable names and their corresponding
// values, parses the string values and converting into correct type, and then
// sets the config struct fields as appropriate.
func (c *Config) Update(vars map[string]string) {
	for _, value := range Variables {
		if v, ok := vars[value.Name]; ok && value.Update != nil {
			value.Update(c, v)
		}
	}
}

func (c *Config) LogInvalidField(name string, def interface{}) {
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}
