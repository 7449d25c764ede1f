/*
DESCRIPTION
  config_test.go provides testing for the Config struct methods (Validate and Update).

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"testing"

	"github.com/ausocean/utils/logging"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

type dumbLogger struct{}

func (dl *dumbLogger) Log(l int8, m string, a ...interface{})  {}
func (dl *dumbLogger) SetLevel(l int8)                         {}
func (dl *dumbLogger) Debug(msg string, args ...interface{})   {}
func (dl *dumbLogger) Info(msg string, args ...interface{})    {}
func (dl *dumbLogger) Warning(msg string, args ...interface{}) {}
func (dl *dumbLogger) Error(msg string, args ...interface{})   {}
func (dl *dumbLogger) Fatal(msg string, args ...interface{})   {}

func TestValidate(t *testing.T) {
	dl := &dumbLogger{}

	want := Config{
		Logger:        dl,
		LogLevel:      defaultVerbosity,
		WindowSize:    defaultWindowSize,
		NumIters:      defaultNumIters,
		Levels:        defaultLevels,
		Scale:         defaultScale,
		ErrorThresh:   defaultErrorThresh,
		ExcludeBorder: defaultExcludeBorder,
		Workers:       defaultWorkers,
	}

	got := Config{Logger: dl}
	err := (&got).Validate()
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	if !cmp.Equal(got, want) {
		t.Errorf("configs not equal\nwant: %v\ngot: %v", want, got)
	}
}

func TestValidateInvalid(t *testing.T) {
	dl := &dumbLogger{}

	got := Config{
		Logger:        dl,
		LogLevel:      42,
		WindowSize:    -3,
		Levels:        -1,
		Scale:         0.5,
		ErrorThresh:   -1,
		ExcludeBorder: -2,
		Workers:       -4,
	}
	err := (&got).Validate()
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	want := Config{
		Logger:        dl,
		LogLevel:      defaultVerbosity,
		WindowSize:    defaultWindowSize,
		NumIters:      defaultNumIters,
		Levels:        defaultLevels,
		Scale:         defaultScale,
		ErrorThresh:   defaultErrorThresh,
		ExcludeBorder: defaultExcludeBorder,
		Workers:       defaultWorkers,
	}
	if !cmp.Equal(got, want) {
		t.Errorf("configs not equal\nwant: %v\ngot: %v", want, got)
	}
}

func TestValidateEvenWindow(t *testing.T) {
	c := Config{Logger: &dumbLogger{}, WindowSize: 8}
	err := c.Validate()
	if !errors.Is(err, ErrEvenWindow) {
		t.Errorf("got error %v, want %v", err, ErrEvenWindow)
	}
}

func TestUpdate(t *testing.T) {
	updateMap := map[string]string{
		"ErrorThresh":   "0.25",
		"ExcludeBorder": "3",
		"Levels":        "4",
		"logging":       "Error",
		"NumIters":      "10",
		"Scale":         "1.5",
		"WindowSize":    " 11 ",
		"Workers":       "2",
		"Unknown":       "ignored",
	}

	dl := &dumbLogger{}
	want := Config{
		Logger:        dl,
		LogLevel:      logging.Error,
		WindowSize:    11,
		NumIters:      10,
		Levels:        4,
		Scale:         1.5,
		ErrorThresh:   0.25,
		ExcludeBorder: 3,
		Workers:       2,
	}

	got := Config{Logger: dl}
	got.Update(updateMap)
	if !cmp.Equal(want, got) {
		t.Errorf("configs not equal\nwant: %v\ngot: %v", want, got)
	}
}

func TestUpdateBadValues(t *testing.T) {
	dl := &dumbLogger{}
	got := Config{Logger: dl, LogLevel: logging.Warning}
	got.Update(map[string]string{
		"WindowSize": "nine",
		"Scale":      "big",
		"logging":    "Loud",
	})
	if err := got.Validate(); err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	if got.WindowSize != defaultWindowSize {
		t.Errorf("unexpected window size, got: %d, want: %d", got.WindowSize, defaultWindowSize)
	}
	if got.Scale != defaultScale {
		t.Errorf("unexpected scale, got: %v, want: %v", got.Scale, defaultScale)
	}
	if got.LogLevel != logging.Warning {
		t.Errorf("log level changed by invalid value, got: %d", got.LogLevel)
	}
}
