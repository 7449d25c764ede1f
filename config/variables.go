/*
DESCRIPTION
  variables.go contains a list of structs that provide a variable Name, type in
  a string format, a function for updating the variable in the Config struct
  from a string, and finally, a validation function to check the validity of the
  corresponding field value in the Config.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/ausocean/utils/logging"
)

// Config map Keys.
const (
	KeyErrorThresh   = "ErrorThresh"
	KeyExcludeBorder = "ExcludeBorder"
	KeyLevels        = "Levels"
	KeyLogging       = "logging"
	KeyNumIters      = "NumIters"
	KeyScale         = "Scale"
	KeyWindowSize    = "WindowSize"
	KeyWorkers       = "Workers"
)

// Config map parameter types.
const (
	typeInt   = "int"
	typeFloat = "float"
)

// Default variable values.
const (
	defaultVerbosity     = logging.Info
	defaultWindowSize    = 9
	defaultNumIters      = 7
	defaultLevels        = 3
	defaultScale         = 2.0
	defaultErrorThresh   = 1.5
	defaultExcludeBorder = 5
)

// defaultWorkers is the default number of flow estimation goroutines.
var defaultWorkers = runtime.NumCPU()

// Variables describes the variables that can be used for tracker control.
// These structs provide the name and type of variable, a function for updating
// this variable in a Config, and a function for validating the value of the variable.
var Variables = []struct {
	Name     string
	Type     string
	Update   func(*Config, string)
	Validate func(*Config)
}{
	{
		Name:   KeyErrorThresh,
		Type:   typeFloat,
		Update: func(c *Config, v string) { c.ErrorThresh = parseFloat(KeyErrorThresh, v, c) },
		Validate: func(c *Config) {
			if c.ErrorThresh <= 0 {
				c.LogInvalidField(KeyErrorThresh, defaultErrorThresh)
				c.ErrorThresh = defaultErrorThresh
			}
		},
	},
	{
		Name:   KeyExcludeBorder,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.ExcludeBorder = parseInt(KeyExcludeBorder, v, c) },
		Validate: func(c *Config) {
			if c.ExcludeBorder <= 0 {
				c.LogInvalidField(KeyExcludeBorder, defaultExcludeBorder)
				c.ExcludeBorder = defaultExcludeBorder
			}
		},
	},
	{
		Name:   KeyLevels,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.Levels = parseInt(KeyLevels, v, c) },
		Validate: func(c *Config) {
			if c.Levels <= 0 {
				c.LogInvalidField(KeyLevels, defaultLevels)
				c.Levels = defaultLevels
			}
		},
	},
	{
		Name: KeyLogging,
		Type: "enum:Debug,Info,Warning,Error,Fatal",
		Update: func(c *Config, v string) {
			switch v {
			case "Debug":
				c.LogLevel = logging.Debug
			case "Info":
				c.LogLevel = logging.Info
			case "Warning":
				c.LogLevel = logging.Warning
			case "Error":
				c.LogLevel = logging.Error
			case "Fatal":
				c.LogLevel = logging.Fatal
			default:
				c.Logger.Warning("invalid Logging param", "value", v)
			}
		},
		Validate: func(c *Config) {
			switch c.LogLevel {
			case logging.Debug, logging.Info, logging.Warning, logging.Error, logging.Fatal:
			default:
				c.LogInvalidField("LogLevel", defaultVerbosity)
				c.LogLevel = defaultVerbosity
			}
		},
	},
	{
		Name:   KeyNumIters,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.NumIters = parseInt(KeyNumIters, v, c) },
		Validate: func(c *Config) {
			if c.NumIters <= 0 {
				c.LogInvalidField(KeyNumIters, defaultNumIters)
				c.NumIters = defaultNumIters
			}
		},
	},
	{
		Name:   KeyScale,
		Type:   typeFloat,
		Update: func(c *Config, v string) { c.Scale = parseFloat(KeyScale, v, c) },
		Validate: func(c *Config) {
			if c.Scale <= 1 {
				c.LogInvalidField(KeyScale, defaultScale)
				c.Scale = defaultScale
			}
		},
	},
	{
		Name:   KeyWindowSize,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.WindowSize = parseInt(KeyWindowSize, v, c) },
		Validate: func(c *Config) {
			if c.WindowSize <= 0 {
				c.LogInvalidField(KeyWindowSize, defaultWindowSize)
				c.WindowSize = defaultWindowSize
			}
		},
	},
	{
		Name:   KeyWorkers,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.Workers = parseInt(KeyWorkers, v, c) },
		Validate: func(c *Config) {
			if c.Workers <= 0 {
				c.LogInvalidField(KeyWorkers, defaultWorkers)
				c.Workers = defaultWorkers
			}
		},
	},
}

func parseInt(n, v string, c *Config) int {
	_v, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("expected integer for param %s", n), "value", v)
	}
	return _v
}

func parseFloat(n, v string, c *Config) float64 {
	_v, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("expected float for param %s", n), "value", v)
	}
	return _v
}
