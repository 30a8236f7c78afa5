package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/castorlab/castor/pkg/base"
	"github.com/castorlab/castor/pkg/engine"
)

// Config is the project configuration loaded from castor.yaml. All
// fields are optional; zero values fall back to kernel defaults.
type Config struct {
	// Units is informational; the kernel never converts ("mm" only).
	Units string `yaml:"units"`

	Tolerances struct {
		// Linear is the geometric predicate epsilon.
		Linear float64 `yaml:"linear"`
		// ShapeOps is the boolean pipeline epsilon.
		ShapeOps float64 `yaml:"shapeops"`
	} `yaml:"tolerances"`

	// MaxDeviation bounds the tessellation chord error in mm.
	MaxDeviation float64 `yaml:"max_deviation"`

	// EvalTimeout bounds a single design evaluation, as a Go duration
	// string such as "5s" or "500ms".
	EvalTimeout string `yaml:"eval_timeout"`
}

// DefaultConfig returns the kernel defaults.
func DefaultConfig() Config {
	var c Config
	c.Units = "mm"
	c.Tolerances.Linear = base.DefaultTolerance().Linear
	c.Tolerances.ShapeOps = base.DefaultShapeOpsTolerance
	c.MaxDeviation = base.DefaultTessellationTolerance
	c.EvalTimeout = engine.DefaultEvalTimeout.String()
	return c
}

// LoadConfig reads a castor.yaml file. With an empty path it looks for
// ./castor.yaml and silently falls back to defaults when absent; an
// explicit path must exist.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = "castor.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	return ParseConfig(data)
}

// ParseConfig decodes YAML on top of the defaults.
func ParseConfig(data []byte) (Config, error) {
	c := DefaultConfig()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if c.Units != "mm" {
		return Config{}, fmt.Errorf("unsupported units %q, only mm is supported", c.Units)
	}
	if c.Tolerances.Linear <= 0 || c.Tolerances.ShapeOps <= 0 || c.MaxDeviation <= 0 {
		return Config{}, fmt.Errorf("tolerances and max_deviation must be positive")
	}
	if d, err := time.ParseDuration(c.EvalTimeout); err != nil || d <= 0 {
		return Config{}, fmt.Errorf("eval_timeout must be a positive duration, got %q", c.EvalTimeout)
	}
	return c, nil
}

// linearTolerance returns the configured predicate tolerance.
func (c Config) linearTolerance() base.Tolerance {
	t := base.DefaultTolerance()
	t.Linear = c.Tolerances.Linear
	return t
}

// shapeOpsTolerance returns the configured boolean tolerance.
func (c Config) shapeOpsTolerance() base.Tolerance {
	t := base.DefaultTolerance()
	t.Linear = c.Tolerances.ShapeOps
	return t
}

// evalTimeout returns the configured evaluation budget. ParseConfig has
// already validated the duration string.
func (c Config) evalTimeout() time.Duration {
	d, err := time.ParseDuration(c.EvalTimeout)
	if err != nil {
		return engine.DefaultEvalTimeout
	}
	return d
}
