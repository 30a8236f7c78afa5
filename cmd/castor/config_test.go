package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if c.Units != "mm" {
		t.Errorf("units = %q, want mm", c.Units)
	}
	if c.Tolerances.Linear != 1e-6 {
		t.Errorf("linear tolerance = %g, want 1e-6", c.Tolerances.Linear)
	}
	if c.Tolerances.ShapeOps != 0.05 {
		t.Errorf("shapeops tolerance = %g, want 0.05", c.Tolerances.ShapeOps)
	}
	if c.MaxDeviation != 0.5 {
		t.Errorf("max deviation = %g, want 0.5", c.MaxDeviation)
	}
	if c.EvalTimeout != "5s" {
		t.Errorf("eval timeout = %q, want 5s", c.EvalTimeout)
	}
}

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		check   func(t *testing.T, c Config)
	}{
		{
			name: "empty document keeps defaults",
			yaml: "",
			check: func(t *testing.T, c Config) {
				if c.MaxDeviation != 0.5 {
					t.Errorf("max deviation = %g, want default 0.5", c.MaxDeviation)
				}
			},
		},
		{
			name: "override deviation",
			yaml: "max_deviation: 0.1\n",
			check: func(t *testing.T, c Config) {
				if c.MaxDeviation != 0.1 {
					t.Errorf("max deviation = %g, want 0.1", c.MaxDeviation)
				}
				if c.Tolerances.ShapeOps != 0.05 {
					t.Errorf("shapeops = %g, want default 0.05", c.Tolerances.ShapeOps)
				}
			},
		},
		{
			name: "override tolerances",
			yaml: "tolerances:\n  linear: 1e-7\n  shapeops: 0.02\n",
			check: func(t *testing.T, c Config) {
				if c.linearTolerance().Linear != 1e-7 {
					t.Errorf("linear = %g, want 1e-7", c.linearTolerance().Linear)
				}
				if c.shapeOpsTolerance().Linear != 0.02 {
					t.Errorf("shapeops = %g, want 0.02", c.shapeOpsTolerance().Linear)
				}
			},
		},
		{
			name: "override eval timeout",
			yaml: "eval_timeout: 250ms\n",
			check: func(t *testing.T, c Config) {
				if got := c.evalTimeout(); got != 250*time.Millisecond {
					t.Errorf("eval timeout = %v, want 250ms", got)
				}
			},
		},
		{
			name:    "unsupported units",
			yaml:    "units: inch\n",
			wantErr: true,
		},
		{
			name:    "negative deviation",
			yaml:    "max_deviation: -1\n",
			wantErr: true,
		},
		{
			name:    "malformed eval timeout",
			yaml:    "eval_timeout: fast\n",
			wantErr: true,
		},
		{
			name:    "negative eval timeout",
			yaml:    "eval_timeout: -2s\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			yaml:    "max_deviation: [\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseConfig([]byte(tt.yaml))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && tt.check != nil {
				tt.check(t, c)
			}
		})
	}
}

func TestLoadConfigMissingExplicitPath(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("explicit missing config path should fail")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "castor.yaml")
	if err := os.WriteFile(path, []byte("max_deviation: 0.25\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.MaxDeviation != 0.25 {
		t.Errorf("max deviation = %g, want 0.25", c.MaxDeviation)
	}
}
