// Package config holds the detection tolerances and runtime settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v2"

	"github.com/pdf2tree/go/internal/logger"
)

var Logger = logger.GetLogger("config")

// ErrNegativeWidth is returned by Validate for a negative tolerance.
var ErrNegativeWidth = errors.New("config: width must not be negative")

type Config struct {
	// MaxStrokeWidth is the thickness below which a filled rectangle is a line.
	MaxStrokeWidth float64 `yaml:"max_stroke_width"`
	// MaxGapWidth is the distance within which lines still touch.
	MaxGapWidth float64 `yaml:"max_gap_width"`

	// Workers bounds the pages processed at once; 0 means one per CPU.
	Workers int    `yaml:"workers"`
	Addr    string `yaml:"addr"`

	// CleanText normalizes fragment text in the output. Fragments are placed
	// either way.
	CleanText bool `yaml:"clean_text"`
}

func Default() Config {
	return Config{
		MaxStrokeWidth: 1,
		MaxGapWidth:    0.1,
		Workers:        runtime.NumCPU(),
		Addr:           ":8080",
	}
}

// Load reads a YAML file on top of Default. Fields missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	Logger.Debug("loaded", "path", path, "max_stroke_width", cfg.MaxStrokeWidth, "max_gap_width", cfg.MaxGapWidth)
	return cfg, nil
}

func (c Config) Validate() error {
	if c.MaxStrokeWidth < 0 {
		return fmt.Errorf("%w: max_stroke_width=%v", ErrNegativeWidth, c.MaxStrokeWidth)
	}
	if c.MaxGapWidth < 0 {
		return fmt.Errorf("%w: max_gap_width=%v", ErrNegativeWidth, c.MaxGapWidth)
	}
	return nil
}

// WorkerLimit returns Workers, or the CPU count when it is not positive.
func (c Config) WorkerLimit() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}
