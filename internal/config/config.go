// Package config holds the stage parameters of the pipeline and loads them
// from an optional TOML file.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/BurntSushi/toml"

	"image-transform-pipeline/internal/algorithms"
)

// DefaultOutputDir is used when neither the file nor the command line name
// an output directory.
const DefaultOutputDir = "resultados"

type SaturationParams struct {
	Percent float64 `toml:"percent"`
}

type ContrastParams struct {
	Alpha float64 `toml:"alpha"`
	Beta  float64 `toml:"beta"`
}

type ResizeParams struct {
	Scale         float64 `toml:"scale"`
	Interpolation string  `toml:"interpolation"`
}

type RotateParams struct {
	Angle float64 `toml:"angle"`
}

type CropParams struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// Config is the complete parameter set of one run.
type Config struct {
	OutputDir string `toml:"output_dir"`

	// Show opens a window with the loaded image before the stages run.
	Show bool `toml:"show"`

	// ContinueOnWriteError logs a failed write and moves on to the next
	// stage instead of aborting the run.
	ContinueOnWriteError bool `toml:"continue_on_write_error"`

	Saturation   SaturationParams `toml:"saturation"`
	Contrast     ContrastParams   `toml:"contrast"`
	ResizeHalf   ResizeParams     `toml:"resize_half"`
	ResizeDouble ResizeParams     `toml:"resize_double"`
	Rotate       RotateParams     `toml:"rotate"`
	Crop         CropParams       `toml:"crop"`
}

// Default returns the parameters of the reference run.
func Default() Config {
	return Config{
		OutputDir:    DefaultOutputDir,
		Saturation:   SaturationParams{Percent: 30},
		Contrast:     ContrastParams{Alpha: 1.2, Beta: 50},
		ResizeHalf:   ResizeParams{Scale: 0.5, Interpolation: "cubic"},
		ResizeDouble: ResizeParams{Scale: 2.0, Interpolation: "linear"},
		Rotate:       RotateParams{Angle: 45},
		Crop:         CropParams{Width: 300, Height: 300},
	}
}

// Load decodes path over the defaults. Keys missing from the file keep their
// default value; unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Validate reports every invalid parameter at once.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.OutputDir) == "" {
		errs = append(errs, errors.New("output_dir must not be empty"))
	}
	if c.Saturation.Percent < -100 {
		errs = append(errs, fmt.Errorf("saturation.percent must be >= -100, got %v", c.Saturation.Percent))
	}
	for name, r := range map[string]ResizeParams{"resize_half": c.ResizeHalf, "resize_double": c.ResizeDouble} {
		if r.Scale <= 0 || math.IsNaN(r.Scale) || math.IsInf(r.Scale, 0) {
			errs = append(errs, fmt.Errorf("%s.scale must be a positive finite number, got %v", name, r.Scale))
		}
		if _, err := algorithms.ParseInterpolation(r.Interpolation); err != nil {
			errs = append(errs, fmt.Errorf("%s.interpolation: %w", name, err))
		}
	}
	if c.Crop.Width <= 0 || c.Crop.Height <= 0 {
		errs = append(errs, fmt.Errorf("crop size must be positive, got %dx%d", c.Crop.Width, c.Crop.Height))
	}

	return errors.Join(errs...)
}
