package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/echoflow/internal/opticalflow"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig holds the tracker and velocity tuning parameters. Every
// field is optional; the Get* methods supply defaults for omitted fields,
// so partial files are safe.
type TuningConfig struct {
	// Pyramid and refinement
	Scale      *float64 `json:"scale,omitempty"`
	Levels     *int     `json:"levels,omitempty"`
	WindowSize *int     `json:"window_size,omitempty"`
	Iterations *int     `json:"iterations,omitempty"`
	PolyN      *int     `json:"poly_n,omitempty"`
	PolySigma  *float64 `json:"poly_sigma,omitempty"`
	Verbose    *bool    `json:"verbose,omitempty"`

	// Preprocessing
	Background *float32 `json:"background,omitempty"`
	Threshold  *float32 `json:"threshold,omitempty"`
	Gain       *float32 `json:"gain,omitempty"`

	// Gap filling
	FillGaps          *bool    `json:"fill_gaps,omitempty"`
	Spacing           *int     `json:"spacing,omitempty"`
	MinFracBinsForAvg *float32 `json:"min_frac_bins_for_avg,omitempty"`
	IDWLowResPower    *float64 `json:"idw_low_res_power,omitempty"`
	IDWHighResPower   *float64 `json:"idw_high_res_power,omitempty"`

	UseInitialFlow *bool `json:"use_initial_flow,omitempty"`

	// Physical units
	GridSpacingM *float64 `json:"grid_spacing_m,omitempty"`
	TimeStep     *string  `json:"time_step,omitempty"` // duration string like "5m"
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrFloat32(v float32) *float32 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrInt(v int) *int             { return &v }
func ptrString(v string) *string    { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a config with every defaulted field set
// explicitly. Background, Threshold and Gain stay nil.
func DefaultTuningConfig() *TuningConfig {
	return &TuningConfig{
		Scale:             ptrFloat64(opticalflow.DefaultScale),
		Levels:            ptrInt(opticalflow.DefaultLevels),
		WindowSize:        ptrInt(opticalflow.DefaultWindowSize),
		Iterations:        ptrInt(opticalflow.DefaultIterations),
		PolyN:             ptrInt(opticalflow.DefaultPolyN),
		PolySigma:         ptrFloat64(0),
		Verbose:           ptrBool(false),
		FillGaps:          ptrBool(false),
		Spacing:           ptrInt(8),
		MinFracBinsForAvg: ptrFloat32(0.25),
		IDWLowResPower:    ptrFloat64(2),
		IDWHighResPower:   ptrFloat64(2),
		UseInitialFlow:    ptrBool(false),
		GridSpacingM:      ptrFloat64(1),
		TimeStep:          ptrString("1s"),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file must have a .json extension and be under 1 MiB.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents up to the repository root. Panics on failure;
// intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the values that are set.
func (c *TuningConfig) Validate() error {
	if c.Scale != nil && !(*c.Scale > 0 && *c.Scale < 1) {
		return fmt.Errorf("scale must be in (0, 1), got %g", *c.Scale)
	}
	if c.Levels != nil && *c.Levels < 0 {
		return fmt.Errorf("levels must be non-negative, got %d", *c.Levels)
	}
	if c.WindowSize != nil && (*c.WindowSize < 3 || *c.WindowSize%2 == 0) {
		return fmt.Errorf("window_size must be odd and at least 3, got %d", *c.WindowSize)
	}
	if c.Iterations != nil && *c.Iterations < 1 {
		return fmt.Errorf("iterations must be positive, got %d", *c.Iterations)
	}
	if c.PolyN != nil && *c.PolyN < 1 {
		return fmt.Errorf("poly_n must be positive, got %d", *c.PolyN)
	}
	if c.Spacing != nil && *c.Spacing < 1 {
		return fmt.Errorf("spacing must be positive, got %d", *c.Spacing)
	}
	if c.MinFracBinsForAvg != nil && (*c.MinFracBinsForAvg < 0 || *c.MinFracBinsForAvg > 1) {
		return fmt.Errorf("min_frac_bins_for_avg must be between 0 and 1, got %g", *c.MinFracBinsForAvg)
	}
	if c.IDWLowResPower != nil && *c.IDWLowResPower < 0 {
		return fmt.Errorf("idw_low_res_power must be non-negative, got %g", *c.IDWLowResPower)
	}
	if c.IDWHighResPower != nil && *c.IDWHighResPower < 0 {
		return fmt.Errorf("idw_high_res_power must be non-negative, got %g", *c.IDWHighResPower)
	}
	if c.GridSpacingM != nil && !(*c.GridSpacingM > 0) {
		return fmt.Errorf("grid_spacing_m must be positive, got %g", *c.GridSpacingM)
	}
	if c.TimeStep != nil && *c.TimeStep != "" {
		d, err := time.ParseDuration(*c.TimeStep)
		if err != nil {
			return fmt.Errorf("invalid time_step '%s': %w", *c.TimeStep, err)
		}
		if d <= 0 {
			return fmt.Errorf("time_step must be positive, got %s", *c.TimeStep)
		}
	}
	return nil
}

// TrackerConfig builds the tracker configuration for a rows x cols grid.
func (c *TuningConfig) TrackerConfig(rows, cols int) opticalflow.Config {
	return opticalflow.Config{
		Rows:       rows,
		Cols:       cols,
		Scale:      c.GetScale(),
		Levels:     c.GetLevels(),
		WindowSize: c.GetWindowSize(),
		Iterations: c.GetIterations(),
		PolyN:      c.GetPolyN(),
		PolySigma:  c.GetPolySigma(),
		Verbose:    c.GetVerbose(),
	}
}

// VelocityOptions builds the per-call velocity options.
func (c *TuningConfig) VelocityOptions() opticalflow.VelocityOptions {
	return opticalflow.VelocityOptions{
		UseInitialFlow:    c.GetUseInitialFlow(),
		Background:        c.Background,
		Threshold:         c.Threshold,
		Gain:              c.Gain,
		FillGaps:          c.GetFillGaps(),
		Spacing:           c.GetSpacing(),
		MinFracBinsForAvg: c.GetMinFracBinsForAvg(),
		IDWLowResPower:    c.GetIDWLowResPower(),
		IDWHighResPower:   c.GetIDWHighResPower(),
	}
}
