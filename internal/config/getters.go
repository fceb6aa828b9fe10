package config

import "time"

// GetScale returns the scale value or the default.
func (c *TuningConfig) GetScale() float64 {
	if c.Scale == nil {
		return 0.5
	}
	return *c.Scale
}

// GetLevels returns the levels value or the default.
func (c *TuningConfig) GetLevels() int {
	if c.Levels == nil {
		return 100
	}
	return *c.Levels
}

// GetWindowSize returns the window_size value or the default.
func (c *TuningConfig) GetWindowSize() int {
	if c.WindowSize == nil {
		return 5
	}
	return *c.WindowSize
}

// GetIterations returns the iterations value or the default.
func (c *TuningConfig) GetIterations() int {
	if c.Iterations == nil {
		return 1
	}
	return *c.Iterations
}

// GetPolyN returns the poly_n value or the default.
func (c *TuningConfig) GetPolyN() int {
	if c.PolyN == nil {
		return 5
	}
	return *c.PolyN
}

// GetPolySigma returns the poly_sigma value, or 0 to derive it from poly_n.
func (c *TuningConfig) GetPolySigma() float64 {
	if c.PolySigma == nil {
		return 0
	}
	return *c.PolySigma
}

func (c *TuningConfig) GetVerbose() bool {
	return c.Verbose != nil && *c.Verbose
}

func (c *TuningConfig) GetFillGaps() bool {
	return c.FillGaps != nil && *c.FillGaps
}

func (c *TuningConfig) GetUseInitialFlow() bool {
	return c.UseInitialFlow != nil && *c.UseInitialFlow
}

// GetSpacing returns the gap-fill block spacing or the default.
func (c *TuningConfig) GetSpacing() int {
	if c.Spacing == nil {
		return 8
	}
	return *c.Spacing
}

// GetMinFracBinsForAvg returns the minimum valid fraction per block or the default.
func (c *TuningConfig) GetMinFracBinsForAvg() float32 {
	if c.MinFracBinsForAvg == nil {
		return 0.25
	}
	return *c.MinFracBinsForAvg
}

// GetIDWLowResPower returns the block-level IDW power or the default.
func (c *TuningConfig) GetIDWLowResPower() float64 {
	if c.IDWLowResPower == nil {
		return 2
	}
	return *c.IDWLowResPower
}

// GetIDWHighResPower returns the pixel-level IDW power or the default.
func (c *TuningConfig) GetIDWHighResPower() float64 {
	if c.IDWHighResPower == nil {
		return 2
	}
	return *c.IDWHighResPower
}

// GetGridSpacingM returns the grid spacing in metres or the default.
func (c *TuningConfig) GetGridSpacingM() float64 {
	if c.GridSpacingM == nil {
		return 1
	}
	return *c.GridSpacingM
}

// GetTimeStep parses and returns the interval between frames.
func (c *TuningConfig) GetTimeStep() time.Duration {
	if c.TimeStep == nil || *c.TimeStep == "" {
		return time.Second
	}
	d, err := time.ParseDuration(*c.TimeStep)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}
