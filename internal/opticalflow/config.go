package opticalflow

import "fmt"

// Engine defaults.
const (
	DefaultScale      = 0.5
	DefaultLevels     = 100
	DefaultWindowSize = 5
	DefaultIterations = 1
	DefaultPolyN      = 5

	// minLevelSize is the shortest dimension allowed at the coarsest level.
	minLevelSize = 32
)

// Config is the construction-time configuration of a Tracker.
type Config struct {
	Rows int
	Cols int

	// Scale is the per-level size ratio of the pyramid, in (0, 1).
	Scale float64
	// Levels caps the number of coarser levels. The minimum level size
	// may reduce it further.
	Levels int
	// WindowSize is the side of the box window the per-pixel systems are
	// averaged over.
	WindowSize int
	// Iterations is the number of refinement passes per level.
	Iterations int
	// PolyN is the half-width of the polynomial expansion neighbourhood.
	PolyN int
	// PolySigma weights the expansion neighbourhood; <= 0 derives
	// 0.3*PolyN.
	PolySigma float64

	// Verbose logs the pyramid plan for every tracking call.
	Verbose bool
}

// DefaultConfig returns the engine defaults for a rows x cols grid.
func DefaultConfig(rows, cols int) Config {
	return Config{
		Rows:       rows,
		Cols:       cols,
		Scale:      DefaultScale,
		Levels:     DefaultLevels,
		WindowSize: DefaultWindowSize,
		Iterations: DefaultIterations,
		PolyN:      DefaultPolyN,
	}
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	switch {
	case c.Rows <= 0 || c.Cols <= 0:
		return fmt.Errorf("%w: grid %dx%d must be non-empty", ErrInvalidConfig, c.Rows, c.Cols)
	case !(c.Scale > 0 && c.Scale < 1):
		return fmt.Errorf("%w: scale %g must be in (0, 1)", ErrInvalidConfig, c.Scale)
	case c.Levels < 0:
		return fmt.Errorf("%w: levels %d must be non-negative", ErrInvalidConfig, c.Levels)
	case c.WindowSize < 3 || c.WindowSize%2 == 0:
		return fmt.Errorf("%w: window size %d must be odd and at least 3", ErrInvalidConfig, c.WindowSize)
	case c.Iterations < 1:
		return fmt.Errorf("%w: iterations %d must be positive", ErrInvalidConfig, c.Iterations)
	case c.PolyN < 1:
		return fmt.Errorf("%w: poly_n %d must be positive", ErrInvalidConfig, c.PolyN)
	}
	return nil
}
