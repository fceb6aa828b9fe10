package opticalflow

import "errors"

var (
	// ErrInvalidConfig is wrapped by every Config validation failure.
	ErrInvalidConfig = errors.New("invalid tracker config")

	// ErrDegenerateBasis means the polynomial basis matrix for the chosen
	// poly_n/poly_sigma could not be inverted.
	ErrDegenerateBasis = errors.New("degenerate polynomial expansion basis")

	// ErrAliasedFields is returned when an operation that cannot run in
	// place is given the same array as input and output.
	ErrAliasedFields = errors.New("source and destination fields alias")
)
