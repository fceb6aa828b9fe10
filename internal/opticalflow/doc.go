// Package opticalflow estimates dense motion between two scalar fields.
//
// The estimator fits a local quadratic surface to every pixel of both fields
// (polynomial expansion), builds a 2x2 normal-equations system per pixel from
// the difference between the two expansions displaced by the current flow,
// box-filters those systems over a window and solves them. This is repeated
// for a few iterations on each level of a Gaussian pyramid, coarsest first.
//
// Tracker is the entry point. It is configured once for a grid size and is
// immutable afterwards, so one Tracker may serve concurrent calls; every
// call allocates its own scratch space.
//
// DetermineVelocities wraps TrackFields with the radar-echo preprocessing
// (background substitution, threshold, gain) and optional gap filling.
// AdvectField moves a field along a velocity field to forecast it.
package opticalflow
