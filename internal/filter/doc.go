// Package filter implements separable Gaussian smoothing of scalar fields.
//
// Kernels follow the usual conventions: an odd size, or 0 to derive the size
// from sigma; a sigma, or <= 0 to derive it from the size. Borders replicate
// the nearest sample. Both passes run in place using a padded scratch line,
// so the input and output may be the same array.
package filter
