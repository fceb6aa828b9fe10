// Package array owns the contiguous buffers the motion engine works on.
//
// Array1 and Array2 are plain owned slices with row-major indexing. Both
// track a logical size separately from the backing allocation so that one
// allocation sized for the finest pyramid level can be reused for every
// coarser level without copying (see Array2.HackSize).
//
// Nothing in this package is safe for concurrent mutation.
package array
