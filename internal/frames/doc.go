// Package frames holds the in-memory pixel model shared by the overlap
// estimator and the panorama assembler.
//
// A Frame is a packed, row-major RGB grid with 8-bit channels. A Sequence is
// the ordered list of frames decoded from one video; every frame in a valid
// sequence shares the same dimensions. Frames are treated as immutable once
// built, so helpers here may hand out sub-slices of a decoder buffer instead
// of copying it.
//
// The package also owns the sentinel errors for structural problems
// (insufficient frames, dimension mismatch, crop band, offsets) so callers can
// classify failures with errors.Is regardless of which stage raised them.
package frames
