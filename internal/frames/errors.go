package frames

import "errors"

var (
	ErrInsufficientFrames = errors.New("insufficient frames")
	ErrDimensionMismatch  = errors.New("dimension mismatch")
	ErrInvalidCropBand    = errors.New("invalid crop band")
	ErrInvalidOffsets     = errors.New("invalid offsets")
	ErrInvalidParams      = errors.New("invalid parameters")
	ErrTruncatedBuffer    = errors.New("truncated frame buffer")
)
