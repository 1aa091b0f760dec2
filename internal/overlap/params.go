package overlap

import (
	"fmt"
	"math"

	"scrollsplice/internal/frames"
)

// Params are the crop and search parameters, already resolved to pixels.
type Params struct {
	Crop frames.CropBand
	// ExpectedOffset is the prior guess of the overlap between consecutive
	// frames. It centres the search and is the fallback offset.
	ExpectedOffset int
	// MinOverlap rejects candidates that share fewer rows.
	MinOverlap int
	// ApproxDiff is the largest accepted mean absolute channel difference.
	ApproxDiff float64
	// SampleColumns restricts comparison to these columns. Nil compares every
	// column.
	SampleColumns []int
}

// ColumnStride returns every stride-th column of a frame of the given width,
// suitable for Params.SampleColumns. A stride of 1 or less returns nil.
func ColumnStride(width, stride int) []int {
	if stride <= 1 || width <= 0 {
		return nil
	}
	cols := make([]int, 0, (width+stride-1)/stride)
	for x := 0; x < width; x += stride {
		cols = append(cols, x)
	}
	return cols
}

func (p Params) validate(width, height int) error {
	if err := p.Crop.Validate(height); err != nil {
		return err
	}
	scrollable := p.Crop.Scrollable(height)
	if p.ExpectedOffset <= 0 || p.ExpectedOffset >= scrollable {
		return fmt.Errorf("%w: expected offset %d must be in (0, %d)", frames.ErrInvalidParams, p.ExpectedOffset, scrollable)
	}
	if p.MinOverlap < 0 || p.MinOverlap >= scrollable {
		return fmt.Errorf("%w: min overlap %d must be in [0, %d)", frames.ErrInvalidParams, p.MinOverlap, scrollable)
	}
	if math.IsNaN(p.ApproxDiff) || p.ApproxDiff < 0 {
		return fmt.Errorf("%w: approx diff %v must be non-negative", frames.ErrInvalidParams, p.ApproxDiff)
	}
	for _, x := range p.SampleColumns {
		if x < 0 || x >= width {
			return fmt.Errorf("%w: sample column %d outside frame width %d", frames.ErrInvalidParams, x, width)
		}
	}
	if p.SampleColumns != nil && len(p.SampleColumns) == 0 {
		return fmt.Errorf("%w: sample columns is empty", frames.ErrInvalidParams)
	}
	return nil
}
