package pipeline

import (
	"math"
	"path/filepath"
	"strings"

	"scrollsplice/internal/config"
	"scrollsplice/internal/frames"
	"scrollsplice/internal/overlap"
)

// ResolvePixels converts a configured length to pixels: values below 1 are
// fractions of height (truncated), anything else is taken as a pixel count.
func ResolvePixels(value float64, height int) int {
	if value < 1 {
		return int(math.Floor(value * float64(height)))
	}
	return int(value)
}

// Resolved holds the stitch lengths in pixels for a given frame height.
type Resolved struct {
	Crop           frames.CropBand
	ExpectedOffset int
	MinOverlap     int
	ApproxDiff     float64
}

// Resolve applies ResolvePixels to every length in s.
func Resolve(s config.Stitch, height int) Resolved {
	return Resolved{
		Crop: frames.CropBand{
			Top:    ResolvePixels(s.CropTop, height),
			Bottom: ResolvePixels(s.CropBottom, height),
		},
		ExpectedOffset: ResolvePixels(s.ExpectOffset, height),
		MinOverlap:     ResolvePixels(s.MinOverlap, height),
		ApproxDiff:     s.ApproxDiff,
	}
}

// Params returns the estimator parameters for frames of the given width.
func (r Resolved) Params(width, columnStride int) overlap.Params {
	return overlap.Params{
		Crop:           r.Crop,
		ExpectedOffset: r.ExpectedOffset,
		MinOverlap:     r.MinOverlap,
		ApproxDiff:     r.ApproxDiff,
		SampleColumns:  overlap.ColumnStride(width, columnStride),
	}
}

// DefaultOutput names the panorama after the source, as a PNG in the
// working directory.
func DefaultOutput(source string) string {
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		stem = "panorama"
	}
	return stem + ".png"
}
