package history

import (
	"time"

	"scrollsplice/internal/overlap"
	"scrollsplice/internal/report"
)

// Run is one recorded stitch.
type Run struct {
	ID             string
	Source         string
	Output         string
	CreatedAt      time.Time
	FrameWidth     int
	FrameHeight    int
	FrameCount     int
	PanoramaWidth  int
	PanoramaHeight int
	CropTop        int
	CropBottom     int
	ExpectedOffset int
	MinOverlap     int
	ApproxDiff     float64
	Transpose      bool
	FallbackCount  int
	OutputBytes    int64
	Duration       time.Duration
	// Pairs is only populated by Get.
	Pairs []overlap.Result
}

// RunFromReport converts a finished report into a history row.
func RunFromReport(r report.Report) Run {
	return Run{
		ID:             r.RunID,
		Source:         r.Source,
		Output:         r.Output,
		CreatedAt:      r.CreatedAt,
		FrameWidth:     r.FrameWidth,
		FrameHeight:    r.FrameHeight,
		FrameCount:     r.FrameCount,
		PanoramaWidth:  r.PanoramaWidth,
		PanoramaHeight: r.PanoramaHeight,
		CropTop:        r.Parameters.CropTop,
		CropBottom:     r.Parameters.CropBottom,
		ExpectedOffset: r.Parameters.ExpectedOffset,
		MinOverlap:     r.Parameters.MinOverlap,
		ApproxDiff:     r.Parameters.ApproxDiff,
		Transpose:      r.Parameters.Transpose,
		FallbackCount:  r.Summary.Fallbacks,
		OutputBytes:    r.OutputBytes,
		Duration:       time.Duration(r.DurationMS) * time.Millisecond,
		Pairs:          append([]overlap.Result(nil), r.Pairs...),
	}
}
