package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"scrollsplice/internal/fileutil"
	"scrollsplice/internal/overlap"
	"scrollsplice/internal/panorama"
)

var ErrUnsupportedFormat = errors.New("unsupported report format")

// Parameters are the resolved pixel values a run used.
type Parameters struct {
	CropTop        int     `json:"crop_top" yaml:"crop_top" toml:"crop_top"`
	CropBottom     int     `json:"crop_bottom" yaml:"crop_bottom" toml:"crop_bottom"`
	ExpectedOffset int     `json:"expected_offset" yaml:"expected_offset" toml:"expected_offset"`
	MinOverlap     int     `json:"min_overlap" yaml:"min_overlap" toml:"min_overlap"`
	ApproxDiff     float64 `json:"approx_diff" yaml:"approx_diff" toml:"approx_diff"`
	SeamWidth      int     `json:"seam_width" yaml:"seam_width" toml:"seam_width"`
	Transpose      bool    `json:"transpose" yaml:"transpose" toml:"transpose"`
	ColumnStride   int     `json:"column_stride" yaml:"column_stride" toml:"column_stride"`
	FPS            float64 `json:"fps,omitempty" yaml:"fps,omitempty" toml:"fps,omitempty"`
}

// Meta carries run context that the core packages do not know about.
type Meta struct {
	RunID       string
	Source      string
	Output      string
	CreatedAt   time.Time
	Duration    time.Duration
	OutputBytes int64
	FrameWidth  int
	FrameHeight int
	Parameters  Parameters
}

// Report is the serialized description of one run.
type Report struct {
	RunID          string           `json:"run_id" yaml:"run_id" toml:"run_id"`
	Source         string           `json:"source" yaml:"source" toml:"source"`
	Output         string           `json:"output" yaml:"output" toml:"output"`
	CreatedAt      time.Time        `json:"created_at" yaml:"created_at" toml:"created_at"`
	DurationMS     int64            `json:"duration_ms" yaml:"duration_ms" toml:"duration_ms"`
	FrameWidth     int              `json:"frame_width" yaml:"frame_width" toml:"frame_width"`
	FrameHeight    int              `json:"frame_height" yaml:"frame_height" toml:"frame_height"`
	FrameCount     int              `json:"frame_count" yaml:"frame_count" toml:"frame_count"`
	PanoramaWidth  int              `json:"panorama_width" yaml:"panorama_width" toml:"panorama_width"`
	PanoramaHeight int              `json:"panorama_height" yaml:"panorama_height" toml:"panorama_height"`
	OutputBytes    int64            `json:"output_bytes" yaml:"output_bytes" toml:"output_bytes"`
	Seams          []int            `json:"seams,omitempty" yaml:"seams,omitempty" toml:"seams,omitempty"`
	Parameters     Parameters       `json:"parameters" yaml:"parameters" toml:"parameters"`
	Summary        overlap.Summary  `json:"summary" yaml:"summary" toml:"summary"`
	Pairs          []overlap.Result `json:"pairs" yaml:"pairs" toml:"pairs"`
}

// Build assembles a Report. pano may be nil when assembly never ran.
func Build(meta Meta, results overlap.Results, pano *panorama.Panorama) Report {
	r := Report{
		RunID:       meta.RunID,
		Source:      meta.Source,
		Output:      meta.Output,
		CreatedAt:   meta.CreatedAt.UTC().Truncate(time.Millisecond),
		DurationMS:  meta.Duration.Milliseconds(),
		FrameWidth:  meta.FrameWidth,
		FrameHeight: meta.FrameHeight,
		FrameCount:  len(results) + 1,
		OutputBytes: meta.OutputBytes,
		Parameters:  meta.Parameters,
		Summary:     overlap.Summarize(results),
		Pairs:       append([]overlap.Result(nil), results...),
	}
	if len(results) == 0 {
		r.FrameCount = 0
	}
	if pano != nil {
		r.PanoramaWidth = pano.Width
		r.PanoramaHeight = pano.Height
		r.Seams = append([]int(nil), pano.Seams...)
	}
	return r
}

// Format names a report encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Encode writes r to w in the given format.
func Encode(w io.Writer, r Report, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(r)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Write stores r at path using the encoding implied by its extension.
func Write(path string, r Report) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	if _, err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return Encode(w, r, format)
	}); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
