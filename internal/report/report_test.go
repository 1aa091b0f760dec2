package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"scrollsplice/internal/frames"
	"scrollsplice/internal/overlap"
	"scrollsplice/internal/panorama"
)

func sampleReport() Report {
	results := overlap.Results{
		overlap.Matched(0, 20, 0),
		overlap.Fallback(1, 30, 12, 4.5),
	}
	pano := &panorama.Panorama{Frame: frames.NewFrame(100, 250), Seams: []int{100, 180}}
	meta := Meta{
		RunID:       "0b7e4a52-1f3f-4f0e-9a7c-20b1d5d1c0aa",
		Source:      "/captures/scroll.mp4",
		Output:      "/captures/scroll.png",
		CreatedAt:   time.Date(2026, 3, 1, 12, 30, 0, 123456789, time.FixedZone("X", 3600)),
		Duration:    1500 * time.Millisecond,
		OutputBytes: 2048,
		FrameWidth:  100,
		FrameHeight: 100,
		Parameters:  Parameters{ExpectedOffset: 30, MinOverlap: 15, ApproxDiff: 1, ColumnStride: 1},
	}
	return Build(meta, results, pano)
}

func TestBuild(t *testing.T) {
	r := sampleReport()
	if r.FrameCount != 3 {
		t.Fatalf("frame count = %d, want 3", r.FrameCount)
	}
	if r.PanoramaWidth != 100 || r.PanoramaHeight != 250 {
		t.Fatalf("panorama size = %dx%d", r.PanoramaWidth, r.PanoramaHeight)
	}
	if diff := cmp.Diff([]int{100, 180}, r.Seams); diff != "" {
		t.Fatalf("seams mismatch (-want +got):\n%s", diff)
	}
	if r.Summary.Fallbacks != 1 || r.Summary.Matched != 1 {
		t.Fatalf("unexpected summary: %+v", r.Summary)
	}
	if r.DurationMS != 1500 {
		t.Fatalf("duration = %d", r.DurationMS)
	}
	if r.CreatedAt.Location() != time.UTC || r.CreatedAt.Nanosecond() != 123000000 {
		t.Fatalf("created_at not normalized: %v", r.CreatedAt)
	}
}

func TestBuildWithoutPanorama(t *testing.T) {
	r := Build(Meta{}, nil, nil)
	if r.FrameCount != 0 || r.PanoramaHeight != 0 || r.Seams != nil {
		t.Fatalf("unexpected empty report: %+v", r)
	}
}

func TestEncodeDecodesBack(t *testing.T) {
	want := sampleReport()
	tests := []struct {
		format Format
		decode func([]byte, *Report) error
	}{
		{FormatJSON, func(b []byte, r *Report) error { return json.Unmarshal(b, r) }},
		{FormatYAML, func(b []byte, r *Report) error { return yaml.Unmarshal(b, r) }},
		{FormatTOML, func(b []byte, r *Report) error { return toml.Unmarshal(b, r) }},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, want, tt.format); err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if !strings.Contains(buf.String(), "fallback") {
				t.Fatalf("status should be encoded by name:\n%s", buf.String())
			}
			var got Report
			if err := tt.decode(buf.Bytes(), &got); err != nil {
				t.Fatalf("decode: %v\n%s", err, buf.String())
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("report mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteByExtension(t *testing.T) {
	dir := t.TempDir()
	r := sampleReport()
	for _, name := range []string{"run.json", "run.yaml", "run.yml", "run.toml"} {
		path := filepath.Join(dir, name)
		if err := Write(path, r); err != nil {
			t.Fatalf("Write(%s): %v", name, err)
		}
		data, err := os.ReadFile(path)
		if err != nil || len(data) == 0 {
			t.Fatalf("expected %s to be written: %v", name, err)
		}
	}
	if err := Write(filepath.Join(dir, "run.xml"), r); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
