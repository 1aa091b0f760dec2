package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"scrollsplice/internal/pipeline"
	"scrollsplice/internal/report"
	"scrollsplice/internal/testsupport"
)

func stitchFixture(t *testing.T, opts ...testsupport.ConfigOption) (configPath, source, output string) {
	t.Helper()
	scroll := testsupport.NewScroll(t, testsupport.ScrollOptions{
		Width: 16, Height: 50, CropTop: 5, CropBottom: 5,
		Overlaps: []int{18, 22},
		Seed:     21,
	})
	cfg := testsupport.CaptureConfig(t, scroll.Frames, opts...)
	return writeTestConfig(t, cfg), writeSource(t), filepath.Join(t.TempDir(), "pano.png")
}

func TestStitchCommandJSON(t *testing.T) {
	configPath, source, output := stitchFixture(t, testsupport.WithPixels(5, 5, 20, 8))

	out, _, err := runCLI(t, []string{"stitch", source, "-o", output, "--json"}, configPath)
	if err != nil {
		t.Fatalf("stitch: %v", err)
	}
	var rep report.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	offsets := make([]int, len(rep.Pairs))
	for i, p := range rep.Pairs {
		offsets[i] = p.Offset
	}
	if diff := cmp.Diff([]int{18, 22}, offsets); diff != "" {
		t.Fatalf("offsets mismatch (-want +got):\n%s", diff)
	}
	if rep.Output != output || rep.PanoramaHeight != 50+(40-18)+(40-22) {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("expected panorama: %v", err)
	}
}

func TestStitchCommandFlagsOverrideConfig(t *testing.T) {
	// The config keeps the default fractions; the flags carry the pixel
	// values that match the synthetic frames.
	configPath, source, output := stitchFixture(t)

	out, _, err := runCLI(t, []string{
		"stitch", source, "-o", output,
		"--crop-top", "5", "--crop-bottom", "5",
		"--expect-offset", "20", "--min-overlap", "8",
		"--seam-width", "1", "--column-stride", "2",
	}, configPath)
	if err != nil {
		t.Fatalf("stitch: %v", err)
	}
	requireContains(t, out, "Wrote "+output)
	requireContains(t, out, "2 matched, 0 fallback")
}

func TestStitchCommandRejectsInvalidFlags(t *testing.T) {
	configPath, source, output := stitchFixture(t)

	_, _, err := runCLI(t, []string{"stitch", source, "-o", output, "--approx-diff=-1"}, configPath)
	if !errors.Is(err, pipeline.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Fatal("no output may be written for invalid flags")
	}
}

func TestStitchCommandWritesReportAndHistory(t *testing.T) {
	configPath, source, output := stitchFixture(t, testsupport.WithPixels(5, 5, 20, 8))
	reportPath := filepath.Join(t.TempDir(), "run.yaml")

	if _, _, err := runCLI(t, []string{"stitch", source, "-o", output, "--report", reportPath}, configPath); err != nil {
		t.Fatalf("stitch: %v", err)
	}
	if _, err := os.Stat(reportPath); err != nil {
		t.Fatalf("expected report: %v", err)
	}

	out, _, err := runCLI(t, []string{"history", "list"}, configPath)
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, out, "capture.mp4")

	listJSON, _, err := runCLI(t, []string{"history", "list", "--json"}, configPath)
	if err != nil {
		t.Fatalf("history list --json: %v", err)
	}
	var runs []struct{ ID string }
	if err := json.Unmarshal([]byte(listJSON), &runs); err != nil || len(runs) != 1 {
		t.Fatalf("expected one run, got %v (%v)", runs, err)
	}

	out, _, err = runCLI(t, []string{"history", "show", runs[0].ID[:8]}, configPath)
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, out, runs[0].ID)
	requireContains(t, out, "matched")

	if _, _, err := runCLI(t, []string{"history", "show", "zzzz"}, configPath); err == nil {
		t.Fatal("expected unknown run id to fail")
	}
}

func TestStitchFlagDefaultsMatchConfig(t *testing.T) {
	cmd := newStitchCommand(newCommandContext(new(string), new(bool)))
	want := map[string]string{
		"crop-top":      "0.15",
		"crop-bottom":   "0.15",
		"expect-offset": "0.3",
		"min-overlap":   "0.15",
		"approx-diff":   "1",
		"column-stride": "1",
		"seam-width":    "0",
	}
	for name, def := range want {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			t.Fatalf("missing flag --%s", name)
		}
		if flag.DefValue != def {
			t.Fatalf("--%s default = %q, want %q", name, flag.DefValue, def)
		}
	}
}
