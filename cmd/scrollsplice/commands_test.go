package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"scrollsplice/internal/testsupport"
)

func TestConfigInitAndValidate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	configPath := writeTestConfig(t, cfg)

	out, _, err := runCLI(t, []string{"config", "validate"}, configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, configPath)

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse an existing file")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("validate sample: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestConfigValidateReportsMissingFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	missing := filepath.Join(t.TempDir(), "absent.toml")
	out, _, err := runCLI(t, []string{"config", "validate"}, missing)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "defaults were used")
}

func TestInvalidConfigFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[stitch]\nnot_a_key = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, []string{"doctor"}, path); err == nil {
		t.Fatal("expected unknown key to fail config load")
	}
}

func TestProbeCommand(t *testing.T) {
	seq := testsupport.NewScroll(t, testsupport.ScrollOptions{Width: 30, Height: 200, Overlaps: []int{50}, Seed: 1}).Frames
	cfg := testsupport.CaptureConfig(t, seq)
	configPath := writeTestConfig(t, cfg)

	out, _, err := runCLI(t, []string{"probe", writeSource(t), "--json"}, configPath)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	var summary probeSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode probe: %v", err)
	}
	if summary.Width != 30 || summary.Height != 200 || summary.FrameCount != 2 {
		t.Fatalf("unexpected probe: %+v", summary)
	}
	if summary.CropTop != 30 || summary.ExpectOffset != 60 || summary.MinOverlap != 30 {
		t.Fatalf("unexpected resolved lengths: %+v", summary)
	}

	out, _, err = runCLI(t, []string{"probe", writeSource(t), "-t"}, configPath)
	if err != nil {
		t.Fatalf("probe -t: %v", err)
	}
	requireContains(t, out, "Expected offset")
	requireContains(t, out, "9 px")
}

func TestDoctorCommand(t *testing.T) {
	seq := testsupport.NewScroll(t, testsupport.ScrollOptions{Width: 4, Height: 10, Overlaps: []int{2}, Seed: 1}).Frames
	cfg := testsupport.CaptureConfig(t, seq)
	configPath := writeTestConfig(t, cfg)

	out, _, err := runCLI(t, []string{"doctor"}, configPath)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "FFmpeg:")
	requireContains(t, out, "History directory:")

	cfg.Media.FFmpegBinary = filepath.Join(t.TempDir(), "missing-ffmpeg")
	configPath = writeTestConfig(t, cfg)
	out, _, err = runCLI(t, []string{"doctor"}, configPath)
	if err == nil {
		t.Fatalf("expected doctor to fail without ffmpeg:\n%s", out)
	}
	requireContains(t, out, "[ERROR]")
}
