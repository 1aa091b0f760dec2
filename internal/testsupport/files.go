package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"scrollsplice/internal/config"
	"scrollsplice/internal/frames"
)

// WriteScript writes an executable shell script at path.
func WriteScript(t testing.TB, path, body string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script %s: %v", path, err)
	}
}

// WritePacked stores seq as consecutive packed rgb24 frames, the layout
// ffmpeg's rawvideo muxer produces.
func WritePacked(t testing.TB, path string, seq frames.Sequence) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	for i, fr := range seq {
		if _, err := f.Write(fr.Pix); err != nil {
			t.Fatalf("write frame %d: %v", i, err)
		}
	}
}

// WithCapture installs stub ffprobe and ffmpeg binaries that describe and
// decode seq, and points the config at them. The source path passed to the
// pipeline is ignored by the stubs.
func WithCapture(seq frames.Sequence) ConfigOption {
	return func(b *configBuilder) {
		if len(seq) == 0 {
			b.t.Fatalf("capture needs at least one frame")
		}
		dir := filepath.Join(b.baseDir, "capture")
		raw := filepath.Join(dir, "frames.rgb")
		WritePacked(b.t, raw, seq)

		probe := fmt.Sprintf(`{"streams":[{"index":0,"codec_type":"video","codec_name":"rawvideo","width":%d,"height":%d,"nb_frames":"%d","avg_frame_rate":"30/1"}],"format":{"filename":"capture","nb_streams":1,"size":"%d"}}`,
			seq[0].Width, seq[0].Height, len(seq), len(seq)*len(seq[0].Pix))
		probePath := filepath.Join(dir, "ffprobe")
		ffmpegPath := filepath.Join(dir, "ffmpeg")
		WriteScript(b.t, probePath, "cat <<'JSON'\n"+probe+"\nJSON\n")
		WriteScript(b.t, ffmpegPath, "cat '"+raw+"'\n")

		b.cfg.Media.FFprobeBinary = probePath
		b.cfg.Media.FFmpegBinary = ffmpegPath
	}
}

// CaptureConfig is NewConfig with WithCapture applied first.
func CaptureConfig(t testing.TB, seq frames.Sequence, opts ...ConfigOption) *config.Config {
	t.Helper()
	return NewConfig(t, append([]ConfigOption{WithCapture(seq)}, opts...)...)
}
