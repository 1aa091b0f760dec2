package ffprobe

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

const sampleJSON = `{
  "streams": [
    {"index": 0, "codec_type": "audio", "codec_name": "aac"},
    {"index": 1, "codec_type": "video", "codec_name": "h264", "width": 1080, "height": 2340,
     "pix_fmt": "yuv420p", "avg_frame_rate": "30000/1001", "duration": "10.0", "nb_frames": "299"}
  ],
  "format": {"filename": "scroll.mp4", "nb_streams": 2, "duration": "10.01", "size": "4096", "format_name": "mov,mp4"}
}`

func TestParseAndVideoStream(t *testing.T) {
	result, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	video, err := result.VideoStream()
	if err != nil {
		t.Fatalf("VideoStream: %v", err)
	}
	if video.Index != 1 || video.Width != 1080 || video.Height != 2340 {
		t.Fatalf("unexpected video stream: %+v", video)
	}
	if video.FrameCount() != 299 {
		t.Fatalf("frame count = %d", video.FrameCount())
	}
	if got := video.FrameRate(); math.Abs(got-29.97) > 0.01 {
		t.Fatalf("frame rate = %v", got)
	}
	if result.VideoStreamCount() != 1 {
		t.Fatalf("video streams = %d", result.VideoStreamCount())
	}
	if result.SizeBytes() != 4096 || result.DurationSeconds() != 10.01 {
		t.Fatalf("unexpected format helpers: %d %v", result.SizeBytes(), result.DurationSeconds())
	}
	if len(result.RawJSON()) == 0 {
		t.Fatal("expected raw json to be retained")
	}
}

func TestVideoStreamMissing(t *testing.T) {
	result := Result{Streams: []Stream{{CodecType: "audio"}}}
	if _, err := result.VideoStream(); !errors.Is(err, ErrNoVideoStream) {
		t.Fatalf("expected ErrNoVideoStream, got %v", err)
	}
}

func TestRotationAndDisplaySize(t *testing.T) {
	tests := []struct {
		name   string
		stream Stream
		rot    int
		w, h   int
	}{
		{"none", Stream{Width: 640, Height: 480}, 0, 640, 480},
		{"tag 90", Stream{Width: 640, Height: 480, Tags: StreamTags{Rotate: "90"}}, 90, 480, 640},
		{"matrix -90", Stream{Width: 640, Height: 480, SideData: []SideData{{SideDataType: "Display Matrix", Rotation: -90}}}, 90, 480, 640},
		{"matrix 90", Stream{Width: 640, Height: 480, SideData: []SideData{{SideDataType: "Display Matrix", Rotation: 90}}}, 270, 480, 640},
		{"tag 180", Stream{Width: 640, Height: 480, Tags: StreamTags{Rotate: "180"}}, 180, 640, 480},
		{"bad tag", Stream{Width: 640, Height: 480, Tags: StreamTags{Rotate: "sideways"}}, 0, 640, 480},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stream.Rotation(); got != tt.rot {
				t.Fatalf("rotation = %d, want %d", got, tt.rot)
			}
			w, h := tt.stream.DisplaySize()
			if w != tt.w || h != tt.h {
				t.Fatalf("display size = %dx%d, want %dx%d", w, h, tt.w, tt.h)
			}
		})
	}
}

func TestFrameCountFallsBackToDuration(t *testing.T) {
	s := Stream{AvgFrameRate: "25/1", Duration: "2.0", NBFrames: "N/A"}
	if got := s.FrameCount(); got != 50 {
		t.Fatalf("frame count = %d, want 50", got)
	}
	if got := (Stream{AvgFrameRate: "0/0"}).FrameRate(); got != 0 {
		t.Fatalf("expected 0 for 0/0, got %v", got)
	}
	if got := (Stream{}).FrameCount(); got != 0 {
		t.Fatalf("expected unknown count 0, got %d", got)
	}
}

func TestInspectRunsBinary(t *testing.T) {
	dir := t.TempDir()
	payload := filepath.Join(dir, "probe.json")
	if err := os.WriteFile(payload, []byte(sampleJSON), 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	script := filepath.Join(dir, "ffprobe")
	if err := os.WriteFile(script, []byte("#!/bin/sh\ncat "+payload+"\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	result, err := Inspect(context.Background(), script, "scroll.mp4")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if result.Format.Filename != "scroll.mp4" {
		t.Fatalf("unexpected format: %+v", result.Format)
	}
}

func TestInspectFailures(t *testing.T) {
	if _, err := Inspect(context.Background(), "ffprobe", " "); err == nil {
		t.Fatal("expected empty path error")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "ffprobe")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho 'No such file' >&2\nexit 1\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	if _, err := Inspect(context.Background(), script, "missing.mp4"); err == nil {
		t.Fatal("expected failure from non-zero exit")
	}
}
