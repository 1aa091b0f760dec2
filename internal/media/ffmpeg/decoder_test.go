package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"
	"testing"
	"time"

	"scrollsplice/internal/frames"
)

func stubCommand(t *testing.T, mode string, captured *[]string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		if captured != nil {
			*captured = append([]string(nil), args...)
		}
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "FFMPEG_HELPER_MODE="+mode)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestDecodeCollectsFrames(t *testing.T) {
	var args []string
	stubCommand(t, "two_frames", &args)

	dec, err := New("ffmpeg", WithFPS(12.5), WithMaxFrames(10))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	video, err := dec.Decode(context.Background(), "capture.mp4", 2, 2, 2)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if video.Frames != 2 || len(video.Data) != 24 {
		t.Fatalf("unexpected video: frames=%d bytes=%d", video.Frames, len(video.Data))
	}
	if video.Data[12] != 100 {
		t.Fatalf("second frame content lost: %v", video.Data[12:])
	}

	for _, want := range [][]string{{"-i", "capture.mp4"}, {"-vf", "fps=12.5"}, {"-frames:v", "10"}, {"-pix_fmt", "rgb24"}, {"-v", "error"}} {
		idx := slices.Index(args, want[0])
		if idx < 0 || idx+1 >= len(args) || args[idx+1] != want[1] {
			t.Fatalf("expected %v in args %v", want, args)
		}
	}
	if args[len(args)-1] != "-" {
		t.Fatalf("expected stdout output target, got %v", args)
	}
}

func TestDecodeVerboseLogLevel(t *testing.T) {
	dec, err := New("ffmpeg", WithVerbose(true))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	args := dec.Args("in.mp4")
	if args[0] != "-v" || args[1] != "warning" {
		t.Fatalf("expected warning log level, got %v", args)
	}
	if slices.Contains(args, "-vf") {
		t.Fatalf("fps filter should be omitted by default: %v", args)
	}
}

func TestDecodeRejectsPartialFrame(t *testing.T) {
	stubCommand(t, "partial", nil)
	dec, _ := New("ffmpeg")
	_, err := dec.Decode(context.Background(), "capture.mp4", 2, 2, 0)
	if !errors.Is(err, frames.ErrTruncatedBuffer) {
		t.Fatalf("expected ErrTruncatedBuffer, got %v", err)
	}
}

func TestDecodeReportsStderrOnFailure(t *testing.T) {
	stubCommand(t, "failure", nil)
	dec, _ := New("ffmpeg")
	_, err := dec.Decode(context.Background(), "capture.mp4", 2, 2, 0)
	if err == nil || !strings.Contains(err.Error(), "Invalid data found") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}

func TestDecodeTimeout(t *testing.T) {
	stubCommand(t, "hang", nil)
	dec, _ := New("ffmpeg", WithTimeout(50*time.Millisecond))
	_, err := dec.Decode(context.Background(), "capture.mp4", 2, 2, 0)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(" "); err == nil {
		t.Fatal("expected error for empty binary")
	}
	if _, err := New("ffmpeg", WithFPS(-1)); err == nil {
		t.Fatal("expected error for negative fps")
	}
	dec, _ := New("ffmpeg")
	if _, err := dec.Decode(context.Background(), "x.mp4", 0, 10, 0); !errors.Is(err, frames.ErrDimensionMismatch) {
		t.Fatalf("expected dimension error, got %v", err)
	}
}

func TestTailBufferKeepsEnd(t *testing.T) {
	tb := &tailBuffer{limit: 4}
	fmt.Fprint(tb, "abcdef")
	fmt.Fprint(tb, "gh")
	if tb.String() != "efgh" {
		t.Fatalf("tail = %q", tb.String())
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("FFMPEG_HELPER_MODE") {
	case "two_frames":
		frame := make([]byte, 12)
		os.Stdout.Write(frame)
		for i := range frame {
			frame[i] = 100
		}
		os.Stdout.Write(frame)
		os.Exit(0)
	case "partial":
		os.Stdout.Write(make([]byte, 13))
		os.Exit(0)
	case "failure":
		fmt.Fprintln(os.Stderr, "capture.mp4: Invalid data found when processing input")
		os.Exit(1)
	case "hang":
		time.Sleep(10 * time.Second)
		os.Exit(0)
	default:
		os.Exit(0)
	}
}
