package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"scrollsplice/internal/frames"
	"scrollsplice/internal/logging"
)

var commandContext = exec.CommandContext

// stderrTail bounds how much ffmpeg diagnostic output is kept for errors.
const stderrTail = 4 << 10

// Option configures the decoder.
type Option func(*Decoder)

// WithFPS resamples the capture to fps frames per second; 0 keeps every frame.
func WithFPS(fps float64) Option {
	return func(d *Decoder) { d.fps = fps }
}

// WithTimeout bounds a single decode; 0 disables the limit.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Decoder) { d.timeout = timeout }
}

// WithMaxFrames stops decoding after n frames; 0 decodes the whole stream.
func WithMaxFrames(n int) Option {
	return func(d *Decoder) { d.maxFrames = n }
}

// WithVerbose makes ffmpeg report warnings on stderr instead of errors only.
func WithVerbose(verbose bool) Option {
	return func(d *Decoder) { d.verbose = verbose }
}

// WithLogger sets the logger used for decode diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Decoder) { d.logger = logger }
}

// Decoder wraps ffmpeg rawvideo extraction.
type Decoder struct {
	binary    string
	fps       float64
	timeout   time.Duration
	maxFrames int
	verbose   bool
	logger    *slog.Logger
}

// Video is a decoded capture: Frames packed rgb24 frames of Width x Height.
type Video struct {
	Width  int
	Height int
	Frames int
	Data   []byte
}

// New constructs a decoder for the given ffmpeg binary.
func New(binary string, opts ...Option) (*Decoder, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	d := &Decoder{binary: binary}
	for _, opt := range opts {
		opt(d)
	}
	if d.fps < 0 {
		return nil, fmt.Errorf("ffmpeg fps must be >= 0, got %v", d.fps)
	}
	d.logger = logging.NewComponentLogger(d.logger, "ffmpeg")
	return d, nil
}

// Args returns the ffmpeg argument list used to decode path.
func (d *Decoder) Args(path string) []string {
	level := "error"
	if d.verbose {
		level = "warning"
	}
	args := []string{"-v", level, "-nostdin", "-hide_banner", "-i", path}
	if d.fps > 0 {
		args = append(args, "-vf", "fps="+strconv.FormatFloat(d.fps, 'f', -1, 64))
	}
	if d.maxFrames > 0 {
		args = append(args, "-frames:v", strconv.Itoa(d.maxFrames))
	}
	return append(args, "-an", "-sn", "-f", "rawvideo", "-pix_fmt", "rgb24", "-")
}

// Decode runs ffmpeg over path and collects every frame. width and height are
// the displayed frame size; expectFrames pre-sizes the buffer when known.
func (d *Decoder) Decode(ctx context.Context, path string, width, height, expectFrames int) (Video, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Video{}, errors.New("ffmpeg decode: empty path")
	}
	if width <= 0 || height <= 0 {
		return Video{}, fmt.Errorf("ffmpeg decode: %w: %dx%d", frames.ErrDimensionMismatch, width, height)
	}
	frameSize := frames.FrameBytes(width, height)

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	var stdout bytes.Buffer
	if expectFrames > 0 {
		if d.maxFrames > 0 {
			expectFrames = min(expectFrames, d.maxFrames)
		}
		stdout.Grow(expectFrames * frameSize)
	}
	stderr := &tailBuffer{limit: stderrTail}

	args := d.Args(path)
	d.logger.Debug("decoding capture", logging.String(logging.FieldSource, path), logging.String("args", strings.Join(args, " ")))

	started := time.Now()
	cmd := commandContext(ctx, d.binary, args...) //nolint:gosec
	cmd.Stdout = &stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Video{}, fmt.Errorf("ffmpeg decode: %w", ctxErr)
		}
		return Video{}, fmt.Errorf("ffmpeg decode: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		d.logger.Warn("ffmpeg reported diagnostics", logging.String("stderr", msg), logging.Alert("decoder_stderr"))
	}

	data := stdout.Bytes()
	if len(data)%frameSize != 0 {
		return Video{}, fmt.Errorf("ffmpeg decode: %w: %d bytes for %dx%d frames", frames.ErrTruncatedBuffer, len(data), width, height)
	}
	video := Video{Width: width, Height: height, Frames: len(data) / frameSize, Data: data}
	d.logger.Debug("capture decoded",
		logging.Int("frames", video.Frames),
		logging.Duration("elapsed", time.Since(started)),
	)
	return video, nil
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	return string(t.buf)
}
