package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// ErrNoVideoStream reports a container without any video stream.
var ErrNoVideoStream = errors.New("no video stream")

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
	raw     []byte
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index        int        `json:"index"`
	CodecName    string     `json:"codec_name"`
	CodecType    string     `json:"codec_type"`
	Width        int        `json:"width"`
	Height       int        `json:"height"`
	PixFmt       string     `json:"pix_fmt"`
	AvgFrameRate string     `json:"avg_frame_rate"`
	Duration     string     `json:"duration"`
	NBFrames     string     `json:"nb_frames"`
	Tags         StreamTags `json:"tags"`
	SideData     []SideData `json:"side_data_list"`
}

// StreamTags holds the stream tags scrollsplice cares about.
type StreamTags struct {
	Rotate string `json:"rotate"`
}

// SideData is a stream side data entry; only display matrices carry rotation.
type SideData struct {
	SideDataType string  `json:"side_data_type"`
	Rotation     float64 `json:"rotation"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(output)))
	}

	return Parse(output)
}

// Parse decodes an ffprobe JSON payload.
func Parse(data []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	result.raw = append([]byte(nil), data...)
	return result, nil
}

// RawJSON returns the raw ffprobe JSON payload.
func (r Result) RawJSON() []byte {
	return append([]byte(nil), r.raw...)
}

// VideoStream returns the first video stream.
func (r Result) VideoStream() (Stream, error) {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			return stream, nil
		}
	}
	return Stream{}, ErrNoVideoStream
}

// VideoStreamCount returns the number of video streams discovered.
func (r Result) VideoStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			count++
		}
	}
	return count
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

// SizeBytes returns the reported container size in bytes, or 0 when unavailable.
func (r Result) SizeBytes() int64 {
	size := parseFloat(r.Format.Size)
	if math.IsNaN(size) || size < 0 {
		return 0
	}
	return int64(size)
}

// Rotation returns the clockwise display rotation in degrees, normalized to
// 0, 90, 180 or 270. Display matrix side data wins over the legacy rotate tag.
func (s Stream) Rotation() int {
	var deg float64
	found := false
	for _, sd := range s.SideData {
		if strings.EqualFold(sd.SideDataType, "Display Matrix") {
			// Display matrix rotation is counter-clockwise.
			deg = -sd.Rotation
			found = true
			break
		}
	}
	if !found {
		if v := parseFloat(s.Tags.Rotate); !math.IsNaN(v) {
			deg = v
		}
	}
	r := int(math.Round(deg/90)) * 90 % 360
	if r < 0 {
		r += 360
	}
	return r
}

// DisplaySize returns the frame size the decoder emits once rotation is applied.
func (s Stream) DisplaySize() (width, height int) {
	switch s.Rotation() {
	case 90, 270:
		return s.Height, s.Width
	default:
		return s.Width, s.Height
	}
}

// FrameRate parses avg_frame_rate ("30000/1001"), returning 0 when unknown.
func (s Stream) FrameRate() float64 {
	value := strings.TrimSpace(s.AvgFrameRate)
	if value == "" {
		return 0
	}
	num, den, ok := strings.Cut(value, "/")
	n := parseFloat(num)
	if !ok {
		if math.IsNaN(n) {
			return 0
		}
		return n
	}
	d := parseFloat(den)
	if math.IsNaN(n) || math.IsNaN(d) || d == 0 {
		return 0
	}
	return n / d
}

// FrameCount returns nb_frames, falling back to duration times frame rate.
// Zero means unknown.
func (s Stream) FrameCount() int {
	if n, err := strconv.Atoi(strings.TrimSpace(s.NBFrames)); err == nil && n > 0 {
		return n
	}
	duration := parseFloat(s.Duration)
	rate := s.FrameRate()
	if math.IsNaN(duration) || duration <= 0 || rate <= 0 {
		return 0
	}
	return int(math.Round(duration * rate))
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
