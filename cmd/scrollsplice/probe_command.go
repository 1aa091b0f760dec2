package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"scrollsplice/internal/config"
	"scrollsplice/internal/deps"
	"scrollsplice/internal/media/ffprobe"
	"scrollsplice/internal/pipeline"
)

type probeSummary struct {
	Source       string  `json:"source"`
	Format       string  `json:"format"`
	SizeBytes    int64   `json:"size_bytes"`
	DurationSec  float64 `json:"duration_seconds"`
	Codec        string  `json:"codec"`
	PixelFormat  string  `json:"pixel_format"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	Rotation     int     `json:"rotation"`
	FrameRate    float64 `json:"frame_rate"`
	FrameCount   int     `json:"frame_count"`
	ScrollHeight int     `json:"scroll_height"`
	CropTop      int     `json:"crop_top"`
	CropBottom   int     `json:"crop_bottom"`
	ExpectOffset int     `json:"expected_offset"`
	MinOverlap   int     `json:"min_overlap"`
	VideoStreams int     `json:"video_streams"`
}

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var transpose bool

	cmd := &cobra.Command{
		Use:   "probe <source>",
		Short: "Show capture metadata and the pixel values a stitch would use",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			binary := deps.ResolveFFprobe(cfg.Media.FFmpegBinary, cfg.Media.FFprobeBinary)
			result, err := ffprobe.Inspect(cmd.Context(), binary, args[0])
			if err != nil {
				return pipeline.Wrap(pipeline.ErrExternalTool, "probe", "ffprobe", args[0], err)
			}
			stream, err := result.VideoStream()
			if err != nil {
				return pipeline.Wrap(pipeline.ErrConfiguration, "probe", "video stream", args[0], err)
			}
			summary := summarizeProbe(args[0], result, stream, cfg.Stitch, transpose || cfg.Stitch.Transpose)
			if jsonOutput {
				return writeJSON(cmd, summary)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderProbe(summary))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the probe as JSON")
	cmd.Flags().BoolVarP(&transpose, "transpose", "t", false, "Resolve lengths against the frame width")
	return cmd
}

func summarizeProbe(source string, result ffprobe.Result, stream ffprobe.Stream, stitch config.Stitch, transpose bool) probeSummary {
	width, height := stream.DisplaySize()
	scroll := height
	if transpose {
		scroll = width
	}
	resolved := pipeline.Resolve(stitch, scroll)
	return probeSummary{
		Source:       source,
		Format:       result.Format.FormatName,
		SizeBytes:    result.SizeBytes(),
		DurationSec:  result.DurationSeconds(),
		Codec:        stream.CodecName,
		PixelFormat:  stream.PixFmt,
		Width:        width,
		Height:       height,
		Rotation:     stream.Rotation(),
		FrameRate:    stream.FrameRate(),
		FrameCount:   stream.FrameCount(),
		ScrollHeight: scroll,
		CropTop:      resolved.Crop.Top,
		CropBottom:   resolved.Crop.Bottom,
		ExpectOffset: resolved.ExpectedOffset,
		MinOverlap:   resolved.MinOverlap,
		VideoStreams: result.VideoStreamCount(),
	}
}

func renderProbe(s probeSummary) string {
	rows := [][]string{
		{"Source", s.Source},
		{"Container", s.Format},
		{"Size", formatBytes(s.SizeBytes)},
		{"Duration", strconv.FormatFloat(s.DurationSec, 'f', 2, 64) + "s"},
		{"Codec", s.Codec + " " + s.PixelFormat},
		{"Dimensions", fmt.Sprintf("%s x %s", formatCount(s.Width), formatCount(s.Height))},
		{"Rotation", strconv.Itoa(s.Rotation)},
		{"Frame rate", strconv.FormatFloat(s.FrameRate, 'f', 3, 64)},
		{"Frames", formatCount(s.FrameCount)},
		{"Crop top/bottom", fmt.Sprintf("%d / %d px", s.CropTop, s.CropBottom)},
		{"Expected offset", fmt.Sprintf("%d px", s.ExpectOffset)},
		{"Min overlap", fmt.Sprintf("%d px", s.MinOverlap)},
	}
	if s.VideoStreams > 1 {
		rows = append(rows, []string{"Video streams", strconv.Itoa(s.VideoStreams) + " (first is used)"})
	}
	return renderTable([]string{"Field", "Value"}, rows, nil)
}
