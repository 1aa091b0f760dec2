package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"scrollsplice/internal/config"
	"scrollsplice/internal/overlap"
	"scrollsplice/internal/pipeline"
	"scrollsplice/internal/report"
)

type stitchFlags struct {
	output       string
	reportPath   string
	cropTop      float64
	cropBottom   float64
	expectOffset float64
	minOverlap   float64
	approxDiff   float64
	seamWidth    int
	transpose    bool
	fps          float64
	workers      int
	columnStride int
	maxFrames    int
	jsonOutput   bool
	noProgress   bool
}

func newStitchCommand(ctx *commandContext) *cobra.Command {
	var flags stitchFlags

	cmd := &cobra.Command{
		Use:   "stitch <source>",
		Short: "Stitch a scroll capture into a panorama",
		Long: "Decode a scrolling screen capture, estimate the overlap between consecutive\n" +
			"frames and write the stitched image. Lengths below 1 are fractions of the\n" +
			"frame height, anything else is pixels.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			applied := *cfg
			if err := applyStitchFlags(cmd, &applied, flags); err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			opts := []pipeline.Option{pipeline.WithLogger(logger)}
			var bar *progressbar.ProgressBar
			if !flags.jsonOutput && !flags.noProgress && isTerminal(cmd.ErrOrStderr()) {
				bar = newEstimateBar(cmd.ErrOrStderr())
				opts = append(opts, pipeline.WithProgress(func(done, total int) {
					if bar.GetMax() != total {
						bar.ChangeMax(total)
					}
					_ = bar.Set(done)
				}))
			}

			outcome, err := pipeline.Run(cmd.Context(), &applied, pipeline.Request{
				Source:     args[0],
				Output:     flags.output,
				ReportPath: flags.reportPath,
				Verbose:    ctx.verboseEnabled(),
				MaxFrames:  flags.maxFrames,
			}, opts...)
			if bar != nil {
				_ = bar.Finish()
			}
			if err != nil {
				return err
			}

			if flags.jsonOutput {
				return writeJSON(cmd, outcome.Report)
			}
			printStitchSummary(cmd.OutOrStdout(), outcome.Report, ctx.verboseEnabled())
			return nil
		},
	}

	def := config.Default()
	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "Output image (default: <source name>.png in the working directory)")
	f.StringVar(&flags.reportPath, "report", "", "Write a run report (.json, .yaml or .toml)")
	f.Float64Var(&flags.cropTop, "crop-top", def.Stitch.CropTop, "Fixed header rows excluded from matching (fraction or pixels)")
	f.Float64Var(&flags.cropBottom, "crop-bottom", def.Stitch.CropBottom, "Fixed footer rows excluded from matching (fraction or pixels)")
	f.Float64Var(&flags.expectOffset, "expect-offset", def.Stitch.ExpectOffset, "Expected overlap between frames (fraction or pixels)")
	f.Float64Var(&flags.minOverlap, "min-overlap", def.Stitch.MinOverlap, "Smallest accepted overlap (fraction or pixels)")
	f.Float64Var(&flags.approxDiff, "approx-diff", def.Stitch.ApproxDiff, "Largest accepted mean channel difference")
	f.IntVar(&flags.seamWidth, "seam-width", def.Stitch.SeamWidth, "Draw seam rows of this height at frame boundaries")
	f.BoolVarP(&flags.transpose, "transpose", "t", false, "Treat the capture as scrolling horizontally")
	f.Float64Var(&flags.fps, "fps", def.Media.FPS, "Resample the capture to this frame rate before stitching")
	f.IntVar(&flags.workers, "workers", def.Stitch.Workers, "Parallel pair searches (0 uses all CPUs)")
	f.IntVar(&flags.columnStride, "column-stride", def.Stitch.ColumnStride, "Compare every Nth column only")
	f.IntVar(&flags.maxFrames, "max-frames", 0, "Stop decoding after this many frames")
	f.BoolVar(&flags.jsonOutput, "json", false, "Print the run report as JSON")
	f.BoolVar(&flags.noProgress, "no-progress", false, "Disable the progress bar")
	return cmd
}

// applyStitchFlags copies explicitly set flags over cfg and revalidates.
func applyStitchFlags(cmd *cobra.Command, cfg *config.Config, flags stitchFlags) error {
	changed := cmd.Flags().Changed
	if changed("crop-top") {
		cfg.Stitch.CropTop = flags.cropTop
	}
	if changed("crop-bottom") {
		cfg.Stitch.CropBottom = flags.cropBottom
	}
	if changed("expect-offset") {
		cfg.Stitch.ExpectOffset = flags.expectOffset
	}
	if changed("min-overlap") {
		cfg.Stitch.MinOverlap = flags.minOverlap
	}
	if changed("approx-diff") {
		cfg.Stitch.ApproxDiff = flags.approxDiff
	}
	if changed("seam-width") {
		cfg.Stitch.SeamWidth = flags.seamWidth
	}
	if changed("transpose") {
		cfg.Stitch.Transpose = flags.transpose
	}
	if changed("workers") {
		cfg.Stitch.Workers = flags.workers
	}
	if changed("column-stride") {
		cfg.Stitch.ColumnStride = flags.columnStride
	}
	if changed("fps") {
		cfg.Media.FPS = flags.fps
	}
	if flags.maxFrames < 0 {
		return errors.New("--max-frames must be non-negative")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", pipeline.ErrConfiguration, err)
	}
	return nil
}

func newEstimateBar(w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("matching frames"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func printStitchSummary(out io.Writer, r report.Report, verbose bool) {
	fmt.Fprintf(out, "Wrote %s (%s x %s px, %s)\n",
		r.Output, formatCount(r.PanoramaWidth), formatCount(r.PanoramaHeight), formatBytes(r.OutputBytes))
	fmt.Fprintf(out, "Frames: %s  Pairs: %s matched, %s fallback  Took: %s\n",
		formatCount(r.FrameCount),
		formatCount(r.Summary.Matched),
		formatCount(r.Summary.Fallbacks),
		formatDuration(time.Duration(r.DurationMS)*time.Millisecond),
	)
	if len(r.Summary.FallbackPairs) > 0 {
		fmt.Fprintf(out, "No match found for pairs %s; the expected offset was used\n", joinInts(r.Summary.FallbackPairs))
	}
	if len(r.Summary.OutlierPairs) > 0 {
		fmt.Fprintf(out, "Offsets of pairs %s deviate from the rest; check them for false matches\n", joinInts(r.Summary.OutlierPairs))
	}
	if verbose || len(r.Summary.FallbackPairs) > 0 {
		fmt.Fprintln(out, renderPairsTable(r.Pairs))
	}
}

func renderPairsTable(pairs []overlap.Result) string {
	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		candidate := "-"
		if p.IsFallback() {
			candidate = strconv.Itoa(p.Candidate)
		}
		rows = append(rows, []string{
			strconv.Itoa(p.Pair),
			strconv.Itoa(p.Offset),
			formatScore(p.Score),
			p.Status.String(),
			candidate,
		})
	}
	return renderTable(
		[]string{"Pair", "Offset", "Score", "Status", "Best Candidate"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignRight},
	)
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
