package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"scrollsplice/internal/config"
	"scrollsplice/internal/deps"
	"scrollsplice/internal/frames"
	"scrollsplice/internal/history"
	"scrollsplice/internal/imageio"
	"scrollsplice/internal/logging"
	"scrollsplice/internal/media/ffmpeg"
	"scrollsplice/internal/media/ffprobe"
	"scrollsplice/internal/overlap"
	"scrollsplice/internal/panorama"
	"scrollsplice/internal/preflight"
	"scrollsplice/internal/report"
)

// Request names the capture to stitch and where results go.
type Request struct {
	Source string
	// Output defaults to DefaultOutput(Source).
	Output string
	// ReportPath, when set, receives a json, yaml or toml report.
	ReportPath string
	Verbose    bool
	// MaxFrames caps decoding; 0 decodes the whole capture.
	MaxFrames int
}

// Outcome is what a successful run produced.
type Outcome struct {
	Report  report.Report
	Results overlap.Results
	// Recorded is false when history is disabled or recording failed.
	Recorded bool
}

// Option customizes Run.
type Option func(*runner)

// WithLogger sets the base logger; a run_id attribute is added per run.
func WithLogger(logger *slog.Logger) Option {
	return func(r *runner) { r.logger = logger }
}

// WithProgress receives overlap estimation progress.
func WithProgress(fn overlap.ProgressFunc) Option {
	return func(r *runner) { r.progress = fn }
}

// WithStore records into store instead of opening the configured database.
func WithStore(store *history.Store) Option {
	return func(r *runner) { r.store = store }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *runner) { r.now = now }
}

type runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	progress overlap.ProgressFunc
	store    *history.Store
	now      func() time.Time
}

// Run stitches req.Source into a panorama using cfg.
func Run(ctx context.Context, cfg *config.Config, req Request, opts ...Option) (*Outcome, error) {
	if cfg == nil {
		return nil, Wrap(ErrConfiguration, "pipeline", "run", "config required", nil)
	}
	r := &runner{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r.run(ctx, req)
}

func (r *runner) run(ctx context.Context, req Request) (*Outcome, error) {
	started := r.now()
	runID := uuid.NewString()
	logger := logging.NewComponentLogger(r.logger, "pipeline").With(logging.String(logging.FieldRunID, runID))

	source := strings.TrimSpace(req.Source)
	if source == "" {
		return nil, Wrap(ErrConfiguration, "pipeline", "run", "source path required", nil)
	}
	output := strings.TrimSpace(req.Output)
	if output == "" {
		output = DefaultOutput(source)
	}
	if abs, err := filepath.Abs(output); err == nil {
		output = abs
	}
	format, err := imageio.FormatFor(output, imageio.Format(r.cfg.Output.Format))
	if err != nil {
		return nil, Wrap(ErrConfiguration, "output", "format", output, err)
	}
	if req.ReportPath != "" {
		if _, err := report.FormatFor(req.ReportPath); err != nil {
			return nil, Wrap(ErrConfiguration, "report", "format", req.ReportPath, err)
		}
	}

	ffprobeBinary := deps.ResolveFFprobe(r.cfg.Media.FFmpegBinary, r.cfg.Media.FFprobeBinary)
	checks := preflight.ForStitch(ctx, r.cfg, source, output)
	if failed, ok := preflight.FirstFailure(checks); ok {
		marker := ErrConfiguration
		if failed.Name == "FFmpeg" || failed.Name == "FFprobe" {
			marker = ErrExternalTool
		}
		return nil, Wrap(marker, "preflight", failed.Name, failed.Detail, nil)
	}

	logger.Info("stitch started",
		logging.String(logging.FieldSource, source),
		logging.String(logging.FieldOutput, output),
	)

	probe, err := ffprobe.Inspect(ctx, ffprobeBinary, source)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, Wrap(ErrExternalTool, "probe", "ffprobe", source, err)
	}
	stream, err := probe.VideoStream()
	if err != nil {
		return nil, Wrap(ErrConfiguration, "probe", "video stream", source, err)
	}
	srcWidth, srcHeight := stream.DisplaySize()
	logger.Debug("capture probed",
		logging.Int("width", srcWidth),
		logging.Int("height", srcHeight),
		logging.Int("frames", stream.FrameCount()),
		logging.Int("rotation", stream.Rotation()),
	)

	decoder, err := ffmpeg.New(r.cfg.Media.FFmpegBinary,
		ffmpeg.WithFPS(r.cfg.Media.FPS),
		ffmpeg.WithTimeout(time.Duration(r.cfg.Media.DecodeTimeout)*time.Second),
		ffmpeg.WithMaxFrames(req.MaxFrames),
		ffmpeg.WithVerbose(req.Verbose),
		ffmpeg.WithLogger(logger),
	)
	if err != nil {
		return nil, Wrap(ErrConfiguration, "decode", "ffmpeg", "", err)
	}
	expectFrames := stream.FrameCount()
	if r.cfg.Media.FPS > 0 {
		expectFrames = 0
	}
	video, err := decoder.Decode(ctx, source, srcWidth, srcHeight, expectFrames)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, Wrap(ErrExternalTool, "decode", "ffmpeg", source, err)
	}

	transpose := r.cfg.Stitch.Transpose
	seq, err := frames.FromPacked(video.Data, video.Width, video.Height, transpose)
	if err != nil {
		return nil, Wrap(ErrExternalTool, "decode", "reshape", "", err)
	}
	if len(seq) < 2 {
		return nil, Wrap(ErrConfiguration, "decode", "frames", fmt.Sprintf("capture decoded to %d frame(s)", len(seq)), frames.ErrInsufficientFrames)
	}
	width, height := seq[0].Width, seq[0].Height
	logger.Info("frames decoded",
		logging.Int("frames", len(seq)),
		logging.Int("width", width),
		logging.Int("height", height),
		logging.Bool("transpose", transpose),
	)

	resolved := Resolve(r.cfg.Stitch, height)
	params := resolved.Params(width, r.cfg.Stitch.ColumnStride)

	sampler := logging.NewProgressSampler(5)
	progress := func(done, total int) {
		if sampler.ShouldLog(done, total) {
			logger.Debug("estimating overlaps",
				logging.Int("done", done),
				logging.Int("total", total),
				logging.Float64("percent", logging.Percent(done, total)),
			)
		}
		if r.progress != nil {
			r.progress(done, total)
		}
	}
	results, err := overlap.Estimate(ctx, seq, params,
		overlap.WithLogger(logger),
		overlap.WithWorkers(r.cfg.Stitch.Workers),
		overlap.WithProgress(progress),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, Wrap(ErrConfiguration, "estimate", "overlap", "", err)
	}
	summary := overlap.Summarize(results)
	logger.Info("overlaps estimated",
		logging.Int("pairs", summary.Pairs),
		logging.Int("fallbacks", summary.Fallbacks),
		logging.Float64("mean_offset", summary.MeanOffset),
	)
	if len(summary.OutlierPairs) > 0 {
		logger.Warn("offsets deviate from the scroll rate; check for false matches",
			logging.Any("pairs", summary.OutlierPairs),
			logging.Alert("offset_outlier"),
		)
	}

	pano, err := panorama.Assemble(seq, results.Offsets(), panorama.Options{
		Crop:      resolved.Crop,
		SeamWidth: r.cfg.Stitch.SeamWidth,
	})
	if err != nil {
		return nil, Wrap(ErrConfiguration, "assemble", "panorama", "", err)
	}

	written, err := imageio.Save(output, pano.Image(), imageio.Options{
		Format:      format,
		JPEGQuality: r.cfg.Output.JPEGQuality,
		Overwrite:   r.cfg.Output.Overwrite,
		Transpose:   transpose,
	})
	if err != nil {
		return nil, Wrap(ErrOutput, "output", string(format), output, err)
	}

	rep := report.Build(report.Meta{
		RunID:       runID,
		Source:      source,
		Output:      output,
		CreatedAt:   started,
		Duration:    r.now().Sub(started),
		OutputBytes: written,
		FrameWidth:  width,
		FrameHeight: height,
		Parameters: report.Parameters{
			CropTop:        resolved.Crop.Top,
			CropBottom:     resolved.Crop.Bottom,
			ExpectedOffset: resolved.ExpectedOffset,
			MinOverlap:     resolved.MinOverlap,
			ApproxDiff:     resolved.ApproxDiff,
			SeamWidth:      r.cfg.Stitch.SeamWidth,
			Transpose:      transpose,
			ColumnStride:   r.cfg.Stitch.ColumnStride,
			FPS:            r.cfg.Media.FPS,
		},
	}, results, pano)

	logger.Info("panorama written",
		logging.String(logging.FieldOutput, output),
		logging.Int("width", rep.PanoramaWidth),
		logging.Int("height", rep.PanoramaHeight),
		logging.Int64("bytes", written),
	)

	if req.ReportPath != "" {
		if err := report.Write(req.ReportPath, rep); err != nil {
			return nil, Wrap(ErrOutput, "report", "write", req.ReportPath, err)
		}
	}

	out := &Outcome{Report: rep, Results: results}
	out.Recorded = r.record(ctx, logger, rep)
	return out, nil
}

// record stores the run in history. Failures are logged, not returned: the
// panorama is already on disk.
func (r *runner) record(ctx context.Context, logger *slog.Logger, rep report.Report) bool {
	store := r.store
	if store == nil {
		if !r.cfg.History.Enabled {
			return false
		}
		opened, err := history.Open(r.cfg)
		if err != nil {
			logger.Warn("history unavailable; run not recorded", logging.Error(err), logging.Alert("history_open"))
			return false
		}
		defer opened.Close()
		store = opened
	}
	run := history.RunFromReport(rep)
	if err := store.Record(ctx, &run); err != nil {
		if errors.Is(err, context.Canceled) {
			return false
		}
		logger.Warn("failed to record run", logging.Error(err), logging.Alert("history_record"))
		return false
	}
	return true
}
