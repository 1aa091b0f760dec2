package overlap

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"scrollsplice/internal/frames"
	"scrollsplice/internal/logging"
)

// ProgressFunc receives the number of finished pairs. Calls are serialized.
type ProgressFunc func(done, total int)

type options struct {
	logger   *slog.Logger
	workers  int
	progress ProgressFunc
}

// Option customizes Estimate.
type Option func(*options)

// WithLogger routes per-pair diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithWorkers bounds the number of pairs searched concurrently. Values below
// one use GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) {
		o.progress = fn
	}
}

// Estimate computes one Result per adjacent frame pair. Structural problems
// (too few frames, mismatched sizes, bad crop band or parameters) fail the
// whole call; pairs without a confident match become Fallback results.
func Estimate(ctx context.Context, seq frames.Sequence, params Params, opts ...Option) (Results, error) {
	cfg := options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers < 1 {
		cfg.workers = runtime.GOMAXPROCS(0)
	}

	width, height, err := seq.Dimensions()
	if err != nil {
		return nil, err
	}
	if err := params.validate(width, height); err != nil {
		return nil, err
	}

	w := window{
		top:     params.Crop.Top,
		end:     params.Crop.ScrollEnd(height),
		columns: params.SampleColumns,
	}
	s := searcher{
		rows:     params.Crop.Scrollable(height),
		rowLen:   w.rowLen(width),
		lo:       max(params.MinOverlap, 1),
		expected: params.ExpectedOffset,
	}

	total := len(seq) - 1
	results := make(Results, total)
	logger := logging.NewComponentLogger(cfg.logger, "overlap")
	logger.Debug("estimating overlaps",
		logging.Int("pairs", total),
		logging.Int("scrollable_rows", s.rows),
		logging.Int("compare_bytes_per_row", s.rowLen),
		logging.Int("workers", cfg.workers),
	)

	var (
		progressMu sync.Mutex
		done       int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)
	for i := 0; i < total; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			prev := w.plane(seq[i])
			next := w.plane(seq[i+1])
			offset, score := s.search(prev, next)
			if score <= params.ApproxDiff {
				results[i] = Matched(i, offset, score)
				logger.Debug("pair matched",
					logging.Int(logging.FieldPair, i),
					logging.Int("offset", offset),
					logging.Float64("score", score),
				)
			} else {
				results[i] = Fallback(i, params.ExpectedOffset, offset, score)
				logger.Warn("no confident overlap; using expected offset",
					logging.Int(logging.FieldPair, i),
					logging.Int("expected_offset", params.ExpectedOffset),
					logging.Int("best_candidate", offset),
					logging.Float64("best_score", score),
					logging.Float64("approx_diff", params.ApproxDiff),
					logging.Alert("unmatched_overlap"),
				)
			}
			if cfg.progress != nil {
				progressMu.Lock()
				done++
				cfg.progress(done, total)
				progressMu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// window selects the compared bytes of each frame: the scrollable rows and,
// optionally, a subset of columns.
type window struct {
	top     int
	end     int
	columns []int
}

func (w window) rowLen(width int) int {
	if w.columns == nil {
		return width * frames.Channels
	}
	return len(w.columns) * frames.Channels
}

// plane returns the window of f as contiguous rows. Without column sampling
// it aliases the frame.
func (w window) plane(f frames.Frame) []uint8 {
	if w.columns == nil {
		return f.Rows(w.top, w.end)
	}
	rowLen := len(w.columns) * frames.Channels
	out := make([]uint8, 0, (w.end-w.top)*rowLen)
	for y := w.top; y < w.end; y++ {
		row := f.Row(y)
		for _, x := range w.columns {
			i := x * frames.Channels
			out = append(out, row[i], row[i+1], row[i+2])
		}
	}
	return out
}
