package logging

import (
	"context"
	"log/slog"
)

// fanout sends each record to every child that accepts its level. The
// console and the JSON log file sit behind one, each with its own level.
type fanout []slog.Handler

// newFanoutHandler drops nil children and avoids the wrapper when at most
// one remains.
func newFanoutHandler(handlers ...slog.Handler) slog.Handler {
	var children fanout
	for _, h := range handlers {
		if h != nil {
			children = append(children, h)
		}
	}
	switch len(children) {
	case 0:
		return NoopHandler{}
	case 1:
		return children[0]
	}
	return children
}

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle reports the first child error but still delivers to the rest, so a
// full disk under the log file does not silence the console.
func (f fanout) Handle(ctx context.Context, record slog.Record) error {
	var first error
	last := len(f) - 1
	for i, h := range f {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		// Children may retain attrs; only the last one gets the original.
		r := record
		if i < last {
			r = record.Clone()
		}
		if err := h.Handle(ctx, r); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f fanout) WithGroup(name string) slog.Handler {
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f fanout) derive(fn func(slog.Handler) slog.Handler) fanout {
	next := make(fanout, len(f))
	for i, h := range f {
		next[i] = fn(h)
	}
	return next
}
