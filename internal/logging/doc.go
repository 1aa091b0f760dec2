// Package logging assembles the structured slog loggers used by the
// scrollsplice CLI and its pipeline stages.
//
// It owns the console and JSON handlers, level and output plumbing, and the
// standard field keys (component, run_id, pair) so every stage emits log lines
// of one shape. A run can write human-readable console output and a JSON
// log file at the same time; the handlers are combined with a fanout.
//
// NewNop gives tests and optional wiring a logger that cannot fail.
package logging
