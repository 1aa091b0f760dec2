package preflight

import (
	"context"
	"path/filepath"

	"scrollsplice/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every environment check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, status := range CheckSystemDeps(ctx, cfg) {
		results = append(results, fromStatus(status))
	}
	if cfg.History.Enabled {
		results = append(results, CheckDirectoryAccess("History directory", cfg.History.Dir))
	}
	return results
}

// ForStitch checks what a single run needs: both decoder tools, a readable
// source and a writable output directory.
func ForStitch(ctx context.Context, cfg *config.Config, source, output string) []Result {
	results := make([]Result, 0, 4)
	for _, status := range CheckSystemDeps(ctx, cfg) {
		results = append(results, fromStatus(status))
	}
	results = append(results,
		CheckReadable("Source", source),
		CheckDirectoryAccess("Output directory", filepath.Dir(output)),
	)
	return results
}

// FirstFailure returns the first failed result.
func FirstFailure(results []Result) (Result, bool) {
	for _, r := range results {
		if !r.Passed {
			return r, true
		}
	}
	return Result{}, false
}
