package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"scrollsplice/internal/overlap"
)

var (
	ErrNotFound    = errors.New("run not found")
	ErrAmbiguousID = errors.New("run id prefix is ambiguous")
)

// timeLayout is fixed width so created_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = `id, source, output, created_at, frame_width, frame_height, frame_count,
    panorama_width, panorama_height, crop_top, crop_bottom, expected_offset,
    min_overlap, approx_diff, transpose, fallback_count, output_bytes, duration_ms`

// Record stores run and its pairs in one transaction. An empty ID is filled
// with a new UUID and a zero CreatedAt with the current time.
func (s *Store) Record(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("record run: nil run")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	run.CreatedAt = run.CreatedAt.UTC()

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin record tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			run.Source,
			run.Output,
			run.CreatedAt.Format(timeLayout),
			run.FrameWidth,
			run.FrameHeight,
			run.FrameCount,
			run.PanoramaWidth,
			run.PanoramaHeight,
			run.CropTop,
			run.CropBottom,
			run.ExpectedOffset,
			run.MinOverlap,
			run.ApproxDiff,
			boolToInt(run.Transpose),
			run.FallbackCount,
			run.OutputBytes,
			run.Duration.Milliseconds(),
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO run_pairs (run_id, pair_index, pair_offset, score, matched, candidate) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare pair insert: %w", err)
		}
		defer stmt.Close()
		for _, p := range run.Pairs {
			if _, err := stmt.ExecContext(ctx, run.ID, p.Pair, p.Offset, p.Score, boolToInt(!p.IsFallback()), p.Candidate); err != nil {
				return fmt.Errorf("insert pair %d: %w", p.Pair, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit run: %w", err)
		}
		return nil
	})
}

// Get loads a run and its pairs. id may be a unique prefix of the full ID.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrNotFound)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ESCAPE '\' ORDER BY id = ? DESC LIMIT 2`,
		id, escapeLike(id)+"%", id)
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	rows.Close()

	switch {
	case len(matches) == 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case len(matches) > 1 && matches[0].ID != id:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
	}
	run := matches[0]

	pairs, err := s.pairs(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	run.Pairs = pairs
	return run, nil
}

// List returns the most recent runs first, without pairs. limit <= 0 returns
// every run.
func (s *Store) List(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func (s *Store) pairs(ctx context.Context, runID string) ([]overlap.Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pair_index, pair_offset, score, matched, candidate FROM run_pairs WHERE run_id = ? ORDER BY pair_index`,
		runID)
	if err != nil {
		return nil, fmt.Errorf("query pairs: %w", err)
	}
	defer rows.Close()

	var out []overlap.Result
	for rows.Next() {
		var (
			r       overlap.Result
			matched int
		)
		if err := rows.Scan(&r.Pair, &r.Offset, &r.Score, &matched, &r.Candidate); err != nil {
			return nil, fmt.Errorf("scan pair: %w", err)
		}
		r.Status = overlap.StatusMatched
		if matched == 0 {
			r.Status = overlap.StatusFallback
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pairs: %w", err)
	}
	return out, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run        Run
		createdRaw string
		transpose  int
		durationMS int64
	)
	if err := scanner.Scan(
		&run.ID,
		&run.Source,
		&run.Output,
		&createdRaw,
		&run.FrameWidth,
		&run.FrameHeight,
		&run.FrameCount,
		&run.PanoramaWidth,
		&run.PanoramaHeight,
		&run.CropTop,
		&run.CropBottom,
		&run.ExpectedOffset,
		&run.MinOverlap,
		&run.ApproxDiff,
		&transpose,
		&run.FallbackCount,
		&run.OutputBytes,
		&durationMS,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	created, err := time.Parse(time.RFC3339Nano, createdRaw)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdRaw, err)
	}
	run.CreatedAt = created
	run.Transpose = transpose != 0
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

// escapeLike quotes LIKE wildcards for use with ESCAPE '\'.
func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(value)
}
