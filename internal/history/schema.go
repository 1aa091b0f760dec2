package history

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// historyVersion is stored in the database header (PRAGMA user_version).
// Bump it whenever schema.sql changes shape.
const historyVersion = 1

// ErrSchemaMismatch means the file is not a history database this build can
// read: it was written by another version, or by something else entirely.
var ErrSchemaMismatch = errors.New("history schema mismatch")

// prepare creates the tables in an empty file and checks the version of an
// existing one. History is a log of past runs, so an unreadable file is
// reported instead of migrated.
func (s *Store) prepare(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read history version: %w", err)
	}

	switch {
	case version == historyVersion:
		return nil
	case version > historyVersion:
		return fmt.Errorf("%w: %s was written by a newer scrollsplice (version %d, this build reads %d)",
			ErrSchemaMismatch, s.path, version, historyVersion)
	case version > 0:
		return fmt.Errorf("%w: %s holds version %d history; move it aside to start a new one",
			ErrSchemaMismatch, s.path, version)
	}

	var tables int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'",
	).Scan(&tables); err != nil {
		return fmt.Errorf("inspect %s: %w", s.path, err)
	}
	if tables > 0 {
		return fmt.Errorf("%w: %s is not a scrollsplice history database", ErrSchemaMismatch, s.path)
	}
	return s.create(ctx)
}

// create lays down the tables and stamps the version in one transaction, so a
// crash leaves either an empty file or a complete history.
func (s *Store) create(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history setup: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create history tables: %w", err)
	}
	// PRAGMA does not take bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", historyVersion)); err != nil {
		return fmt.Errorf("stamp history version: %w", err)
	}
	return tx.Commit()
}
