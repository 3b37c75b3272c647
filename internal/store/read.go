package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrRunNotFound is returned by ReadRun for unknown ids.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `seq, id, script_path, script_hash, output_base, translator_version, output_version, status, error`

// ListRuns returns the most recent runs, oldest first. limit <= 0 returns all.
//
// Returns an empty slice (not nil) if the ledger is empty.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY seq ASC`
	args := []any{}
	if limit > 0 {
		query = `SELECT ` + runColumns + ` FROM (
			SELECT * FROM runs ORDER BY seq DESC LIMIT ?
		) ORDER BY seq ASC`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
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

// ReadRun returns one run by id.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// ReadArtifacts returns the artifacts of a run ordered by check-point.
func (s *Store) ReadArtifacts(ctx context.Context, runID string) ([]Artifact, error) {
	return s.queryArtifacts(ctx, `
		SELECT run_id, check_point, path, content_hash, strategy, vars, hard, soft, objectives
		FROM artifacts
		WHERE run_id = ?
		ORDER BY check_point ASC
	`, runID)
}

// FindArtifacts returns every artifact with the given content hash, in run
// order.
func (s *Store) FindArtifacts(ctx context.Context, contentHash string) ([]Artifact, error) {
	return s.queryArtifacts(ctx, `
		SELECT a.run_id, a.check_point, a.path, a.content_hash, a.strategy, a.vars, a.hard, a.soft, a.objectives
		FROM artifacts a JOIN runs r ON r.id = a.run_id
		WHERE a.content_hash = ?
		ORDER BY r.seq ASC, a.check_point ASC
	`, contentHash)
}

func (s *Store) queryArtifacts(ctx context.Context, query string, args ...any) ([]Artifact, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query artifacts: %w", err)
	}
	defer rows.Close()

	artifacts := []Artifact{}
	for rows.Next() {
		var a Artifact
		if err := rows.Scan(&a.RunID, &a.CheckPoint, &a.Path, &a.ContentHash, &a.Strategy,
			&a.Vars, &a.Hard, &a.Soft, &a.Objectives); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		artifacts = append(artifacts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artifacts: %w", err)
	}
	return artifacts, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var r Run
	err := row.Scan(&r.Seq, &r.ID, &r.ScriptPath, &r.ScriptHash, &r.OutputBase,
		&r.TranslatorVersion, &r.OutputVersion, &r.Status, &r.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	return r, nil
}
