package store

import (
	"context"
	"fmt"
)

// BeginRun records the start of a run with status "running".
// Uses ON CONFLICT(id) DO NOTHING for idempotency.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, script_path, script_hash, output_base, translator_version, output_version, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.ScriptPath,
		run.ScriptHash,
		run.OutputBase,
		run.TranslatorVersion,
		run.OutputVersion,
		StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// WriteArtifact records one emitted file. The run must exist.
func (s *Store) WriteArtifact(ctx context.Context, a Artifact) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO artifacts
		(run_id, check_point, path, content_hash, strategy, vars, hard, soft, objectives)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.RunID,
		a.CheckPoint,
		a.Path,
		a.ContentHash,
		a.Strategy,
		a.Vars,
		a.Hard,
		a.Soft,
		a.Objectives,
	)
	if err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// FinishRun sets the final status of a run. runErr may be nil.
func (s *Store) FinishRun(ctx context.Context, runID string, runErr error) error {
	status, msg := StatusOK, ""
	if runErr != nil {
		status, msg = StatusFailed, runErr.Error()
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, error = ? WHERE id = ?
	`, status, msg, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run: unknown run %q", runID)
	}
	return nil
}
