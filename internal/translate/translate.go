// Package translate wires the pipeline together: preprocess, parse,
// interpret, compile and write one MiniZinc file per check-point.
package translate

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cespio/omtmzn/internal/compiler"
	"github.com/cespio/omtmzn/internal/engine"
	"github.com/cespio/omtmzn/internal/ir"
	"github.com/cespio/omtmzn/internal/mzn"
	"github.com/cespio/omtmzn/internal/preprocess"
	"github.com/cespio/omtmzn/internal/smtlib"
	"github.com/cespio/omtmzn/internal/store"
)

// DefaultOutput is the base output path when none is configured.
const DefaultOutput = "out.mzn"

// Options configures a translation.
type Options struct {
	// Output is the base path; check-point i is written to OutputPath(Output, i).
	Output string

	// ScriptPath is recorded in the ledger. Informational only.
	ScriptPath string

	// Compile holds the compiler settings.
	Compile compiler.Options

	// Ledger, when set, records the run and every artifact.
	Ledger *store.Store

	// RunIDs generates the ledger run id. Defaults to UUIDv7.
	RunIDs engine.RunIDGenerator
}

// Result describes a finished translation.
type Result struct {
	RunID     string
	Paths     []string
	Artifacts []store.Artifact
}

// Emitter is the engine.BatchSink that compiles a batch and writes it
// atomically.
type Emitter struct {
	opts      compiler.Options
	ledger    *store.Store
	runID     string
	artifacts []store.Artifact
}

// NewEmitter creates an emitter. ledger may be nil.
func NewEmitter(opts compiler.Options, ledger *store.Store, runID string) *Emitter {
	return &Emitter{opts: opts, ledger: ledger, runID: runID}
}

// Artifacts returns the records of every file written so far.
func (e *Emitter) Artifacts() []store.Artifact {
	return e.artifacts
}

// Emit implements engine.BatchSink.
func (e *Emitter) Emit(ctx context.Context, path string, batch *engine.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Compile adopts group declarations, so count first.
	a := store.Artifact{
		RunID:      e.runID,
		CheckPoint: batch.Index,
		Path:       path,
		Strategy:   Strategy(batch),
		Vars:       len(batch.Vars),
		Hard:       len(batch.Hard),
		Soft:       len(batch.Soft),
		Objectives: len(batch.Objectives),
	}

	model, err := compiler.Compile(batch, e.opts)
	if err != nil {
		return err
	}
	content := model.Render()
	if err := mzn.WriteFile(path, content); err != nil {
		return fmt.Errorf("emit check-point %d: %w", batch.Index, err)
	}
	a.ContentHash = ir.ArtifactHash(content)

	if e.ledger != nil {
		if err := e.ledger.WriteArtifact(ctx, a); err != nil {
			// An unrecorded file is not an artifact of this run.
			if rmErr := os.Remove(path); rmErr != nil {
				slog.Warn("removing unrecorded model", "path", path, "error", rmErr)
			}
			return err
		}
	}
	e.artifacts = append(e.artifacts, a)
	return nil
}

// Strategy names the solve strategy a batch compiles to.
func Strategy(b *engine.Batch) string {
	switch len(b.Objectives) {
	case 0:
		return "satisfy"
	case 1:
		return "single"
	}
	return string(b.Priority)
}

// Script translates script text.
func Script(ctx context.Context, src string, opts Options) (*Result, error) {
	if opts.Output == "" {
		opts.Output = DefaultOutput
	}
	if opts.RunIDs == nil {
		opts.RunIDs = engine.UUIDv7Generator{}
	}

	res := &Result{RunID: opts.RunIDs.Generate()}
	logger := slog.With("run_id", res.RunID)

	if opts.Ledger != nil {
		err := opts.Ledger.BeginRun(ctx, store.Run{
			ID:                res.RunID,
			ScriptPath:        opts.ScriptPath,
			ScriptHash:        ir.ScriptHash(src),
			OutputBase:        opts.Output,
			TranslatorVersion: ir.TranslatorVersion,
			OutputVersion:     ir.OutputVersion,
		})
		if err != nil {
			return nil, err
		}
	}

	paths, artifacts, err := run(ctx, src, opts, res.RunID)
	res.Paths, res.Artifacts = paths, artifacts

	if opts.Ledger != nil {
		if ferr := opts.Ledger.FinishRun(ctx, res.RunID, err); ferr != nil && err == nil {
			err = ferr
		}
	}
	if err != nil {
		logger.Error("translation failed", "artifacts", len(paths), "error", err)
		return res, err
	}
	logger.Info("translation finished", "artifacts", len(paths))
	return res, nil
}

func run(ctx context.Context, src string, opts Options, runID string) ([]string, []store.Artifact, error) {
	cmds, err := smtlib.Parse(preprocess.New(opts.Compile.SoftIDType).Process(src))
	if err != nil {
		return nil, nil, err
	}

	emitter := NewEmitter(opts.Compile, opts.Ledger, runID)
	paths, err := engine.NewInterpreter(opts.Output, emitter).Run(ctx, cmds)
	return paths, emitter.Artifacts(), err
}

// File translates the script at path.
func File(ctx context.Context, path string, opts Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	if opts.ScriptPath == "" {
		opts.ScriptPath = path
	}
	return Script(ctx, string(data), opts)
}
