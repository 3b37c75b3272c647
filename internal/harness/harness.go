package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespio/omtmzn/internal/compiler"
	"github.com/cespio/omtmzn/internal/config"
	"github.com/cespio/omtmzn/internal/ir"
	"github.com/cespio/omtmzn/internal/store"
	"github.com/cespio/omtmzn/internal/testutil"
	"github.com/cespio/omtmzn/internal/translate"
)

// OutputName is the base name of files emitted by scenarios.
const OutputName = "out.mzn"

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh temp directory with a fresh in-memory ledger.
// A translation error is not a harness error: it is recorded in the result
// and checked against expect.error. The returned error reports problems with
// the harness itself (temp dir, ledger).
//
// Execution flow:
// 1. Create temp output directory and in-memory ledger
// 2. Translate the script with the scenario's settings
// 3. Read back emitted files and their ledger strategies
// 4. Evaluate expectations
func Run(scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "omtmzn-scenario-")
	if err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	defer os.RemoveAll(dir)

	ledger, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory ledger: %w", err)
	}
	defer ledger.Close()

	opts, err := compileOptions(scenario.Config)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	res, terr := translate.Script(ctx, scenario.Script, translate.Options{
		Output:     filepath.Join(dir, OutputName),
		ScriptPath: scenario.Name,
		Compile:    opts,
		Ledger:     ledger,
		RunIDs:     testutil.NewFixedRunIDGenerator("scenario-" + scenario.Name),
	})
	if res == nil {
		// Ledger failures happen before translation starts.
		return nil, terr
	}

	result := NewResult(scenario.Name)
	if terr != nil {
		result.Err = terr
		result.ErrorCode = string(ir.CodeOf(terr))
		if result.ErrorCode == "" {
			result.ErrorCode = "ERROR"
		}
	}

	for _, path := range res.Paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read emitted file: %w", err)
		}
		result.Files = append(result.Files, File{Name: filepath.Base(path), Content: string(data)})
	}

	artifacts, err := ledger.ReadArtifacts(ctx, res.RunID)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	for _, a := range artifacts {
		result.Strategies = append(result.Strategies, a.Strategy)
	}

	for _, msg := range EvaluateExpect(result, scenario.Expect) {
		result.AddError(msg)
	}
	return result, nil
}

func compileOptions(cfg *config.Config) (compiler.Options, error) {
	c := config.Default()
	if cfg != nil {
		c = *cfg
	}
	if err := c.Validate(); err != nil {
		return compiler.Options{}, fmt.Errorf("invalid scenario config: %w", err)
	}
	sort, err := c.SoftSort()
	if err != nil {
		return compiler.Options{}, fmt.Errorf("invalid scenario config: %w", err)
	}
	return compiler.Options{
		MergeAssertions: c.MergeAssertions,
		SoftIDType:      sort,
	}, nil
}
