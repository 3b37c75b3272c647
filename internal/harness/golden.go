package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// GoldenName returns the golden fixture name for the file emitted at
// check-point index (1-based).
func GoldenName(scenarioName string, index int) string {
	return fmt.Sprintf("%s_%d", scenarioName, index)
}

// GoldenPath returns the golden file path for a check-point under dir.
func GoldenPath(dir, scenarioName string, index int) string {
	return filepath.Join(dir, GoldenName(scenarioName, index)+".golden")
}

// RunWithGolden executes a scenario and compares every emitted file against
// testdata/golden/{scenario.Name}_{i}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if a file doesn't match its golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares the files of an existing result against golden files
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for i, f := range result.Files {
		g.Assert(t, GoldenName(scenarioName, i+1), []byte(f.Content))
	}
}

// CompareGolden compares a result's files against golden files in dir.
// Returns the names of mismatched or missing golden files. A scenario
// with no golden files at all is reported as having nothing to compare.
func CompareGolden(dir, scenarioName string, result *Result) (mismatched []string, found bool, err error) {
	for i, f := range result.Files {
		path := GoldenPath(dir, scenarioName, i+1)
		want, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			mismatched = append(mismatched, filepath.Base(path)+" (missing)")
			continue
		}
		if err != nil {
			return nil, false, fmt.Errorf("failed to read golden file: %w", err)
		}
		found = true
		if !bytes.Equal(want, []byte(f.Content)) {
			mismatched = append(mismatched, filepath.Base(path))
		}
	}
	if !found {
		return nil, false, nil
	}
	return mismatched, true, nil
}

// UpdateGolden writes a result's files as the golden files in dir.
func UpdateGolden(dir, scenarioName string, result *Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	for i, f := range result.Files {
		if err := os.WriteFile(GoldenPath(dir, scenarioName, i+1), []byte(f.Content), 0644); err != nil {
			return fmt.Errorf("failed to write golden file: %w", err)
		}
	}
	return nil
}
