package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, t.TempDir(), `
name: test_scenario
description: "Test scenario for validation"
script: |
  (check-sat)
config:
  soft_id_type: BV8
expect:
  files: 1
  strategies: [satisfy]
  contains:
    - file: 1
      text: "solve satisfy;"
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "(check-sat)\n", scenario.Script)
	require.NotNil(t, scenario.Config)
	assert.Equal(t, "BV8", scenario.Config.SoftIDType)
	require.NotNil(t, scenario.Expect.Files)
	assert.Equal(t, 1, *scenario.Expect.Files)
	assert.Equal(t, []TextClause{{File: 1, Text: "solve satisfy;"}}, scenario.Expect.Contains)
}

func TestLoadScenario_ScriptFile(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "soft_group.yaml"))
	require.NoError(t, err)

	assert.Contains(t, scenario.Script, "(assert-soft x :weight 3 :id g)")
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown field", "name: a\ndescription: b\nscript: x\nexpects: {}\n", "failed to parse YAML"},
		{"missing name", "description: b\nscript: x\n", "name is required"},
		{"missing description", "name: a\nscript: x\n", "description is required"},
		{"missing script", "name: a\ndescription: b\n", "script or script_file is required"},
		{"both scripts", "name: a\ndescription: b\nscript: x\nscript_file: y.smt2\n", "mutually exclusive"},
		{"missing script file", "name: a\ndescription: b\nscript_file: nope.smt2\n", "script_file"},
		{"bad config", "name: a\ndescription: b\nscript: x\nconfig:\n  soft_id_type: String\n", "config"},
		{"negative files", "name: a\ndescription: b\nscript: x\nexpect:\n  files: -1\n", "expect.files"},
		{"clause without text", "name: a\ndescription: b\nscript: x\nexpect:\n  contains:\n    - file: 1\n", "expect.contains[0]: text is required"},
		{"clause file zero", "name: a\ndescription: b\nscript: x\nexpect:\n  absent:\n    - file: 0\n      text: y\n", "expect.absent[0]: file must be >= 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, t.TempDir(), tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
