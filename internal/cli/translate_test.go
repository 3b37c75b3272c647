package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cespio/omtmzn/internal/engine"
	"github.com/cespio/omtmzn/internal/store"
)

const softScript = `(declare-fun x () Bool)
(assert-soft x :weight 3 :id g)
(check-sat)
`

type translateRun struct {
	out    string
	output string // base output path
	err    error
}

// executeTranslate runs the translate command in a temp directory with a
// fixed run id.
func executeTranslate(t *testing.T, format, script string, args ...string) translateRun {
	t.Helper()
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "model.smt2")
	require.NoError(t, os.WriteFile(scriptPath, []byte(script), 0644))
	output := filepath.Join(dir, "model.mzn")

	buf := &bytes.Buffer{}
	opts := &TranslateOptions{
		RootOptions: &RootOptions{Format: format},
		RunIDs:      engine.NewFixedGenerator("run-1"),
	}
	cmd := newTranslateCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{scriptPath, "-o", output}, args...))

	err := cmd.Execute()
	return translateRun{out: buf.String(), output: output, err: err}
}

func readModel(t *testing.T, base string, index int) string {
	t.Helper()
	data, err := os.ReadFile(engine.OutputPath(base, index))
	require.NoError(t, err)
	return string(data)
}

func TestTranslate_WritesModels(t *testing.T) {
	r := executeTranslate(t, "text", softScript+"(check-sat)\n")
	require.NoError(t, r.err)

	assert.Contains(t, r.out, "✓ Wrote 2 model(s)")
	assert.Contains(t, r.out, "satisfy, 2 var(s), 0 hard, 1 soft, 0 objective(s)")
	assert.Contains(t, readModel(t, r.output, 1), "constraint g = not(g_0)*3;\n")
	assert.Equal(t, readModel(t, r.output, 1), readModel(t, r.output, 2))
}

func TestTranslate_JSON(t *testing.T) {
	r := executeTranslate(t, "json", softScript)
	require.NoError(t, r.err)

	var response struct {
		Status string             `json:"status"`
		Data   TranslationSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(r.out), &response))
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, "run-1", response.Data.RunID)
	assert.Equal(t, []string{engine.OutputPath(r.output, 1)}, response.Data.Files)
	require.Len(t, response.Data.Artifacts, 1)
	assert.Equal(t, "satisfy", response.Data.Artifacts[0].Strategy)
}

func TestTranslate_FlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "omtmzn.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("soft_id_type: Real\nmerge_assertions: true\n"), 0644))

	script := "(declare-fun x () Bool)\n(declare-fun y () Bool)\n(assert x)\n(assert y)\n" + softScript
	r := executeTranslate(t, "text", script, "--config", cfgPath, "--merge-assertions=false")
	require.NoError(t, r.err)

	got := readModel(t, r.output, 1)
	assert.Contains(t, got, "constraint x;\nconstraint y;\n", "flag turned merging off")
	assert.Contains(t, got, "var -3.402823e+38..3.402823e+38: g;\n", "config soft id type kept")
}

func TestTranslate_CUEConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "omtmzn.cue")
	require.NoError(t, os.WriteFile(cfgPath, []byte("soft_id_type: \"BV8\"\n"), 0644))

	r := executeTranslate(t, "text", softScript, "--config", cfgPath)
	require.NoError(t, r.err)
	assert.Contains(t, readModel(t, r.output, 1), "var 0..255: g;\n")
}

func TestTranslate_InvalidConfig(t *testing.T) {
	r := executeTranslate(t, "text", softScript, "--soft-id-type", "String")
	require.Error(t, r.err)
	assert.Equal(t, ExitCommandError, GetExitCode(r.err))
	assert.Contains(t, r.out, "Error [E003]")
}

func TestTranslate_MissingConfig(t *testing.T) {
	r := executeTranslate(t, "text", softScript, "--config", "/nonexistent/omtmzn.yaml")
	require.Error(t, r.err)
	assert.Equal(t, ExitCommandError, GetExitCode(r.err))
	assert.Contains(t, r.out, "Error [E002]")
}

func TestTranslate_MissingScript(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewTranslateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.smt2")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "script not found")
}

func TestTranslate_Stdin(t *testing.T) {
	out := filepath.Join(t.TempDir(), "m.mzn")
	buf := &bytes.Buffer{}
	cmd := NewTranslateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetIn(strings.NewReader("(check-sat)\n"))
	cmd.SetArgs([]string{"-", "-o", out})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "solve satisfy;\n", readModel(t, out, 1))
}

func TestTranslate_ErrorCodes(t *testing.T) {
	tests := []struct {
		name   string
		script string
		code   string
	}{
		{"parse", "(assert (and x\n", ErrCodeParse},
		{"underflow", "(pop 1)\n", ErrCodeScopeUnderflow},
		{"weight", "(declare-fun x () Bool)\n(assert-soft x :weight x)\n(check-sat)\n", ErrCodeUnboundedWeight},
		{"priority", "(set-option :opt.priority pareto)\n(check-sat)\n", ErrCodeUnsupportedOption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := executeTranslate(t, "json", tt.script)
			require.Error(t, r.err)
			assert.Equal(t, ExitFailure, GetExitCode(r.err))

			var resp Response
			require.NoError(t, json.Unmarshal([]byte(r.out), &resp))
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestTranslate_FailureKeepsEarlierModels(t *testing.T) {
	r := executeTranslate(t, "text", "(check-sat)\n(pop 1)\n")
	require.Error(t, r.err)

	assert.Contains(t, r.out, "Error [E102]")
	assert.Contains(t, r.out, "  kept "+engine.OutputPath(r.output, 1)+"\n")
	assert.FileExists(t, engine.OutputPath(r.output, 1))
}

func TestTranslate_FailureJSONLocatesSourceLine(t *testing.T) {
	r := executeTranslate(t, "json", "; header\n(declare-fun x () Bool)\n(assert-soft x :id a)\n(check-sat)\n(pop 1)\n")
	require.Error(t, r.err)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(r.out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeScopeUnderflow, resp.Error.Code)
	assert.Equal(t, 5, resp.Error.Line)
	assert.Equal(t, []string{engine.OutputPath(r.output, 1)}, resp.Error.Written)
}

func TestTranslate_Ledger(t *testing.T) {
	ledger := filepath.Join(t.TempDir(), "runs.db")
	r := executeTranslate(t, "text", softScript, "--ledger", ledger)
	require.NoError(t, r.err)

	st, err := store.Open(ledger)
	require.NoError(t, err)
	defer st.Close()

	run, err := st.ReadRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, store.StatusOK, run.Status)
}
