package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cespio/omtmzn/internal/ir"
	"github.com/cespio/omtmzn/internal/store"
)

// seedLedger creates a ledger with one successful and one failed run.
func seedLedger(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runs.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	for _, id := range []string{"run-ok", "run-bad"} {
		require.NoError(t, st.BeginRun(ctx, store.Run{
			ID:                id,
			ScriptPath:        id + ".smt2",
			ScriptHash:        ir.ScriptHash(id),
			OutputBase:        "out.mzn",
			TranslatorVersion: ir.TranslatorVersion,
			OutputVersion:     ir.OutputVersion,
		}))
	}
	require.NoError(t, st.WriteArtifact(ctx, store.Artifact{
		RunID:       "run-ok",
		CheckPoint:  1,
		Path:        "out_1.mzn",
		ContentHash: ir.ArtifactHash([]byte("solve satisfy;\n")),
		Strategy:    "satisfy",
	}))
	require.NoError(t, st.FinishRun(ctx, "run-ok", nil))
	require.NoError(t, st.FinishRun(ctx, "run-bad", errors.New("SCOPE_UNDERFLOW: pop 1 with 0 open scopes")))
	return path
}

func executeHistory(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewHistoryCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestHistory_ListRuns(t *testing.T) {
	ledger := seedLedger(t)

	out, err := executeHistory(t, "text", "--ledger", ledger)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ run-ok  ok  run-ok.smt2  1 model(s)")
	assert.Contains(t, out, "1  satisfy  out_1.mzn")
	assert.Contains(t, out, "✗ run-bad  failed")
	assert.Contains(t, out, "error: SCOPE_UNDERFLOW")
}

func TestHistory_Limit(t *testing.T) {
	ledger := seedLedger(t)

	out, err := executeHistory(t, "json", "--ledger", ledger, "--limit", "1")
	require.NoError(t, err)

	var resp struct {
		Data HistoryResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Runs, 1)
	assert.Equal(t, "run-bad", resp.Data.Runs[0].ID, "limit keeps the most recent runs")
	assert.Empty(t, resp.Data.Runs[0].Artifacts)
}

func TestHistory_SingleRun(t *testing.T) {
	ledger := seedLedger(t)

	out, err := executeHistory(t, "json", "--ledger", ledger, "run-ok")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   HistoryResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Runs, 1)
	assert.Equal(t, store.StatusOK, resp.Data.Runs[0].Status)
	require.Len(t, resp.Data.Runs[0].Artifacts, 1)
	assert.Equal(t, "out_1.mzn", resp.Data.Runs[0].Artifacts[0].Path)
}

func TestHistory_UnknownRun(t *testing.T) {
	ledger := seedLedger(t)

	_, err := executeHistory(t, "text", "--ledger", ledger, "run-missing")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "run not found")
}

func TestHistory_ByHash(t *testing.T) {
	ledger := seedLedger(t)

	out, err := executeHistory(t, "text", "--ledger", ledger, "--hash", ir.ArtifactHash([]byte("solve satisfy;\n")))
	require.NoError(t, err)
	assert.Contains(t, out, "run-ok  check-point 1  out_1.mzn")

	out, err = executeHistory(t, "text", "--ledger", ledger, "--hash", "0000")
	require.NoError(t, err)
	assert.Contains(t, out, "No artifacts found.")
}

func TestHistory_MissingLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")

	_, err := executeHistory(t, "text", "--ledger", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.NoFileExists(t, path)
}

func TestHistory_RequiresLedgerFlag(t *testing.T) {
	_, err := executeHistory(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger")
}
