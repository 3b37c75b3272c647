package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cespio/omtmzn/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Ledger string
	Limit  int
	Hash   string // optional - find artifacts by content hash
}

// RunHistory is one run with its artifacts.
type RunHistory struct {
	store.Run
	Artifacts []store.Artifact `json:"artifacts"`
}

// HistoryResult holds the history output.
type HistoryResult struct {
	Runs      []RunHistory     `json:"runs,omitempty"`
	Artifacts []store.Artifact `json:"artifacts,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Query the translation ledger",
		Long: `Query the ledger written by translate --ledger.

Without arguments, lists the most recent runs. With a run id, shows that
run and every model it wrote. With --hash, lists every artifact whose
content has the given SHA-256 hash.

Examples:
  omtmzn history --ledger runs.db
  omtmzn history --ledger runs.db 0192f3c4-...
  omtmzn history --ledger runs.db --hash 9f86d0...
  omtmzn history --ledger runs.db --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return runHistory(opts, runID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Ledger, "ledger", "", "path to SQLite ledger (required)")
	_ = cmd.MarkFlagRequired("ledger")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to list")
	cmd.Flags().StringVar(&opts.Hash, "hash", "", "find artifacts by content hash")

	return cmd
}

func runHistory(opts *HistoryOptions, runID string, cmd *cobra.Command) error {
	ctx := context.Background()

	// Reading must not create an empty ledger as a side effect.
	if _, err := os.Stat(opts.Ledger); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("ledger not found: %s", opts.Ledger))
	}
	st, err := store.Open(opts.Ledger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open ledger", err)
	}
	defer st.Close()

	var result HistoryResult
	switch {
	case opts.Hash != "":
		result.Artifacts, err = st.FindArtifacts(ctx, opts.Hash)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to query artifacts", err)
		}
	case runID != "":
		run, err := st.ReadRun(ctx, runID)
		if errors.Is(err, store.ErrRunNotFound) {
			return NewExitError(ExitFailure, fmt.Sprintf("run not found: %s", runID))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read run", err)
		}
		h, err := withArtifacts(ctx, st, run)
		if err != nil {
			return err
		}
		result.Runs = []RunHistory{h}
	default:
		runs, err := st.ListRuns(ctx, opts.Limit)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		for _, run := range runs {
			h, err := withArtifacts(ctx, st, run)
			if err != nil {
				return err
			}
			result.Runs = append(result.Runs, h)
		}
	}

	if f := newFormatter(cmd, opts.RootOptions); f.JSON() {
		return f.Success(result)
	}
	return outputHistoryText(cmd, result, opts.Hash != "")
}

func withArtifacts(ctx context.Context, st *store.Store, run store.Run) (RunHistory, error) {
	artifacts, err := st.ReadArtifacts(ctx, run.ID)
	if err != nil {
		return RunHistory{}, WrapExitError(ExitCommandError, "failed to read artifacts", err)
	}
	if artifacts == nil {
		artifacts = []store.Artifact{}
	}
	return RunHistory{Run: run, Artifacts: artifacts}, nil
}

// outputHistoryText outputs the history in human-readable format.
func outputHistoryText(cmd *cobra.Command, result HistoryResult, byHash bool) error {
	w := cmd.OutOrStdout()

	if byHash {
		if len(result.Artifacts) == 0 {
			fmt.Fprintln(w, "No artifacts found.")
			return nil
		}
		for _, a := range result.Artifacts {
			fmt.Fprintf(w, "%s  check-point %d  %s\n", a.RunID, a.CheckPoint, a.Path)
		}
		return nil
	}

	if len(result.Runs) == 0 {
		fmt.Fprintln(w, "No runs found.")
		return nil
	}

	for _, r := range result.Runs {
		mark := "✓"
		if r.Status != store.StatusOK {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s  %s  %s  %d model(s)\n", mark, r.ID, r.Status, r.ScriptPath, len(r.Artifacts))
		if r.Error != "" {
			fmt.Fprintf(w, "    error: %s\n", r.Error)
		}
		for _, a := range r.Artifacts {
			fmt.Fprintf(w, "    %d  %-8s %s\n", a.CheckPoint, a.Strategy, a.Path)
		}
	}
	return nil
}
