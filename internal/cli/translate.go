package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cespio/omtmzn/internal/compiler"
	"github.com/cespio/omtmzn/internal/config"
	"github.com/cespio/omtmzn/internal/engine"
	"github.com/cespio/omtmzn/internal/store"
	"github.com/cespio/omtmzn/internal/translate"
)

// TranslateOptions holds flags for the translate command.
type TranslateOptions struct {
	*RootOptions
	Output          string // base output path
	ConfigPath      string // YAML or CUE config file
	SoftIDType      string // overrides config soft_id_type
	MergeAssertions bool   // overrides config merge_assertions
	Ledger          string // optional SQLite ledger path

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// TranslationSummary is the success payload of the translate command.
type TranslationSummary struct {
	RunID     string           `json:"run_id"`
	Files     []string         `json:"files"`
	Artifacts []store.Artifact `json:"artifacts"`
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	return newTranslateCommand(&TranslateOptions{RootOptions: rootOpts})
}

func newTranslateCommand(opts *TranslateOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate <script.smt2>",
		Short: "Translate an OMT script to MiniZinc",
		Long: `Translate an SMT-LIB optimization script to MiniZinc.

Each check-sat writes one model. With --output out.mzn the first model is
out_1.mzn, the second out_2.mzn, and so on. Use "-" to read the script
from stdin.

Flags override values from --config.

Examples:
  omtmzn translate model.smt2
  omtmzn translate model.smt2 -o build/model.mzn --soft-id-type Real
  omtmzn translate model.smt2 --config omtmzn.yaml --ledger runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "base output path (default "+translate.DefaultOutput+")")
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (.yaml, .yml or .cue)")
	cmd.Flags().StringVar(&opts.SoftIDType, "soft-id-type", "", "sort of soft-assertion group ids (Int, Real, BV<n>)")
	cmd.Flags().BoolVar(&opts.MergeAssertions, "merge-assertions", false, "merge hard assertions into one constraint")
	cmd.Flags().StringVar(&opts.Ledger, "ledger", "", "path to SQLite ledger recording the run")

	return cmd
}

// resolveConfig loads the config file and applies flag overrides.
func resolveConfig(cmd *cobra.Command, configPath, softIDType string, merge bool, output string) (config.Config, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if cmd.Flags().Changed("soft-id-type") {
		cfg.SoftIDType = softIDType
	}
	if cmd.Flags().Changed("merge-assertions") {
		cfg.MergeAssertions = merge
	}
	if output != "" {
		cfg.Output = output
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, &LoadError{Code: ErrCodeInvalidConfig, Message: err.Error()}
	}
	return cfg, nil
}

func compileOptions(cfg config.Config) (compiler.Options, error) {
	sort, err := cfg.SoftSort()
	if err != nil {
		return compiler.Options{}, &LoadError{Code: ErrCodeInvalidConfig, Message: err.Error()}
	}
	return compiler.Options{MergeAssertions: cfg.MergeAssertions, SoftIDType: sort}, nil
}

func runTranslate(opts *TranslateOptions, scriptPath string, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	cfg, err := resolveConfig(cmd, opts.ConfigPath, opts.SoftIDType, opts.MergeAssertions, opts.Output)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	compileOpts, err := compileOptions(cfg)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	script, err := ReadScript(scriptPath, cmd.InOrStdin())
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("Read %d byte(s) from %s", len(script), scriptPath)

	topts := translate.Options{
		Output:     cfg.Output,
		ScriptPath: scriptPath,
		Compile:    compileOpts,
		RunIDs:     opts.RunIDs,
	}

	if opts.Ledger != "" {
		st, err := store.Open(opts.Ledger)
		if err != nil {
			return outputLoadError(formatter, &LoadError{Code: ErrCodeLedger, Message: err.Error()})
		}
		defer st.Close()
		topts.Ledger = st
		formatter.VerboseLog("Recording run in %s", opts.Ledger)
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	res, err := translate.Script(ctx, script, topts)
	if err != nil {
		// Files already written stay on disk; report them with the error.
		var written []string
		if res != nil {
			written = res.Paths
		}
		loadErr := convertTranslateError(err)
		_ = formatter.Fail(loadErr, written)
		return WrapExitError(ExitFailure, loadErr.Code, err)
	}

	return outputTranslateSuccess(formatter, res)
}

// signalContext cancels on SIGINT/SIGTERM so an interrupted translation
// stops before the next check-point is written.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func outputTranslateSuccess(formatter *OutputFormatter, res *translate.Result) error {
	summary := TranslationSummary{
		RunID:     res.RunID,
		Files:     res.Paths,
		Artifacts: res.Artifacts,
	}
	if summary.Files == nil {
		summary.Files = []string{}
	}
	if summary.Artifacts == nil {
		summary.Artifacts = []store.Artifact{}
	}

	if formatter.JSON() {
		return formatter.Success(summary)
	}

	fmt.Fprintf(formatter.Writer, "✓ Wrote %d model(s)\n", len(res.Paths))
	for _, a := range res.Artifacts {
		fmt.Fprintf(formatter.Writer, "  %s: %s, %d var(s), %d hard, %d soft, %d objective(s)\n",
			a.Path, a.Strategy, a.Vars, a.Hard, a.Soft, a.Objectives)
	}
	formatter.VerboseLog("Run %s", res.RunID)
	return nil
}

// outputLoadError reports a command-level error (exit code 2).
func outputLoadError(formatter *OutputFormatter, err error) error {
	loadErr := convertTranslateError(err)
	_ = formatter.Fail(loadErr, nil)
	return WrapExitError(ExitCommandError, loadErr.Code, err)
}
