package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cespio/omtmzn/internal/preprocess"
)

// PreprocessOptions holds flags for the preprocess command.
type PreprocessOptions struct {
	*RootOptions
	ConfigPath string
	SoftIDType string
}

// NewPreprocessCommand creates the preprocess command.
func NewPreprocessCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PreprocessOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "preprocess <script.smt2>",
		Short: "Print the normalized script",
		Long: `Print the script as the parser sees it: comments stripped, option
keywords re-spaced and a declaration inserted before the first use of
every soft-assertion group id.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreprocess(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (.yaml, .yml or .cue)")
	cmd.Flags().StringVar(&opts.SoftIDType, "soft-id-type", "", "sort of soft-assertion group ids (Int, Real, BV<n>)")

	return cmd
}

func runPreprocess(opts *PreprocessOptions, scriptPath string, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	cfg, err := resolveConfig(cmd, opts.ConfigPath, opts.SoftIDType, false, "")
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

	out := preprocess.New(compileOpts.SoftIDType).Process(script)
	if formatter.JSON() {
		return formatter.Success(map[string]string{"script": out})
	}
	fmt.Fprint(formatter.Writer, out)
	return nil
}
