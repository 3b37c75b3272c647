package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid           bool   `json:"valid"`
	SoftIDType      string `json:"soft_id_type,omitempty"`
	MergeAssertions bool   `json:"merge_assertions"`
	Output          string `json:"output,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config>",
		Short: "Validate a config file",
		Long: `Validate a YAML or CUE config file against the config schema
without translating anything. Prints the effective settings.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts)

	cfg, err := LoadConfig(path)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	result := ValidationResult{
		Valid:           true,
		SoftIDType:      cfg.SoftIDType,
		MergeAssertions: cfg.MergeAssertions,
		Output:          cfg.Output,
	}
	if formatter.JSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ %s is valid\n", path)
	fmt.Fprintf(formatter.Writer, "  soft_id_type: %s\n", result.SoftIDType)
	fmt.Fprintf(formatter.Writer, "  merge_assertions: %t\n", result.MergeAssertions)
	if result.Output != "" {
		fmt.Fprintf(formatter.Writer, "  output: %s\n", result.Output)
	}
	return nil
}
