package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/flowatlas/atlasctl/internal/schema"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Stream string
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Checked int      `json:"checked"`
	Invalid int      `json:"invalid"`
	Issues  []string `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate [workflows-dir]",
		Short: "Check workflows against the schema",
		Long: `Validate workflow files, or merged-stream records with --stream,
against the embedded schema. Violations are reported with file or line
context and counted; any violation fails the command.

Example:
  atlasctl validate ./workflows
  atlasctl validate --stream ./data/merged_workflows.jsonl`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) > 0 {
				dir = args[0]
			}
			return runValidate(opts, dir, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Stream, "stream", "", "validate stream records instead of a workflow tree")

	return cmd
}

func runValidate(opts *ValidateOptions, dir string, cmd *cobra.Command) error {
	configureLogging(opts.RootOptions)
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Stream == "" && dir == "" {
		cfg, err := loadPipeline(opts.RootOptions)
		if err != nil {
			_ = formatter.Error(ErrCodeBadConfig, err.Error(), nil)
			return err
		}
		dir = cfg.WorkflowsRoot
	}

	validator, err := schema.NewValidator()
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to compile schema", err)
	}

	var stats schema.Stats
	var issues []schema.Issue
	if opts.Stream != "" {
		slog.Info("validating stream", "stream", opts.Stream)
		stats, issues, err = validator.CheckStream(opts.Stream)
	} else {
		slog.Info("validating workflow tree", "root", dir)
		stats, issues, err = validator.CheckTree(dir)
	}
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "validate failed", err)
	}

	result := ValidationResult{Checked: stats.Checked, Invalid: stats.Invalid}
	for _, issue := range issues {
		result.Issues = append(result.Issues, issue.String())
	}

	if stats.Invalid > 0 {
		if opts.Format == "json" {
			_ = formatter.Error(ErrCodeInvalidData,
				fmt.Sprintf("%d of %d documents failed validation", stats.Invalid, stats.Checked),
				result)
		} else {
			for _, issue := range result.Issues {
				fmt.Fprintln(formatter.Writer, issue)
			}
			fmt.Fprintf(formatter.Writer, "\n%d of %d documents failed validation\n",
				stats.Invalid, stats.Checked)
		}
		return NewExitError(ExitFailure,
			fmt.Sprintf("validation failed with %d issue(s)", stats.Invalid))
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(fmt.Sprintf("%d documents valid", stats.Checked))
}
