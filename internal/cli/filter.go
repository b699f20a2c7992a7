package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/flowatlas/atlasctl/internal/quality"
)

// FilterOptions holds flags for the filter command.
type FilterOptions struct {
	*RootOptions
	Workflows string
	Output    string
	MinScore  int
}

// NewFilterCommand creates the filter command.
func NewFilterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FilterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Keep only workflows that pass quality scoring",
		Long: `Validate and score every workflow in the tree, keeping those at or
above the minimum score. Writes training_data.jsonl and
high_quality_workflows.jsonl into the output directory, best first.

Example:
  atlasctl filter
  atlasctl filter --min-score 70 --output ./rag_dataset`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Workflows, "workflows", "", "workflow tree root (default from config)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output directory (default from config)")
	cmd.Flags().IntVar(&opts.MinScore, "min-score", 0, fmt.Sprintf("minimum quality score (default %d)", quality.DefaultMinScore))

	return cmd
}

func runFilter(opts *FilterOptions, cmd *cobra.Command) error {
	configureLogging(opts.RootOptions)
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadPipeline(opts.RootOptions)
	if err != nil {
		_ = formatter.Error(ErrCodeBadConfig, err.Error(), nil)
		return err
	}
	runOpts := quality.Options{
		WorkflowsRoot: orDefault(opts.Workflows, cfg.WorkflowsRoot),
		OutputDir:     orDefault(opts.Output, cfg.RAGDatasetDir),
		MinScore:      opts.MinScore,
	}

	slog.Info("filtering workflows", "root", runOpts.WorkflowsRoot, "output", runOpts.OutputDir)
	stats, err := quality.Run(runOpts)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "filter failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(stats)
	}
	return formatter.Success(fmt.Sprintf(
		"kept %d of %d workflows -> %s", stats.Kept, stats.Scanned, runOpts.OutputDir))
}
