package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/flowatlas/atlasctl/internal/split"
)

// SplitOptions holds flags for the split command.
type SplitOptions struct {
	*RootOptions
	Stream string
	Output string
}

// NewSplitCommand creates the split command.
func NewSplitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SplitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Write each stream record back out as a file",
		Long: `Redistribute the merged stream into a category tree, one
pretty-printed JSON file per record.

Generated and archetype-tagged records land under synthetic (grouped by
archetype), external-community records under external, the rest under
their own category or uncategorized. Name collisions get numeric suffixes.

Example:
  atlasctl split
  atlasctl split --stream ./data/merged_workflows.jsonl --output ./workflows`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Stream, "stream", "", "merged stream path (default from config)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output tree root (default from config)")

	return cmd
}

func runSplit(opts *SplitOptions, cmd *cobra.Command) error {
	configureLogging(opts.RootOptions)
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadPipeline(opts.RootOptions)
	if err != nil {
		_ = formatter.Error(ErrCodeBadConfig, err.Error(), nil)
		return err
	}
	runOpts := split.Options{
		StreamPath: orDefault(opts.Stream, cfg.MergedStream),
		OutputRoot: orDefault(opts.Output, cfg.WorkflowsRoot),
	}

	slog.Info("splitting stream", "stream", runOpts.StreamPath, "root", runOpts.OutputRoot)
	stats, err := split.Run(runOpts)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "split failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(stats)
	}
	return formatter.Success(fmt.Sprintf(
		"split %d records (repository %d, synthetic %d, external %d, duplicates %d, errors %d) -> %s",
		stats.Total, stats.Repository, stats.Synthetic, stats.External, stats.Duplicates,
		stats.Errors, runOpts.OutputRoot))
}
