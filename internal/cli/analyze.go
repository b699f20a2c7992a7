package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/flowatlas/atlasctl/internal/analyze"
)

// AnalyzeOptions holds flags for the analyze command.
type AnalyzeOptions struct {
	*RootOptions
	Stream string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Report node type coverage of the merged stream",
		Long: `Scan the merged stream and report which node types appear, bucketed
into keyword-derived categories with sample workflow names per type.

Example:
  atlasctl analyze
  atlasctl analyze --stream ./data/merged_workflows.jsonl --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Stream, "stream", "", "merged stream path (default from config)")

	return cmd
}

func runAnalyze(opts *AnalyzeOptions, cmd *cobra.Command) error {
	configureLogging(opts.RootOptions)
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadPipeline(opts.RootOptions)
	if err != nil {
		_ = formatter.Error(ErrCodeBadConfig, err.Error(), nil)
		return err
	}
	stream := orDefault(opts.Stream, cfg.MergedStream)

	slog.Info("analyzing node coverage", "stream", stream)
	report, err := analyze.Run(stream)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "analyze failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(report)
	}
	fmt.Fprint(formatter.Writer, report.Render())
	return nil
}
