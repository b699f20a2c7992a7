package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/flowatlas/atlasctl/internal/consolidate"
)

// ConsolidateOptions holds flags for the consolidate command.
type ConsolidateOptions struct {
	*RootOptions
	Workflows string
	Synthetic string
	External  string
	Output    string
}

// NewConsolidateCommand creates the consolidate command.
func NewConsolidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConsolidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "consolidate",
		Short: "Merge workflows into one line-delimited stream",
		Long: `Merge the on-disk workflow tree and the pre-merged synthetic and
external streams into a single line-delimited dataset.

Repository files come first in category order, then the synthetic stream,
then the external stream. Files that fail to parse are counted and skipped.

Example:
  atlasctl consolidate
  atlasctl consolidate --workflows ./workflows --output ./data/merged_workflows.jsonl`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsolidate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Workflows, "workflows", "", "workflow tree root (default from config)")
	cmd.Flags().StringVar(&opts.Synthetic, "synthetic", "", "synthetic stream path (default from config)")
	cmd.Flags().StringVar(&opts.External, "external", "", "external stream path (default from config)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "merged stream path (default from config)")

	return cmd
}

func runConsolidate(opts *ConsolidateOptions, cmd *cobra.Command) error {
	configureLogging(opts.RootOptions)
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadPipeline(opts.RootOptions)
	if err != nil {
		_ = formatter.Error(ErrCodeBadConfig, err.Error(), nil)
		return err
	}
	runOpts := consolidate.Options{
		WorkflowsRoot: orDefault(opts.Workflows, cfg.WorkflowsRoot),
		SyntheticPath: orDefault(opts.Synthetic, cfg.SyntheticStream),
		ExternalPath:  orDefault(opts.External, cfg.ExternalStream),
		OutputPath:    orDefault(opts.Output, cfg.MergedStream),
		Reserved:      cfg.ReservedDirs,
	}

	slog.Info("consolidating workflows", "root", runOpts.WorkflowsRoot, "output", runOpts.OutputPath)
	stats, err := consolidate.Run(runOpts)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "consolidate failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(stats)
	}
	return formatter.Success(fmt.Sprintf(
		"consolidated %d records (repository %d, synthetic %d, external %d, parse errors %d) -> %s",
		stats.Total(), stats.Repository, stats.Synthetic, stats.External, stats.ParseErrors,
		runOpts.OutputPath))
}

// orDefault returns the flag value when set, otherwise the config value.
func orDefault(flag, cfg string) string {
	if flag != "" {
		return flag
	}
	return cfg
}
