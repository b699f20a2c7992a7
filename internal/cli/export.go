package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/flowatlas/atlasctl/internal/export"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Workflows string
	Output    string
	Folders   []string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a training-ready instruction dataset",
		Long: `Walk the configured folders and write train.jsonl (one
instruction/output example per structurally sound workflow) plus
metadata.json with dataset totals and a category histogram.

Example:
  atlasctl export
  atlasctl export --output ./hf_dataset --folders synthetic_v2,external`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Workflows, "workflows", "", "workflow tree root (default from config)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "dataset directory (default from config)")
	cmd.Flags().StringSliceVar(&opts.Folders, "folders", nil, "folders to export, in order (default from config)")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	configureLogging(opts.RootOptions)
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadPipeline(opts.RootOptions)
	if err != nil {
		_ = formatter.Error(ErrCodeBadConfig, err.Error(), nil)
		return err
	}
	folders := opts.Folders
	if len(folders) == 0 {
		folders = cfg.ExportFolders
	}
	runOpts := export.Options{
		WorkflowsRoot: orDefault(opts.Workflows, cfg.WorkflowsRoot),
		OutputDir:     orDefault(opts.Output, cfg.HFDatasetDir),
		Folders:       folders,
	}

	slog.Info("exporting dataset", "root", runOpts.WorkflowsRoot, "output", runOpts.OutputDir)
	stats, err := export.Run(runOpts)
	if err != nil {
		_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "export failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(stats)
	}
	return formatter.Success(fmt.Sprintf(
		"exported %d examples (skipped %d) -> %s", stats.Valid, stats.Invalid, runOpts.OutputDir))
}
