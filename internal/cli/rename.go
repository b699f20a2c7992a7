package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/flowatlas/atlasctl/internal/rename"
)

// RenameOptions holds flags for the rename command.
type RenameOptions struct {
	*RootOptions
	Workflows string
	Folders   []string
}

// NewRenameCommand creates the rename command.
func NewRenameCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenameOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rename",
		Short: "Replace hash-like filenames with readable ones",
		Long: `Rename workflow files whose names look like hashes or numeric
prefixes to names derived from their content: the archetype plus up to
four non-utility integrations. Files already carrying descriptive names
are left alone; collisions get numeric suffixes.

Example:
  atlasctl rename
  atlasctl rename --workflows ./workflows --folders synthetic,external`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRename(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Workflows, "workflows", "", "workflow tree root (default from config)")
	cmd.Flags().StringSliceVar(&opts.Folders, "folders", nil, "category folders to process (default from config)")

	return cmd
}

func runRename(opts *RenameOptions, cmd *cobra.Command) error {
	configureLogging(opts.RootOptions)
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadPipeline(opts.RootOptions)
	if err != nil {
		_ = formatter.Error(ErrCodeBadConfig, err.Error(), nil)
		return err
	}
	folders := opts.Folders
	if len(folders) == 0 {
		folders = cfg.RenameFolders
	}
	runOpts := rename.Options{
		WorkflowsRoot: orDefault(opts.Workflows, cfg.WorkflowsRoot),
		Folders:       folders,
	}

	slog.Info("renaming workflows", "root", runOpts.WorkflowsRoot, "folders", runOpts.Folders)
	stats, err := rename.Run(runOpts)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "rename failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(stats)
	}
	return formatter.Success(fmt.Sprintf(
		"renamed %d of %d files (skipped %d, duplicates %d, errors %d)",
		stats.Renamed, stats.Processed, stats.Skipped, stats.Duplicates, stats.Errors))
}
