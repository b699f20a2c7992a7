package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/flowatlas/atlasctl/internal/archetype"
)

// ArchetypesOptions holds flags for the archetypes command.
type ArchetypesOptions struct {
	*RootOptions
	Workflows   string
	Output      string
	PerCategory int
}

// NewArchetypesCommand creates the archetypes command.
func NewArchetypesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ArchetypesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "archetypes",
		Short: "Extract template workflows by semantic label",
		Long: `Group labeled workflows by meta.semanticLabel, score each group,
and keep the best few per label as generation templates.

Example:
  atlasctl archetypes
  atlasctl archetypes --per-category 4 --output ./archetypes`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchetypes(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Workflows, "workflows", "", "workflow tree root (default from config)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "archetypes directory (default from config)")
	cmd.Flags().IntVar(&opts.PerCategory, "per-category", 0, fmt.Sprintf("archetypes kept per label (default %d)", archetype.DefaultPerCategory))

	return cmd
}

func runArchetypes(opts *ArchetypesOptions, cmd *cobra.Command) error {
	configureLogging(opts.RootOptions)
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadPipeline(opts.RootOptions)
	if err != nil {
		_ = formatter.Error(ErrCodeBadConfig, err.Error(), nil)
		return err
	}
	runOpts := archetype.Options{
		WorkflowsRoot: orDefault(opts.Workflows, cfg.WorkflowsRoot),
		OutputDir:     orDefault(opts.Output, cfg.ArchetypesDir),
		PerCategory:   opts.PerCategory,
	}

	slog.Info("extracting archetypes", "root", runOpts.WorkflowsRoot, "output", runOpts.OutputDir)
	stats, err := archetype.Run(runOpts)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "archetype extraction failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(stats)
	}
	return formatter.Success(fmt.Sprintf(
		"wrote %d archetypes across %d labels (valid %d, invalid %d, unlabeled %d)",
		stats.Written, stats.Categories, stats.Valid, stats.Invalid, stats.NoLabel))
}
