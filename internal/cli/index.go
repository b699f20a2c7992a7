package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/flowatlas/atlasctl/internal/catalog"
)

// IndexOptions holds flags for the index command.
type IndexOptions struct {
	*RootOptions
	Stream string
	DB     string
}

// indexSummary is the index command's success payload.
type indexSummary struct {
	catalog.BuildStats
	Categories      []catalog.Bucket `json:"categories"`
	TopIntegrations []catalog.Bucket `json:"top_integrations"`
}

// topIntegrationLimit bounds the integration listing in the summary.
const topIntegrationLimit = 10

// NewIndexCommand creates the index command.
func NewIndexCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IndexOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build an SQLite index over the merged stream",
		Long: `Read the merged stream into an SQLite catalog: one row per record
plus its integrations, so per-category and per-integration questions
become plain SQL. Rebuilding over the same stream replaces rows in place.

Example:
  atlasctl index
  atlasctl index --stream ./data/merged_workflows.jsonl --db ./data/catalog.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Stream, "stream", "", "merged stream path (default from config)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "catalog database path (default from config)")

	return cmd
}

func runIndex(opts *IndexOptions, cmd *cobra.Command) error {
	configureLogging(opts.RootOptions)
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadPipeline(opts.RootOptions)
	if err != nil {
		_ = formatter.Error(ErrCodeBadConfig, err.Error(), nil)
		return err
	}
	stream := orDefault(opts.Stream, cfg.MergedStream)
	dbPath := orDefault(opts.DB, cfg.CatalogPath)

	slog.Info("indexing stream", "stream", stream, "db", dbPath)
	cat, err := catalog.Open(dbPath)
	if err != nil {
		_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open catalog", err)
	}
	defer func() {
		if closeErr := cat.Close(); closeErr != nil {
			slog.Error("error closing catalog", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	stats, err := cat.BuildFromStream(ctx, stream)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "index failed", err)
	}

	categories, err := cat.CategoryCounts(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to summarize catalog", err)
	}
	top, err := cat.TopIntegrations(ctx, topIntegrationLimit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to summarize catalog", err)
	}
	summary := indexSummary{BuildStats: stats, Categories: categories, TopIntegrations: top}

	if opts.Format == "json" {
		return formatter.Success(summary)
	}

	fmt.Fprintf(formatter.Writer, "indexed %d records (%d errors) -> %s\n",
		stats.Indexed, stats.Errors, dbPath)
	fmt.Fprintln(formatter.Writer, "\ncategories:")
	for _, b := range categories {
		fmt.Fprintf(formatter.Writer, "  %-30s %d\n", b.Label, b.Count)
	}
	fmt.Fprintln(formatter.Writer, "\ntop integrations:")
	for _, b := range top {
		fmt.Fprintf(formatter.Writer, "  %-30s %d\n", b.Label, b.Count)
	}
	return nil
}
