// Package cli wires the pipeline stages into the atlasctl command tree.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowatlas/atlasctl/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the atlasctl CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "atlasctl",
		Short: "atlasctl - workflow dataset pipeline",
		Long: `Build and maintain an n8n workflow training dataset.

The pipeline consolidates on-disk workflows and pre-merged streams into a
single line-delimited dataset, splits it back out by category, filters and
scores it, extracts archetypes, generates synthetic variations, and exports
training-ready corpora.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to pipeline config YAML (defaults apply when omitted)")

	// Add subcommands
	cmd.AddCommand(NewConsolidateCommand(opts))
	cmd.AddCommand(NewSplitCommand(opts))
	cmd.AddCommand(NewRenameCommand(opts))
	cmd.AddCommand(NewAnalyzeCommand(opts))
	cmd.AddCommand(NewFilterCommand(opts))
	cmd.AddCommand(NewArchetypesCommand(opts))
	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewIndexCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// configureLogging routes slog to stderr so stage logs never mix with
// command output, at debug level when --verbose is set.
func configureLogging(opts *RootOptions) {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// loadPipeline resolves the pipeline config: defaults, overridden by the
// --config file when one is given.
func loadPipeline(opts *RootOptions) (config.Pipeline, error) {
	if opts.ConfigPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return cfg, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	return cfg, nil
}

// newFormatter builds the formatter every command prints through.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
