// Package config holds the pipeline layout: where each stage reads and
// writes, which directories are reserved, and the generation knobs.
// Defaults mirror the repository's conventional layout so every stage
// runs with no configuration at all; a YAML file can override any field.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Pipeline is the full stage configuration.
type Pipeline struct {
	// WorkflowsRoot is the category-directory tree.
	WorkflowsRoot string `yaml:"workflows_root"`

	// MergedStream is the canonical consolidated form of the dataset.
	MergedStream string `yaml:"merged_stream"`

	// SyntheticStream and ExternalStream are the pre-merged
	// line-delimited contributions.
	SyntheticStream string `yaml:"synthetic_stream"`
	ExternalStream  string `yaml:"external_stream"`

	// ReservedDirs are skipped when consolidating the tree; their
	// content arrives via the streams above.
	ReservedDirs []string `yaml:"reserved_dirs"`

	// RenameFolders are the directories the renamer processes.
	RenameFolders []string `yaml:"rename_folders"`

	// ArchetypesDir receives extracted archetypes and feeds generation.
	ArchetypesDir string `yaml:"archetypes_dir"`

	// SyntheticOutput receives generated workflows.
	SyntheticOutput string `yaml:"synthetic_output"`

	// Variations and Seed drive synthetic generation.
	Variations int   `yaml:"variations"`
	Seed       int64 `yaml:"seed"`

	// RAGDatasetDir and HFDatasetDir receive the filtered and
	// training-ready exports.
	RAGDatasetDir string `yaml:"rag_dataset_dir"`
	HFDatasetDir  string `yaml:"hf_dataset_dir"`

	// ExportFolders are the directories the exporter scans, in order.
	ExportFolders []string `yaml:"export_folders"`

	// CatalogPath is the SQLite index built by the index stage.
	CatalogPath string `yaml:"catalog_path"`
}

// Default returns the conventional repository layout.
func Default() Pipeline {
	return Pipeline{
		WorkflowsRoot:   "workflows",
		MergedStream:    filepath.Join("data", "merged_workflows.jsonl"),
		SyntheticStream: filepath.Join("data", "synthetic_workflows.jsonl"),
		ExternalStream:  filepath.Join("data", "external_workflows.jsonl"),
		ReservedDirs:    []string{"synthetic", "synthetic_v2"},
		RenameFolders:   []string{"synthetic", "external"},
		ArchetypesDir:   "archetypes",
		SyntheticOutput: filepath.Join("workflows", "synthetic_v2"),
		Variations:      1000,
		Seed:            42,
		RAGDatasetDir:   "rag_dataset",
		HFDatasetDir:    "hf_dataset",
		ExportFolders:   []string{"synthetic_v2", "synthetic", "external", "ai-automation-lab", "initial_megapack"},
		CatalogPath:     filepath.Join("data", "catalog.db"),
	}
}

// Load reads a YAML override file on top of the defaults. Unknown fields
// are rejected so typos surface instead of silently falling back.
func Load(path string) (Pipeline, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
