package config

import (
	"fmt"
	"os"
	"slices"

	"github.com/maive-lab/mockcsv/internal/cli/output"
	"github.com/maive-lab/mockcsv/internal/materialize"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.SourceDir == "" {
		return fmt.Errorf("source_dir is required")
	}
	if c.OutDir == "" {
		return fmt.Errorf("out_dir is required")
	}
	if c.ModulePath == "" {
		return fmt.Errorf("module_path is required")
	}
	if len(c.Extensions) == 0 {
		return fmt.Errorf("extensions must list at least one extension")
	}
	if _, err := materialize.ParseFormat(c.ModuleFormat); err != nil {
		return fmt.Errorf("invalid module_format: %w", err)
	}
	if c.IncrementProbability < 0 || c.IncrementProbability > 1 {
		return fmt.Errorf("increment_probability must be within [0, 1], got %v", c.IncrementProbability)
	}
	if c.SampleBytes <= 0 {
		return fmt.Errorf("sample_bytes must be positive, got %d", c.SampleBytes)
	}
	if c.OutputFormat != "" && !slices.Contains(output.Modes, output.Mode(c.OutputFormat)) {
		return fmt.Errorf("invalid output format %q (want auto, text, markdown or json)", c.OutputFormat)
	}
	return nil
}

// ValidateDirectories checks if the source directory exists.
func (c *Config) ValidateDirectories() error {
	if _, err := os.Stat(c.SourceDir); os.IsNotExist(err) {
		return fmt.Errorf("source directory does not exist: %s\nHint: Create the directory or use --source-dir to specify a different path", c.SourceDir)
	}
	return nil
}
