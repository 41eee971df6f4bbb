// Package config provides configuration management for the mockcsv CLI.
//
// Values are layered, highest precedence first: explicitly set flags,
// MOCKCSV_* environment variables, the mockcsv.yaml project file and the
// built-in defaults.
package config

import (
	"github.com/maive-lab/mockcsv/internal/materialize"
	"github.com/maive-lab/mockcsv/internal/pipeline"
	"github.com/maive-lab/mockcsv/internal/record"
	"github.com/maive-lab/mockcsv/internal/tabular"
)

// Config holds all CLI configuration options.
type Config struct {
	SourceDir  string `koanf:"source_dir"`
	OutDir     string `koanf:"out_dir"`
	ModulePath string `koanf:"module_path"`

	ModuleFormat  string `koanf:"module_format"`
	ModulePackage string `koanf:"module_package"`
	Suffix        string `koanf:"suffix"`
	NamePrefix    string `koanf:"name_prefix"`
	FilePrefix    string `koanf:"file_prefix"`

	Extensions  []string `koanf:"extensions"`
	Exclude     []string `koanf:"exclude"`
	SampleBytes int      `koanf:"sample_bytes"`
	Sheet       string   `koanf:"sheet"`

	IncrementProbability float64 `koanf:"increment_probability"`
	Seed                 *uint64 `koanf:"seed"`

	StatePath    string `koanf:"state_path"`
	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`

	// ProjectRoot is the directory relative paths resolve against: the
	// directory holding the config file, else the working directory.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultSourceDir     = "data"
	DefaultOutDir        = "maive_processed"
	DefaultModulePath    = "mockCsvFiles.ts"
	DefaultModuleFormat  = string(materialize.FormatTS)
	DefaultModulePackage = "mockdata"
	DefaultSuffix        = "maive"
	DefaultNamePrefix    = "Mock Data"
	DefaultFilePrefix    = "mock_data_"
	DefaultStateFile     = ".mockcsv/state.db"
	DefaultOutput        = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// Default list values.
var (
	DefaultExtensions = []string{".csv"}
	DefaultExclude    = []string{"(with fitted variances)"}
)

// Defaults returns the configuration used when nothing else is set.
func Defaults() map[string]any {
	return map[string]any{
		"source_dir":            DefaultSourceDir,
		"out_dir":               DefaultOutDir,
		"module_path":           DefaultModulePath,
		"module_format":         DefaultModuleFormat,
		"module_package":        DefaultModulePackage,
		"suffix":                DefaultSuffix,
		"name_prefix":           DefaultNamePrefix,
		"file_prefix":           DefaultFilePrefix,
		"extensions":            DefaultExtensions,
		"exclude":               DefaultExclude,
		"sample_bytes":          tabular.DefaultSampleBytes,
		"increment_probability": record.DefaultIncrementProbability,
		"state_path":            DefaultStateFile,
		"verbose":               false,
		"output":                DefaultOutput,
	}
}

// MaterializeOptions converts the naming and module settings.
func (c *Config) MaterializeOptions() (materialize.Options, error) {
	format, err := materialize.ParseFormat(c.ModuleFormat)
	if err != nil {
		return materialize.Options{}, err
	}
	return materialize.Options{
		Suffix:     c.Suffix,
		NamePrefix: c.NamePrefix,
		FilePrefix: c.FilePrefix,
		Format:     format,
		Package:    c.ModulePackage,
	}, nil
}

// PipelineConfig converts the configuration into a pipeline.Config. Logger
// and DryRun are left for the caller.
func (c *Config) PipelineConfig() (pipeline.Config, error) {
	opts, err := c.MaterializeOptions()
	if err != nil {
		return pipeline.Config{}, err
	}
	prob := c.IncrementProbability
	return pipeline.Config{
		SourceDir:            c.SourceDir,
		Extensions:           c.Extensions,
		Exclude:              c.Exclude,
		SampleBytes:          c.SampleBytes,
		Sheet:                c.Sheet,
		IncrementProbability: &prob,
		Seed:                 c.Seed,
		OutputDir:            c.OutDir,
		ModulePath:           c.ModulePath,
		Materialize:          opts,
	}, nil
}
