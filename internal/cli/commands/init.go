package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/maive-lab/mockcsv/internal/cli/config"
	"github.com/maive-lab/mockcsv/internal/cli/output"
	"github.com/maive-lab/mockcsv/internal/record"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// starterConfig is the project file written by init.
type starterConfig struct {
	SourceDir            string   `yaml:"source_dir"`
	OutDir               string   `yaml:"out_dir"`
	ModulePath           string   `yaml:"module_path"`
	ModuleFormat         string   `yaml:"module_format"`
	Suffix               string   `yaml:"suffix"`
	Extensions           []string `yaml:"extensions"`
	Exclude              []string `yaml:"exclude"`
	IncrementProbability float64  `yaml:"increment_probability"`
}

const starterHeader = `# mockcsv project configuration.
# Every key can be overridden with a MOCKCSV_<KEY> environment variable
# or the matching command-line flag.
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new mockcsv project",
		Long: `Initialize a new mockcsv project with a source directory and configuration.

This creates:
  - data/ directory for source tables
  - mockcsv.yaml configuration file`,
		Example: `  # Initialize in current directory
  mockcsv init

  # Initialize in a new directory
  mockcsv init my-project

  # Force overwrite existing config
  mockcsv init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			// Create renderer
			cfg := getConfig()
			mode := output.Mode(cfg.OutputFormat)
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	// Create directory if specified and doesn't exist
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Check if config already exists
	configPath := filepath.Join(dir, config.ConfigFileNames[0])
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", config.ConfigFileNames[0])
	}

	content, err := renderStarterConfig()
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	if err := os.WriteFile(configPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	sourceDir := filepath.Join(dir, config.DefaultSourceDir)
	if err := os.MkdirAll(sourceDir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", sourceDir, err)
	}

	r.StatusLine(config.ConfigFileNames[0], "success", "")
	r.StatusLine(config.DefaultSourceDir+"/", "success", "")

	r.Println("")
	r.Success("mockcsv project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Copy your source tables (.csv) into data/")
	r.Println("  2. Run 'mockcsv inspect data/<file>' to check column detection")
	r.Println("  3. Run 'mockcsv generate' to build the mock datasets")

	return nil
}

func renderStarterConfig() ([]byte, error) {
	starter := starterConfig{
		SourceDir:            config.DefaultSourceDir,
		OutDir:               config.DefaultOutDir,
		ModulePath:           config.DefaultModulePath,
		ModuleFormat:         config.DefaultModuleFormat,
		Suffix:               config.DefaultSuffix,
		Extensions:           config.DefaultExtensions,
		Exclude:              config.DefaultExclude,
		IncrementProbability: record.DefaultIncrementProbability,
	}

	var buf bytes.Buffer
	buf.WriteString(starterHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(starter); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
