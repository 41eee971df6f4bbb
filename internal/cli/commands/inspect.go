package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/maive-lab/mockcsv/internal/cli/output"
	"github.com/maive-lab/mockcsv/internal/pipeline"
	"github.com/maive-lab/mockcsv/internal/record"
	"github.com/maive-lab/mockcsv/internal/schema"
	"github.com/spf13/cobra"
)

// InspectOptions holds options for the inspect command.
type InspectOptions struct {
	Limit int
	Seed  uint64
}

// InspectOutput is the JSON form of an inspection.
type InspectOutput struct {
	Table   pipeline.TableOutcome `json:"table"`
	Preview []record.Record       `json:"preview"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	opts := &InspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show how one source table would be interpreted",
		Long: `Sniff the delimiter of a single source, resolve its column roles and preview
the normalized records it would contribute. Nothing is written.

The "via" column names the resolution pass that chose each column; "default"
means no header matched and the positional fallback was used.`,
		Example: `  # Inspect a source table
  mockcsv inspect data/trial.csv

  # Preview more rows with a fixed seed
  mockcsv inspect data/trial.csv --limit 20 --seed 7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 10, "Number of records to preview")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "Seed for synthetic study groups")

	return cmd
}

func runInspect(cmd *cobra.Command, path string, opts *InspectOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot inspect %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("cannot inspect %s: is a directory", path)
	}

	pcfg, err := cmdCtx.Cfg.PipelineConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seed") {
		seed := opts.Seed
		pcfg.Seed = &seed
	}
	pcfg.Logger = cmdCtx.Logger

	outcome, records := pipeline.New(pcfg).Inspect(path)
	if opts.Limit >= 0 && len(records) > opts.Limit {
		records = records[:opts.Limit]
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		if records == nil {
			records = []record.Record{}
		}
		return r.JSON(InspectOutput{Table: outcome, Preview: records})
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, filepath.Base(path)))
		r.Println("")
	default:
		r.Header(1, filepath.Base(path))
	}

	r.Println(output.FormatKeyValue("Delimiter", valueOr(outcome.Delimiter, "unknown")))
	r.Println(output.FormatKeyValue("Rows", fmt.Sprintf("%d kept of %d read", outcome.RowsKept, outcome.RowsRead)))
	if outcome.Diagnostic != nil {
		r.Println("")
		r.Error(outcome.Diagnostic.Error())
	}

	if outcome.Resolution != nil {
		r.Println("")
		r.Header(2, "Columns")
		r.Table([]string{"Role", "Column", "Header", "Via"}, roleRows(outcome))
	}

	if len(outcome.Dropped) > 0 {
		r.Println("")
		r.Header(2, "Dropped rows")
		for _, code := range pipeline.RowCodes {
			if n := outcome.Dropped[code]; n > 0 {
				r.Println(output.FormatKeyValue(string(code), fmt.Sprintf("%d (%s)", n, code.Message())))
			}
		}
	}

	if len(records) > 0 {
		r.Println("")
		r.Header(2, "Preview")
		rows := make([][]string, len(records))
		for i, rec := range records {
			rows[i] = rec.Fields()
		}
		r.Table(record.Header, rows)
	}

	return nil
}

func roleRows(outcome pipeline.TableOutcome) [][]string {
	res := outcome.Resolution
	rows := make([][]string, 0, len(schema.Roles))
	for _, role := range schema.Roles {
		idx := res.Roles.Index(role)
		row := []string{role.String(), "-", "", valueOr(res.Via[role], "none")}
		if idx != schema.NoColumn {
			row[1] = strconv.Itoa(idx)
			if idx < len(outcome.Header) {
				row[2] = outcome.Header[idx]
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
