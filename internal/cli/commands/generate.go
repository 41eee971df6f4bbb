package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"syscall"

	"github.com/maive-lab/mockcsv/internal/cli/output"
	"github.com/maive-lab/mockcsv/internal/pipeline"
	"github.com/maive-lab/mockcsv/internal/state"
	"github.com/maive-lab/mockcsv/internal/watch"
	"github.com/spf13/cobra"
)

// GenerateOptions holds options for the generate command.
type GenerateOptions struct {
	Seed      uint64
	DryRun    bool
	Watch     bool
	NoHistory bool
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate mock datasets from the source tables",
		Long: `Read every source table in the source directory, infer its effect, standard
error, sample size and study columns, and write one cleaned CSV per usable
table plus a module embedding all of them.

Tables that cannot be read, have no data rows or lose every row to
validation are reported and skipped. Study groups are synthesized when a
table has no study column; pass --seed to make them reproducible. Every
run's seed is kept in the run history.`,
		Example: `  # Generate with the configured directories
  mockcsv generate

  # Reproduce a previous run
  mockcsv generate --seed 42

  # Show what would be generated without writing files
  mockcsv generate --dry-run

  # Regenerate whenever a source changes
  mockcsv generate --watch

  # Machine-readable report
  mockcsv generate --output json`,
		Aliases: []string{"gen"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, opts)
		},
	}

	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "Seed for synthetic study groups (random when unset)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Process the sources but write nothing")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Regenerate when source files change")
	cmd.Flags().BoolVar(&opts.NoHistory, "no-history", false, "Do not record the run in the state database")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *GenerateOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg

	if err := cfg.ValidateDirectories(); err != nil {
		return err
	}

	pcfg, err := cfg.PipelineConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seed") {
		seed := opts.Seed
		pcfg.Seed = &seed
	}
	pcfg.DryRun = opts.DryRun
	pcfg.Logger = cmdCtx.Logger

	if opts.Watch && samePath(pcfg.SourceDir, pcfg.OutputDir) {
		return fmt.Errorf("out_dir must differ from source_dir in watch mode")
	}

	var store state.Store
	if !opts.NoHistory {
		s, cleanup, err := cmdCtx.OpenStore()
		if err != nil {
			return err
		}
		defer cleanup()
		store = s
	}

	ctx := cmd.Context()
	err = generateOnce(ctx, cmdCtx, pcfg, store)
	if !opts.Watch {
		return err
	}
	if err != nil {
		cmdCtx.Renderer.Error(err.Error())
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := &watch.Watcher{
		Dir: pcfg.SourceDir,
		Match: func(name string) bool {
			return pipeline.Match(name, pcfg.Extensions, pcfg.Exclude)
		},
		Logger: cmdCtx.Logger,
	}

	cmdCtx.Renderer.Println("")
	cmdCtx.Renderer.Muted(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", pcfg.SourceDir))

	return w.Run(ctx, func(ctx context.Context, changed []string) {
		cmdCtx.Renderer.Println("")
		cmdCtx.Renderer.Muted("Changed: " + strings.Join(changed, ", "))
		if err := generateOnce(ctx, cmdCtx, pcfg, store); err != nil {
			cmdCtx.Renderer.Error(err.Error())
		}
	})
}

// generateOnce runs the pipeline, records the run and renders the report.
func generateOnce(ctx context.Context, cmdCtx *CommandContext, pcfg pipeline.Config, store state.Store) error {
	r := cmdCtx.Renderer
	var spinner *output.Spinner
	if r.EffectiveMode() == output.ModeText && r.IsTTY() {
		spinner = r.NewSpinner("Processing " + pcfg.SourceDir)
		spinner.Start()
	}

	report, err := pipeline.New(pcfg).Run(ctx)
	if spinner != nil {
		spinner.Stop()
	}
	if report == nil {
		return fmt.Errorf("generate failed: %w", err)
	}

	if store != nil {
		run, tables := historyFromReport(report)
		if herr := store.RecordRun(ctx, run, tables); herr != nil {
			cmdCtx.Logger.Warn("failed to record run history", "run_id", report.RunID, "error", herr)
		}
	}

	if rerr := renderReport(r, report); rerr != nil {
		return rerr
	}
	if err != nil {
		return fmt.Errorf("generate failed: %w", err)
	}
	return nil
}

// historyFromReport converts a report into its run history rows.
func historyFromReport(report *pipeline.Report) (*state.Run, []state.RunTable) {
	run := &state.Run{
		ID:        report.RunID,
		SourceDir: report.SourceDir,
		Seed:      report.Seed,
		StartedAt: report.StartedAt,
		Duration:  report.Duration,
		Succeeded: report.Succeeded,
		Failed:    report.Failed,
		TotalRows: report.TotalRows,
		KeptRows:  report.KeptRows,
		DryRun:    report.DryRun,
	}

	tables := make([]state.RunTable, 0, len(report.Tables))
	for i, t := range report.Tables {
		rt := state.RunTable{
			Position:    i,
			Source:      t.Source,
			Status:      string(t.Status),
			RowsRead:    t.RowsRead,
			RowsKept:    t.RowsKept,
			DisplayName: t.DisplayName,
		}
		if t.Diagnostic != nil {
			rt.Code = string(t.Diagnostic.Code)
			rt.Message = t.Diagnostic.Message
		}
		tables = append(tables, rt)
	}
	return run, tables
}

func renderReport(r *output.Renderer, report *pipeline.Report) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(report)
	case output.ModeMarkdown:
		reportMarkdown(r, report)
	default:
		reportText(r, report)
	}
	return nil
}

func reportText(r *output.Renderer, report *pipeline.Report) {
	r.Header(1, fmt.Sprintf("Generated from %s", output.Count(len(report.Tables), "table")))
	for _, t := range report.Tables {
		r.StatusLine(t.Source, statusName(t.Status), tableDetail(t))
	}

	if report.Succeeded > 0 {
		r.Println("")
		r.Table(
			[]string{"Dataset", "Source", "Rows", "Mean effect", "Median SE", "Total N", "Studies"},
			datasetRows(report),
		)
	}

	r.Println("")
	r.Println(r.Styles().Bold.Render("Summary"))
	r.Printf("  Tables: %d succeeded, %d failed\n", report.Succeeded, report.Failed)
	r.Printf("  Rows:   %d kept of %d read\n", report.KeptRows, report.TotalRows)
	if dropped := droppedSummary(report); dropped != "" {
		r.Printf("  Dropped: %s\n", dropped)
	}
	r.Printf("  Seed:   %d\n", report.Seed)
	r.Println("")

	reportWritten(r, report, func(path string) string {
		return r.Styles().Path.Render(path)
	})
}

func reportMarkdown(r *output.Renderer, report *pipeline.Report) {
	r.Println(output.FormatHeader(1, "Generate Report"))
	r.Println("")
	r.Println(output.FormatKeyValue("Run", report.RunID))
	r.Println(output.FormatKeyValue("Seed", strconv.FormatUint(report.Seed, 10)))
	r.Println(output.FormatKeyValue("Tables", fmt.Sprintf("%d succeeded, %d failed", report.Succeeded, report.Failed)))
	r.Println(output.FormatKeyValue("Rows", fmt.Sprintf("%d kept of %d read", report.KeptRows, report.TotalRows)))
	if dropped := droppedSummary(report); dropped != "" {
		r.Println(output.FormatKeyValue("Dropped", dropped))
	}
	r.Println("")

	r.Println(output.FormatHeader(2, "Tables"))
	r.Println("")
	for _, t := range report.Tables {
		r.StatusLine(t.Source, statusName(t.Status), tableDetail(t))
	}
	r.Println("")

	if report.Succeeded > 0 {
		r.Println(output.FormatHeader(2, "Datasets"))
		r.Println("")
		r.Table(
			[]string{"Dataset", "Source", "Rows", "Mean effect", "Median SE", "Total N", "Studies"},
			datasetRows(report),
		)
		r.Println("")
	}

	reportWritten(r, report, func(path string) string { return "`" + path + "`" })
}

func reportWritten(r *output.Renderer, report *pipeline.Report, format func(string) string) {
	switch {
	case report.Succeeded == 0:
		r.Warning("No dataset survived; nothing was written")
	case report.DryRun:
		r.Muted("Dry run: nothing was written")
	default:
		r.Success(fmt.Sprintf("Wrote %s", output.Count(len(report.Written), "file")))
		for _, path := range report.Written {
			r.Println("  " + format(path))
		}
	}
}

func datasetRows(report *pipeline.Report) [][]string {
	var rows [][]string
	for _, t := range report.Tables {
		if t.Status != pipeline.TableOK {
			continue
		}
		row := []string{t.DisplayName, t.Source, strconv.Itoa(t.RowsKept), "", "", "", ""}
		if s := t.Summary; s != nil {
			row[3] = strconv.FormatFloat(s.MeanEffect, 'g', 4, 64)
			row[4] = strconv.FormatFloat(s.MedianSE, 'g', 4, 64)
			row[5] = strconv.Itoa(s.TotalN)
			row[6] = strconv.Itoa(s.StudyGroups)
		}
		rows = append(rows, row)
	}
	return rows
}

func tableDetail(t pipeline.TableOutcome) string {
	if t.Diagnostic != nil {
		return fmt.Sprintf("%s %s", t.Diagnostic.Code, t.Diagnostic.Message)
	}
	detail := fmt.Sprintf("%d/%d rows", t.RowsKept, t.RowsRead)
	if t.OutputFilename != "" {
		detail += " -> " + t.OutputFilename
	}
	return detail
}

func droppedSummary(report *pipeline.Report) string {
	dropped := report.Dropped()
	codes := make([]string, 0, len(dropped))
	for code := range dropped {
		codes = append(codes, string(code))
	}
	slices.Sort(codes)

	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		parts = append(parts, fmt.Sprintf("%s x%d", code, dropped[pipeline.Code(code)]))
	}
	return strings.Join(parts, ", ")
}

func statusName(s pipeline.TableStatus) string {
	if s == pipeline.TableOK {
		return "success"
	}
	return "failed"
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
