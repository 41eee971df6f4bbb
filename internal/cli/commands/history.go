package commands

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/maive-lab/mockcsv/internal/cli/output"
	"github.com/maive-lab/mockcsv/internal/state"
	"github.com/spf13/cobra"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit int
}

// HistoryOutput is the JSON form of the history listing.
type HistoryOutput struct {
	Runs []HistoryRun `json:"runs"`
}

// HistoryRun is a recorded run with its tables.
type HistoryRun struct {
	*state.Run
	Tables []state.RunTable `json:"tables,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded generate runs",
		Long: `List recent generate runs from the state database, newest first.

Each run keeps its seed: 'mockcsv generate --seed <seed>' over the same
sources reproduces it exactly. Pass a run ID to show its per-table outcomes.`,
		Example: `  # Recent runs
  mockcsv history

  # Only the last run
  mockcsv history --limit 1

  # Tables of one run
  mockcsv history 6f1c2a8e-...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runHistoryShow(cmd, args[0])
			}
			return runHistoryList(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")

	return cmd
}

func runHistoryList(cmd *cobra.Command, opts *HistoryOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	store, cleanup, err := cmdCtx.OpenStore()
	if err != nil {
		return err
	}
	defer cleanup()

	runs, err := store.ListRuns(cmd.Context(), opts.Limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if r.EffectiveMode() == output.ModeJSON {
		out := HistoryOutput{Runs: make([]HistoryRun, 0, len(runs))}
		for _, run := range runs {
			out.Runs = append(out.Runs, HistoryRun{Run: run})
		}
		return r.JSON(out)
	}

	if len(runs) == 0 {
		r.Muted("No runs recorded yet. Run 'mockcsv generate' first.")
		return nil
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatHeader(1, fmt.Sprintf("Runs (%d)", len(runs))))
		r.Println("")
	} else {
		r.Header(1, fmt.Sprintf("Runs (%d)", len(runs)))
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			strconv.FormatUint(run.Seed, 10),
			fmt.Sprintf("%d/%d", run.Succeeded, run.Succeeded+run.Failed),
			fmt.Sprintf("%d/%d", run.KeptRows, run.TotalRows),
			run.Duration.Round(time.Millisecond).String(),
			dryRunLabel(run.DryRun),
		})
	}
	r.Table([]string{"Run", "Started", "Seed", "Tables", "Rows", "Duration", "Mode"}, rows)

	return nil
}

func runHistoryShow(cmd *cobra.Command, id string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	store, cleanup, err := cmdCtx.OpenStore()
	if err != nil {
		return err
	}
	defer cleanup()

	run, err := store.GetRun(cmd.Context(), id)
	if errors.Is(err, state.ErrRunNotFound) {
		return fmt.Errorf("run %s not found. Use 'mockcsv history' to list runs", id)
	}
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}

	tables, err := store.GetRunTables(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to load run tables: %w", err)
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(HistoryRun{Run: run, Tables: tables})
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatHeader(1, "Run "+run.ID))
		r.Println("")
	} else {
		r.Header(1, "Run "+run.ID)
	}
	r.Println(output.FormatKeyValue("Source", run.SourceDir))
	r.Println(output.FormatKeyValue("Started", run.StartedAt.Local().Format(time.DateTime)))
	r.Println(output.FormatKeyValue("Seed", strconv.FormatUint(run.Seed, 10)))
	r.Println(output.FormatKeyValue("Mode", dryRunLabel(run.DryRun)))
	r.Println("")

	for _, t := range tables {
		detail := fmt.Sprintf("%d/%d rows", t.RowsKept, t.RowsRead)
		status := "success"
		if t.Code != "" {
			status = "failed"
			detail = t.Code + " " + t.Message
		} else if t.DisplayName != "" {
			detail += " -> " + t.DisplayName
		}
		r.StatusLine(t.Source, status, detail)
	}

	return nil
}

func dryRunLabel(dryRun bool) string {
	if dryRun {
		return "dry-run"
	}
	return "write"
}
