package pipeline

import (
	"time"

	"github.com/maive-lab/mockcsv/internal/materialize"
	"github.com/maive-lab/mockcsv/internal/schema"
	"github.com/maive-lab/mockcsv/internal/tabular"
)

// TableStatus is the outcome of one source.
type TableStatus string

const (
	TableOK     TableStatus = "ok"
	TableFailed TableStatus = "failed"
)

// TableOutcome records what happened to one source file.
type TableOutcome struct {
	Source string      `json:"source"`
	Status TableStatus `json:"status"`
	// Diagnostic is set when Status is TableFailed.
	Diagnostic *Diagnostic `json:"diagnostic,omitempty"`

	Delimiter  string             `json:"delimiter,omitempty"`
	Header     []string           `json:"header,omitempty"`
	Resolution *schema.Resolution `json:"resolution,omitempty"`

	RowsRead int          `json:"rows_read"`
	RowsKept int          `json:"rows_kept"`
	Dropped  map[Code]int `json:"dropped,omitempty"`

	// Set for tables that produced a dataset.
	DisplayName    string   `json:"display_name,omitempty"`
	OutputFilename string   `json:"output_filename,omitempty"`
	Summary        *Summary `json:"summary,omitempty"`
}

// Report is the result of one run.
type Report struct {
	RunID     string        `json:"run_id"`
	SourceDir string        `json:"source_dir"`
	Seed      uint64        `json:"seed"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	DryRun    bool          `json:"dry_run"`

	Tables []TableOutcome `json:"tables"`

	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	TotalRows int `json:"total_rows"`
	KeptRows  int `json:"kept_rows"`

	// Written lists the files persisted, cleaned tables first.
	Written []string `json:"written,omitempty"`

	Artifacts *materialize.Artifacts `json:"-"`
}

// Diagnostics returns the table-level diagnostics in discovery order.
func (r *Report) Diagnostics() []Diagnostic {
	var out []Diagnostic
	for _, t := range r.Tables {
		if t.Diagnostic != nil {
			out = append(out, *t.Diagnostic)
		}
	}
	return out
}

// Dropped totals row drops per code across all tables.
func (r *Report) Dropped() map[Code]int {
	out := make(map[Code]int)
	for _, t := range r.Tables {
		for code, n := range t.Dropped {
			out[code] += n
		}
	}
	return out
}

func delimiterLabel(d rune) string {
	if d == 0 {
		return ""
	}
	return tabular.DelimiterName(d)
}
