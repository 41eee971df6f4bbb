package pipeline

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/maive-lab/mockcsv/internal/materialize"
	"github.com/maive-lab/mockcsv/internal/record"
	"github.com/maive-lab/mockcsv/internal/schema"
	"github.com/maive-lab/mockcsv/internal/tabular"
)

// Config holds pipeline configuration.
type Config struct {
	// SourceDir is the directory scanned for source tables.
	SourceDir string
	// Extensions selects source files, e.g. ".csv". Defaults to .csv.
	Extensions []string
	// Exclude drops sources whose name contains any of these substrings.
	Exclude []string
	// SampleBytes bounds the delimiter sample.
	SampleBytes int
	// Sheet names the worksheet read from workbook sources.
	Sheet string

	// IncrementProbability is the chance a synthetic study group closes
	// after a row.
	// Nil means record.DefaultIncrementProbability.
	IncrementProbability *float64
	// Seed makes grouping reproducible. A random seed is drawn when nil.
	Seed *uint64

	// OutputDir receives the cleaned tables.
	OutputDir string
	// ModulePath is where the aggregated module is written.
	ModulePath string
	// Materialize controls naming and the module format.
	Materialize materialize.Options

	// DryRun builds everything but writes nothing.
	DryRun bool

	// Resolver overrides the default column resolver (optional).
	Resolver *schema.Resolver
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Pipeline runs the batch over one source directory.
type Pipeline struct {
	cfg      Config
	resolver *schema.Resolver
	logger   *slog.Logger
}

// New creates a pipeline, filling in defaults for unset options.
func New(cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	resolver := cfg.Resolver
	if resolver == nil {
		resolver = schema.NewResolver()
	}

	if len(cfg.Extensions) == 0 {
		cfg.Extensions = []string{".csv"}
	}
	if cfg.IncrementProbability == nil {
		prob := record.DefaultIncrementProbability
		cfg.IncrementProbability = &prob
	}
	if cfg.SampleBytes <= 0 {
		cfg.SampleBytes = tabular.DefaultSampleBytes
	}

	return &Pipeline{cfg: cfg, resolver: resolver, logger: logger}
}

// Run processes every discovered source in order and materializes the
// survivors once at the end. Only an unavailable source directory, a
// materialization failure or ctx cancellation return an error; per-file
// problems are recorded on the report.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:     uuid.New().String(),
		SourceDir: p.cfg.SourceDir,
		StartedAt: time.Now(),
		DryRun:    p.cfg.DryRun,
	}
	report.Seed = p.seed()

	p.logger.Info("starting run", "run_id", report.RunID, "source_dir", p.cfg.SourceDir, "seed", report.Seed)

	paths, err := Discover(p.cfg.SourceDir, p.cfg.Extensions, p.cfg.Exclude)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("discovered sources", "count", len(paths))

	results := make([]materialize.TableResult, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		outcome, records := p.processTable(path, report.Seed)
		report.Tables = append(report.Tables, outcome)
		report.TotalRows += outcome.RowsRead
		report.KeptRows += outcome.RowsKept
		results = append(results, materialize.TableResult{Source: outcome.Source, Records: records})
	}

	artifacts, err := materialize.Build(results, p.cfg.Materialize)
	if err != nil {
		return report, fmt.Errorf("materialize: %w", err)
	}
	report.Artifacts = artifacts
	p.attachDatasets(report, artifacts)

	switch {
	case artifacts.Empty():
		p.logger.Warn("no dataset survived, nothing written", "run_id", report.RunID)
	case p.cfg.DryRun:
		p.logger.Info("dry run, nothing written", "run_id", report.RunID, "datasets", len(artifacts.Datasets))
	default:
		written, err := artifacts.Write(p.cfg.OutputDir, p.cfg.ModulePath)
		report.Written = written
		if err != nil {
			return report, fmt.Errorf("write artifacts: %w", err)
		}
	}

	report.Duration = time.Since(report.StartedAt)
	p.logger.Info("run completed",
		"run_id", report.RunID,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"rows", report.TotalRows,
		"kept", report.KeptRows,
		"duration", report.Duration,
	)
	return report, nil
}

// Inspect runs a single source through the same steps as Run without
// materializing anything. The returned records are what the source would
// contribute to a dataset.
func (p *Pipeline) Inspect(path string) (TableOutcome, []record.Record) {
	return p.processTable(path, p.seed())
}

func (p *Pipeline) seed() uint64 {
	if p.cfg.Seed != nil {
		return *p.cfg.Seed
	}
	return rand.Uint64()
}

// processTable runs one source through read, resolve, normalize and group.
func (p *Pipeline) processTable(path string, seed uint64) (TableOutcome, []record.Record) {
	name := filepath.Base(path)
	outcome := TableOutcome{Source: name, Status: TableFailed}
	log := p.logger.With("source", name)

	table, err := tabular.ReadFile(path, tabular.Options{SampleBytes: p.cfg.SampleBytes, Sheet: p.cfg.Sheet})
	if err != nil {
		outcome.Diagnostic = &Diagnostic{Code: tableCode(err), Source: name, Message: err.Error()}
		log.Warn("skipping table", "code", outcome.Diagnostic.Code, "error", err)
		return outcome, nil
	}
	outcome.Delimiter = delimiterLabel(table.Delimiter)
	outcome.Header = table.Header
	outcome.RowsRead = len(table.Rows)

	res := p.resolver.Explain(table.Header)
	outcome.Resolution = &res
	log.Debug("resolved columns",
		"effect", res.Roles.Effect,
		"se", res.Roles.StdErr,
		"n", res.Roles.SampleSize,
		"study", res.Roles.Study,
		"delimiter", outcome.Delimiter,
	)

	grouper := record.Grouper{P: *p.cfg.IncrementProbability, Rand: TableRand(seed, name)}
	state := record.NewGroupState()

	records := make([]record.Record, 0, len(table.Rows))
	for i, row := range table.Rows {
		parsed, err := record.Normalize(row, res.Roles)
		if err != nil {
			code := rowCode(err)
			if outcome.Dropped == nil {
				outcome.Dropped = make(map[Code]int)
			}
			outcome.Dropped[code]++
			// Line numbers count the header as line 1.
			log.Debug("dropping row", "line", i+2, "code", code, "error", err)
			continue
		}

		var rec record.Record
		rec, state = grouper.Record(state, parsed)
		records = append(records, rec)
	}
	outcome.RowsKept = len(records)

	if len(records) == 0 {
		outcome.Diagnostic = &Diagnostic{
			Code:    CodeNoValidRows,
			Source:  name,
			Message: fmt.Sprintf("all %d data rows were dropped", len(table.Rows)),
		}
		log.Warn("skipping table", "code", CodeNoValidRows, "rows", len(table.Rows))
		return outcome, nil
	}

	outcome.Status = TableOK
	summary, err := Summarize(records)
	if err != nil {
		log.Debug("summary unavailable", "error", err)
	} else {
		outcome.Summary = &summary
	}

	log.Info("processed table", "rows", outcome.RowsRead, "kept", outcome.RowsKept)
	return outcome, records
}

// attachDatasets copies dataset names onto the outcomes and tallies the
// per-file counts.
func (p *Pipeline) attachDatasets(report *Report, artifacts *materialize.Artifacts) {
	bySource := make(map[string]materialize.Dataset, len(artifacts.Datasets))
	for _, ds := range artifacts.Datasets {
		bySource[ds.SourceFilename] = ds
	}

	for i := range report.Tables {
		t := &report.Tables[i]
		if ds, ok := bySource[t.Source]; ok {
			t.DisplayName = ds.DisplayName
			t.OutputFilename = ds.OutputFilename
		}
		if t.Status == TableOK {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}
}

// TableRand returns the generator for one table. The stream depends only on
// the run seed and the file name, so adding or removing other sources does
// not change a table's grouping.
func TableRand(seed uint64, name string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return rand.New(rand.NewPCG(seed, h.Sum64()))
}

// IsStructural reports whether err aborted the run rather than a single
// table.
func IsStructural(err error) bool {
	return errors.Is(err, ErrSourceDir)
}
