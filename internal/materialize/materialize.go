// Package materialize turns normalized tables into the cleaned per-source CSV
// files and the aggregated mock-data module.
//
// Build is pure: it only lays out bytes. Artifacts.Write persists them.
package materialize

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/maive-lab/mockcsv/internal/record"
)

// Format selects the language of the aggregated module.
type Format string

const (
	FormatTS   Format = "ts"
	FormatGo   Format = "go"
	FormatJSON Format = "json"
)

// Formats lists the supported module formats.
var Formats = []Format{FormatTS, FormatGo, FormatJSON}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown module format %q (want ts, go or json)", s)
}

// ErrDuplicateOutput is returned when two sources map to the same cleaned
// file name.
var ErrDuplicateOutput = errors.New("duplicate output file")

// Options controls naming and the module format.
type Options struct {
	// Suffix is appended to the source stem: <stem>_<suffix>.csv.
	Suffix string
	// NamePrefix and FilePrefix build "Mock Data 1" and "mock_data_1.csv".
	NamePrefix string
	FilePrefix string
	Format     Format
	// Package is the package clause for FormatGo.
	Package string
}

// DefaultOptions returns the stock naming scheme.
func DefaultOptions() Options {
	return Options{
		Suffix:     "maive",
		NamePrefix: "Mock Data",
		FilePrefix: "mock_data_",
		Format:     FormatTS,
		Package:    "mockdata",
	}
}

// TableResult is the normalized output of one source table.
type TableResult struct {
	Source  string
	Records []record.Record
}

// Dataset is a table that produced at least one record.
type Dataset struct {
	DisplayName    string          `json:"name"`
	SourceFilename string          `json:"original_filename"`
	OutputFilename string          `json:"output_filename"`
	MockFilename   string          `json:"filename"`
	Records        []record.Record `json:"-"`
}

// Entry is one element of the aggregated module.
type Entry struct {
	Name             string `json:"name"`
	Content          string `json:"content"`
	Filename         string `json:"filename"`
	OriginalFilename string `json:"original_filename"`
}

// File is a rendered artifact relative to its target directory.
type File struct {
	Name string
	Data []byte
}

// Artifacts holds everything one run writes.
type Artifacts struct {
	Datasets []Dataset
	Tables   []File
	Entries  []Entry
	Module   []byte
	Format   Format
}

// Empty reports whether no dataset survived.
func (a *Artifacts) Empty() bool {
	return len(a.Datasets) == 0
}

// Build lays out both artifacts from results, which must be in discovery
// order. Tables without records are skipped, and only surviving tables
// consume a mock index.
func Build(results []TableResult, opts Options) (*Artifacts, error) {
	opts = withDefaults(opts)

	a := &Artifacts{Format: opts.Format}
	seen := make(map[string]string)

	for _, res := range results {
		if len(res.Records) == 0 {
			continue
		}
		i := len(a.Datasets) + 1

		ds := Dataset{
			DisplayName:    opts.NamePrefix + " " + strconv.Itoa(i),
			SourceFilename: res.Source,
			OutputFilename: OutputName(res.Source, opts.Suffix),
			MockFilename:   opts.FilePrefix + strconv.Itoa(i) + ".csv",
			Records:        res.Records,
		}
		if prev, ok := seen[ds.OutputFilename]; ok {
			return nil, fmt.Errorf("%w: %s from both %s and %s", ErrDuplicateOutput, ds.OutputFilename, prev, res.Source)
		}
		seen[ds.OutputFilename] = res.Source

		a.Datasets = append(a.Datasets, ds)
		a.Tables = append(a.Tables, File{Name: ds.OutputFilename, Data: renderTable(ds.Records)})
		a.Entries = append(a.Entries, Entry{
			Name:             ds.DisplayName,
			Content:          Content(ds.Records),
			Filename:         ds.MockFilename,
			OriginalFilename: ds.SourceFilename,
		})
	}

	module, err := RenderModule(a.Entries, opts)
	if err != nil {
		return nil, err
	}
	a.Module = module
	return a, nil
}

// OutputName is the cleaned file name for source.
func OutputName(source, suffix string) string {
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	return stem + "_" + suffix + ".csv"
}

// Content joins record lines with newlines, without a header or a trailing
// newline.
func Content(records []record.Record) string {
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = r.String()
	}
	return strings.Join(lines, "\n")
}

// renderTable writes the header and one line per record. Fields are not
// quoted; study ids are already free of commas and line breaks.
func renderTable(records []record.Record) []byte {
	var b strings.Builder
	b.WriteString(strings.Join(record.Header, ","))
	b.WriteByte('\n')
	for _, r := range records {
		b.WriteString(r.String())
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func withDefaults(opts Options) Options {
	def := DefaultOptions()
	if opts.Suffix == "" {
		opts.Suffix = def.Suffix
	}
	if opts.NamePrefix == "" {
		opts.NamePrefix = def.NamePrefix
	}
	if opts.FilePrefix == "" {
		opts.FilePrefix = def.FilePrefix
	}
	if opts.Format == "" {
		opts.Format = def.Format
	}
	if opts.Package == "" {
		opts.Package = def.Package
	}
	return opts
}
