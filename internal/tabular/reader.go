// Package tabular reads heterogeneous source tables into a uniform RawTable.
//
// Delimited text files have their delimiter sniffed from a bounded prefix
// before being parsed; spreadsheet workbooks are read through excelize.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrTooFewRows is returned when a source has no data row after its header.
var ErrTooFewRows = errors.New("source needs a header row and at least one data row")

// RawTable is one source file as read from disk: a header row followed by
// the raw data rows. It is transient and discarded after normalization.
type RawTable struct {
	// Source is the base file name the table was read from.
	Source string
	// Delimiter is the sniffed field delimiter (0 for workbook sources).
	Delimiter rune
	Header    []string
	Rows      [][]string
}

// Options controls how source files are read.
type Options struct {
	// SampleBytes bounds the prefix used for delimiter sniffing.
	SampleBytes int
	// Sheet selects the workbook sheet; empty means the first sheet.
	Sheet string
}

// IsWorkbook reports whether path names a spreadsheet workbook.
func IsWorkbook(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

// ReadFile reads a source table, dispatching on the file extension.
func ReadFile(path string, opts Options) (*RawTable, error) {
	if IsWorkbook(path) {
		return ReadWorkbook(path, opts.Sheet)
	}
	return ReadDelimitedFile(path, opts.SampleBytes)
}

// ReadDelimitedFile sniffs the delimiter from the first sampleBytes of the
// file and parses the whole file with it.
func ReadDelimitedFile(path string, sampleBytes int) (*RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer func() { _ = f.Close() }()

	delim, err := SniffReader(NewDecodedReader(f), sampleBytes)
	if err != nil {
		return nil, fmt.Errorf("sniff %s: %w", filepath.Base(path), err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind %s: %w", filepath.Base(path), err)
	}

	rows, err := ReadDelimited(NewDecodedReader(f), delim)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	return newRawTable(filepath.Base(path), delim, rows)
}

// ReadDelimited parses every record from r using delim.
// Rows may have differing widths; short rows are filtered later.
func ReadDelimited(r io.Reader, delim rune) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr.ReadAll()
}

// ReadWorkbook reads one sheet of a workbook as a table.
func ReadWorkbook(path, sheet string) (*RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", filepath.Base(path), err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets: %w", filepath.Base(path), ErrTooFewRows)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q of %s: %w", sheet, filepath.Base(path), err)
	}

	return newRawTable(filepath.Base(path), 0, rows)
}

func newRawTable(source string, delim rune, rows [][]string) (*RawTable, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s has %d row(s): %w", source, len(rows), ErrTooFewRows)
	}
	return &RawTable{
		Source:    source,
		Delimiter: delim,
		Header:    rows[0],
		Rows:      rows[1:],
	}, nil
}
