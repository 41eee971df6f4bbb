package tabular

// sniff.go - field delimiter detection from a bounded sample

import (
	"fmt"
	"io"
	"strings"
)

// DefaultSampleBytes is how much of a file is inspected to pick a delimiter.
const DefaultSampleBytes = 1024

// DefaultDelimiter is used when no candidate appears in the sample.
const DefaultDelimiter = ','

// DelimiterCandidates lists the recognized delimiters in priority order.
// The first one present anywhere in the sample wins.
var DelimiterCandidates = []rune{',', '\t', ';', '|'}

// SniffDelimiter picks the delimiter for a text sample.
//
// Quoting is not understood: a candidate that only occurs inside a quoted
// field still counts as present.
func SniffDelimiter(sample string) rune {
	for _, c := range DelimiterCandidates {
		if strings.ContainsRune(sample, c) {
			return c
		}
	}
	return DefaultDelimiter
}

// SniffReader reads at most budget bytes from r and sniffs the delimiter.
// A non-positive budget falls back to DefaultSampleBytes.
func SniffReader(r io.Reader, budget int) (rune, error) {
	if budget <= 0 {
		budget = DefaultSampleBytes
	}
	sample, err := io.ReadAll(io.LimitReader(r, int64(budget)))
	if err != nil {
		return 0, fmt.Errorf("read sample: %w", err)
	}
	return SniffDelimiter(string(sample)), nil
}

// DelimiterName returns a human readable name for a delimiter.
func DelimiterName(d rune) string {
	switch d {
	case ',':
		return "comma"
	case '\t':
		return "tab"
	case ';':
		return "semicolon"
	case '|':
		return "pipe"
	case 0:
		return "none"
	default:
		return fmt.Sprintf("%q", d)
	}
}
