package record

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/maive-lab/mockcsv/internal/schema"
)

// Row rejection reasons. Normalize wraps one of these so callers can count
// drops by cause with errors.Is.
var (
	ErrShortRow      = errors.New("row is shorter than the resolved columns")
	ErrInvalidEffect = errors.New("effect is not a finite number")
	ErrInvalidSE     = errors.New("standard error is not a finite number")
	ErrInvalidN      = errors.New("sample size is not a non-negative number")
)

// Parsed is a row whose numeric cells passed validation. HasStudy is set
// when the table has a study column; Study holds its raw cell, empty when the
// row ends before it.
type Parsed struct {
	Effect   float64
	SE       float64
	N        int
	Study    string
	HasStudy bool
}

// Normalize extracts and validates the cells roles points at.
//
// Numeric cells are trimmed before parsing. N is parsed as a real and
// truncated toward zero, so "10.0" and "10.9" both give 10. Only the
// effect, standard error and sample size cells decide whether a row is short.
func Normalize(row []string, roles schema.RoleMap) (Parsed, error) {
	if width := roles.RequiredWidth(); len(row) < width {
		return Parsed{}, fmt.Errorf("%w: have %d cells, need %d", ErrShortRow, len(row), width)
	}

	effect, err := parseFinite(row[roles.Effect])
	if err != nil {
		return Parsed{}, fmt.Errorf("%w: %q", ErrInvalidEffect, row[roles.Effect])
	}
	se, err := parseFinite(row[roles.StdErr])
	if err != nil {
		return Parsed{}, fmt.Errorf("%w: %q", ErrInvalidSE, row[roles.StdErr])
	}
	n, err := parseCount(row[roles.SampleSize])
	if err != nil {
		return Parsed{}, fmt.Errorf("%w: %q", ErrInvalidN, row[roles.SampleSize])
	}

	p := Parsed{Effect: effect, SE: se, N: n}
	if roles.HasStudy() {
		p.HasStudy = true
		if roles.Study < len(row) {
			p.Study = row[roles.Study]
		}
	}
	return p, nil
}

func parseFinite(cell string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("not finite")
	}
	return v, nil
}

func parseCount(cell string) (int, error) {
	v, err := parseFinite(cell)
	if err != nil {
		return 0, err
	}
	v = math.Trunc(v)
	if v < 0 || v >= math.MaxInt64 {
		return 0, errors.New("out of range")
	}
	return int(v), nil
}
