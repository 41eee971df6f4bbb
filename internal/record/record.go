// Package record turns raw table rows into fixed four-field records.
package record

import (
	"math"
	"strconv"
	"strings"
)

// Header is the column header of every cleaned table.
var Header = []string{"effect", "se", "n", "study_id"}

// Record is one normalized row. Effect and SE are finite, N is
// non-negative, and StudyID never contains a comma or a line break.
type Record struct {
	Effect  float64 `json:"effect"`
	SE      float64 `json:"se"`
	N       int     `json:"n"`
	StudyID string  `json:"study_id"`
}

// Fields returns the record in Header order.
func (r Record) Fields() []string {
	return []string{FormatReal(r.Effect), FormatReal(r.SE), strconv.Itoa(r.N), r.StudyID}
}

// String renders the record as one comma-joined line without a terminator.
func (r Record) String() string {
	return strings.Join(r.Fields(), ",")
}

// FormatReal renders v as the shortest string that round-trips, always
// keeping a fractional part in plain notation ("2.0", "0.15") and switching
// to exponent notation below 1e-4 or from 1e16 upward ("1e-05", "1e+16").
func FormatReal(v float64) string {
	abs := math.Abs(v)
	if v == 0 || (abs >= 1e-4 && abs < 1e16) {
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.ContainsRune(s, '.') {
			s += ".0"
		}
		return s
	}
	return strconv.FormatFloat(v, 'e', -1, 64)
}
