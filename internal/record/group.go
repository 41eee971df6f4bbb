package record

import (
	"strconv"
	"strings"
)

// DefaultIncrementProbability is the chance that a synthetic study group
// closes after a row.
const DefaultIncrementProbability = 0.30

// Source yields uniform reals in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// GroupState is the synthetic group counter of one table. Start every table
// from NewGroupState; a state never carries over to another table.
type GroupState struct {
	Current int
}

// NewGroupState returns the state for the first row of a table.
func NewGroupState() GroupState {
	return GroupState{Current: 1}
}

// Grouper assigns study ids. Rand must be set; seed it for repeatable
// output.
type Grouper struct {
	P    float64
	Rand Source
}

// Assign returns the study id for p and the state for the next row.
//
// Rows with a study cell keep it, sanitized, and leave the state untouched
// without drawing. Otherwise the row gets the current group number, and
// afterwards the group closes with probability P so later rows land in the
// next one.
func (g Grouper) Assign(state GroupState, p Parsed) (string, GroupState) {
	if p.HasStudy {
		return SanitizeStudy(p.Study), state
	}

	id := strconv.Itoa(state.Current)
	if g.Rand.Float64() < g.P {
		state.Current++
	}
	return id, state
}

// Record completes p with its study id.
func (g Grouper) Record(state GroupState, p Parsed) (Record, GroupState) {
	id, next := g.Assign(state, p)
	return Record{Effect: p.Effect, SE: p.SE, N: p.N, StudyID: id}, next
}

var studyReplacer = strings.NewReplacer(",", ";", "\r\n", " ", "\r", " ", "\n", " ")

// SanitizeStudy replaces commas with semicolons and line breaks with spaces
// so the id fits in one comma-separated field.
func SanitizeStudy(s string) string {
	return studyReplacer.Replace(s)
}
