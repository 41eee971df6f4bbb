// Package schema infers which columns of a source table carry which meaning.
//
// Inference is heuristic: header strings are matched against ordered passes
// of declarative rules, and any role left unresolved after the passes falls
// back to a positional default. Resolution never fails, but it can pick a
// semantically wrong column when headers are ambiguous.
package schema

import "fmt"

// Role is the semantic label attached to a column.
type Role int

const (
	RoleEffect Role = iota
	RoleStdErr
	RoleSampleSize
	RoleStudy
)

// Roles lists every role in resolution order.
var Roles = []Role{RoleEffect, RoleStdErr, RoleSampleSize, RoleStudy}

func (r Role) String() string {
	switch r {
	case RoleEffect:
		return "effect"
	case RoleStdErr:
		return "standard_error"
	case RoleSampleSize:
		return "sample_size"
	case RoleStudy:
		return "study_id"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// MarshalText renders the role by name, so maps keyed by Role encode
// readably.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// NoColumn marks an absent optional role.
const NoColumn = -1

// RoleMap holds the resolved column index for each role.
// Effect, StdErr and SampleSize are always set; Study may be NoColumn.
type RoleMap struct {
	Effect     int `json:"effect"`
	StdErr     int `json:"se"`
	SampleSize int `json:"n"`
	Study      int `json:"study"`
}

// HasStudy reports whether a study column was found.
func (m RoleMap) HasStudy() bool {
	return m.Study != NoColumn
}

// RequiredWidth is the minimum row length that holds every required cell.
func (m RoleMap) RequiredWidth() int {
	return max(m.Effect, m.StdErr, m.SampleSize) + 1
}

// Index returns the column assigned to role.
func (m RoleMap) Index(role Role) int {
	switch role {
	case RoleEffect:
		return m.Effect
	case RoleStdErr:
		return m.StdErr
	case RoleSampleSize:
		return m.SampleSize
	case RoleStudy:
		return m.Study
	}
	return NoColumn
}

func (m *RoleMap) set(role Role, idx int) {
	switch role {
	case RoleEffect:
		m.Effect = idx
	case RoleStdErr:
		m.StdErr = idx
	case RoleSampleSize:
		m.SampleSize = idx
	case RoleStudy:
		m.Study = idx
	}
}
