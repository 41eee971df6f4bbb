package pipeline

import (
	"errors"

	"github.com/maive-lab/mockcsv/internal/record"
	"github.com/maive-lab/mockcsv/internal/tabular"
)

// Code identifies a diagnostic kind.
type Code string

const (
	CodeUnreadable    Code = "TBL001"
	CodeTooFewRows    Code = "TBL002"
	CodeNoValidRows   Code = "TBL003"
	CodeShortRow      Code = "ROW001"
	CodeInvalidEffect Code = "ROW002"
	CodeInvalidSE     Code = "ROW003"
	CodeInvalidN      Code = "ROW004"
)

var codeMessages = map[Code]string{
	CodeUnreadable:    "file could not be read",
	CodeTooFewRows:    "fewer than two rows",
	CodeNoValidRows:   "no valid rows",
	CodeShortRow:      "row shorter than resolved columns",
	CodeInvalidEffect: "invalid effect",
	CodeInvalidSE:     "invalid standard error",
	CodeInvalidN:      "invalid sample size",
}

// Message is the short description of c.
func (c Code) Message() string {
	if m, ok := codeMessages[c]; ok {
		return m
	}
	return "unknown diagnostic"
}

// RowCodes lists the row-level codes in catalogue order.
var RowCodes = []Code{CodeShortRow, CodeInvalidEffect, CodeInvalidSE, CodeInvalidN}

// Diagnostic describes why a table was rejected.
type Diagnostic struct {
	Code    Code   `json:"code"`
	Source  string `json:"source"`
	Message string `json:"message"`
}

func (d Diagnostic) Error() string {
	return string(d.Code) + " " + d.Source + ": " + d.Message
}

// tableCode classifies a read failure.
func tableCode(err error) Code {
	if errors.Is(err, tabular.ErrTooFewRows) {
		return CodeTooFewRows
	}
	return CodeUnreadable
}

// rowCode classifies a Normalize failure.
func rowCode(err error) Code {
	switch {
	case errors.Is(err, record.ErrShortRow):
		return CodeShortRow
	case errors.Is(err, record.ErrInvalidEffect):
		return CodeInvalidEffect
	case errors.Is(err, record.ErrInvalidSE):
		return CodeInvalidSE
	default:
		return CodeInvalidN
	}
}
