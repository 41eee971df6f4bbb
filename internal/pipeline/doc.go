// Package pipeline discovers source tables, normalizes them and materializes
// the cleaned files and the mock-data module.
//
// A run is sequential. Problems with a single file never abort it; only an
// unreadable source directory does.
//
// # Diagnostic Codes Reference
//
// Every table or row the pipeline rejects is reported with a code so a
// rejected source can be traced back without reading logs.
//
// # Table Diagnostics (TBL001-TBL099)
//
// The whole source is skipped; the run continues with the next file:
//
//	TBL001 - Unreadable: The file could not be opened or parsed
//	         Action: Check permissions and that the file is delimited text
//
//	TBL002 - Too few rows: The file has no data row after the header
//	         Action: Add at least one data row
//
//	TBL003 - No valid rows: Every data row was dropped
//	         Action: Review the ROW codes reported for the file
//
// # Row Diagnostics (ROW001-ROW099)
//
// A single row is dropped and counted against its table:
//
//	ROW001 - Short row: The row has fewer cells than the resolved columns need
//	ROW002 - Invalid effect: The effect cell is not a finite number
//	ROW003 - Invalid standard error: The standard error cell is not a finite number
//	ROW004 - Invalid sample size: The sample size cell is not a non-negative number
package pipeline
