// Package parser turns the textual and XML output of native test binaries
// into test identifiers and failure records.
package parser

import (
	"io"

	"ctp/internal/domain"
)

// LogParser parses a framework log stream into failures
type LogParser interface {
	ParseLog(r io.Reader) (domain.Failures, error)
}

// ReportParser parses a per-test XML report into case results
type ReportParser interface {
	ParseReport(r io.Reader) ([]CaseResult, error)
}

// CaseResult is one test case found in a report.
type CaseResult struct {
	ID       string   // Fully qualified id, "<suite>.<case>"
	Failures []string // Raw text of every failure element
	Skipped  bool
}

// IDs returns the ids of all results, in report order.
func IDs(results []CaseResult) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids
}
