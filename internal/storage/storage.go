// Package storage persists the outcome of the last test run so it can be
// inspected and re-run later.
package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/google/uuid"

	"ctp/internal/config"
	"ctp/internal/domain"
)

// ErrNoResults is returned by Load when no run has been stored yet.
var ErrNoResults = errors.New("no stored test results, run tests first")

// Storage persists and loads test run results (e.g. for the faills viewer).
type Storage interface {
	Save(results []domain.TestResult, duration time.Duration, workers int) (*domain.TestResultsOutput, error)
	Load() (*domain.TestResultsOutput, error)
	// SaveOutput writes the full output (e.g. after partial re-run updates).
	SaveOutput(output *domain.TestResultsOutput) error
}

// New returns the storage selected by cfg.Store.
func New(cfg *config.Config) (Storage, error) {
	switch cfg.Store {
	case "", config.StoreJSON:
		return NewJSONStorage(cfg), nil
	case config.StoreMySQL:
		return NewMySQLStorage(cfg.MySQLDSN)
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// BuildOutput turns run results into the stored document. Only failed and
// errored tests are kept as details.
func BuildOutput(results []domain.TestResult, duration time.Duration, workers int) *domain.TestResultsOutput {
	executables := make(map[string]struct{})
	meta := domain.TestResultsMeta{
		RunID:           uuid.NewString(),
		TotalTests:      len(results),
		Duration:        duration.String(),
		DurationSeconds: duration.Seconds(),
		Workers:         workers,
		Timestamp:       time.Now().Format(time.RFC3339),
	}
	details := make([]domain.TestFailure, 0)

	for _, r := range results {
		executables[r.Test.Executable] = struct{}{}
		switch r.Outcome.Status {
		case domain.StatusPass:
			meta.PassedTests++
		case domain.StatusSkip:
			meta.SkippedTests++
		case domain.StatusFail:
			meta.FailedTests++
		case domain.StatusError:
			meta.ErroredTests++
		}
		if r.Outcome.IsFailure() {
			details = append(details, stripFailure(domain.NewTestFailure(r)))
		}
	}
	meta.TotalExecutables = len(executables)

	return &domain.TestResultsOutput{Meta: meta, Details: details}
}

// Merge applies the results of a partial re-run to a stored document: tests
// that pass now are dropped from the details, tests that still fail get their
// new failures. Counts are recomputed from the merged details.
func Merge(prev *domain.TestResultsOutput, rerun *domain.TestResultsOutput, rerunKeys map[string]struct{}) *domain.TestResultsOutput {
	merged := *prev
	merged.Details = make([]domain.TestFailure, 0, len(prev.Details))

	fresh := make(map[string]domain.TestFailure, len(rerun.Details))
	for _, d := range rerun.Details {
		fresh[d.Key()] = d
	}
	for _, d := range prev.Details {
		key := d.Key()
		if _, ran := rerunKeys[key]; !ran {
			merged.Details = append(merged.Details, d)
			continue
		}
		if f, ok := fresh[key]; ok {
			merged.Details = append(merged.Details, f)
			delete(fresh, key)
		}
	}
	for _, d := range rerun.Details {
		if _, ok := fresh[d.Key()]; ok {
			merged.Details = append(merged.Details, d)
		}
	}

	failed, errored := 0, 0
	for _, d := range merged.Details {
		if d.Status == domain.StatusError {
			errored++
		} else {
			failed++
		}
	}
	recovered := (prev.Meta.FailedTests + prev.Meta.ErroredTests) - (failed + errored)
	merged.Meta.FailedTests = failed
	merged.Meta.ErroredTests = errored
	merged.Meta.PassedTests = prev.Meta.PassedTests + recovered
	merged.Meta.Timestamp = rerun.Meta.Timestamp
	return &merged
}

// FailedKeys returns the keys of the unresolved failures of output.
func FailedKeys(output *domain.TestResultsOutput) map[string]struct{} {
	keys := make(map[string]struct{})
	if output == nil {
		return keys
	}
	for _, d := range output.Details {
		if !d.Resolved {
			keys[d.Key()] = struct{}{}
		}
	}
	return keys
}

// stripFailure removes terminal escape codes the test binaries may have
// printed into captured output.
func stripFailure(f domain.TestFailure) domain.TestFailure {
	failures := make(domain.Failures, len(f.Failures))
	for i, rec := range f.Failures {
		lines := make([]domain.Line, len(rec.Lines))
		for j, l := range rec.Lines {
			lines[j] = domain.Line{Text: stripansi.Strip(l.Text), Markup: l.Markup}
		}
		failures[i] = domain.Failure{Lines: lines, File: rec.File, Line: rec.Line}
	}
	f.Failures = failures
	return f
}
