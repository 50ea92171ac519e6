package domain

import (
	"fmt"
	"time"
)

// Status is the outcome class of one test run
type Status string

const (
	StatusPass  Status = "pass"
	StatusSkip  Status = "skip"
	StatusFail  Status = "fail"
	StatusError Status = "error"
)

// Outcome is the result of running one test identifier. Fail outcomes hold
// at least one failure; error outcomes hold exactly one synthetic failure
// describing the tooling problem.
type Outcome struct {
	Status   Status
	Failures Failures
}

// Passed returns the success outcome.
func Passed() Outcome {
	return Outcome{Status: StatusPass}
}

// Skipped returns the outcome of a test the framework did not run.
func Skipped() Outcome {
	return Outcome{Status: StatusSkip}
}

// Failed returns a fail outcome, or a pass outcome when no failures are given.
func Failed(failures ...Failure) Outcome {
	if len(failures) == 0 {
		return Passed()
	}
	return Outcome{Status: StatusFail, Failures: Failures(failures)}
}

// InternalError returns an error outcome whose single failure carries msg
// and no source attribution.
func InternalError(file string, msg string) Outcome {
	return Outcome{
		Status:   StatusError,
		Failures: Failures{NewFailure(file, 0, msg)},
	}
}

// InternalErrorf is InternalError with formatting.
func InternalErrorf(file string, format string, args ...any) Outcome {
	return InternalError(file, fmt.Sprintf(format, args...))
}

// IsFailure reports whether the outcome must be reported as failed.
func (o Outcome) IsFailure() bool {
	return o.Status == StatusFail || o.Status == StatusError
}

// TestResult is the outcome of one collected test case.
type TestResult struct {
	Test     Test
	Outcome  Outcome
	Duration time.Duration
}

// TestResultsMeta contains metadata about a test run
type TestResultsMeta struct {
	RunID            string  `json:"run_id"`
	TotalExecutables int     `json:"total_executables"`
	TotalTests       int     `json:"total_tests"`
	PassedTests      int     `json:"passed_tests"`
	FailedTests      int     `json:"failed_tests"`
	ErroredTests     int     `json:"errored_tests"`
	SkippedTests     int     `json:"skipped_tests"`
	Duration         string  `json:"duration"`
	DurationSeconds  float64 `json:"duration_seconds"`
	Workers          int     `json:"workers"`
	Timestamp        string  `json:"timestamp"`
}

// TestResultsOutput is the complete output structure for test results
type TestResultsOutput struct {
	Meta    TestResultsMeta `json:"meta"`
	Details []TestFailure   `json:"details"`
}
