package domain

// TestFailure is the stored form of one failed or errored test case.
type TestFailure struct {
	Executable string   `json:"executable"`
	TestID     string   `json:"test_id"`
	Adapter    string   `json:"adapter"`
	Status     Status   `json:"status"`
	Failures   Failures `json:"failures"`
	Resolved   bool     `json:"resolved,omitempty"` // Track if test case is marked as resolved
}

// Key returns the key of the failed test, see TestKey.
func (f TestFailure) Key() string {
	return TestKey(f.Executable, f.TestID)
}

// NewTestFailure converts a failed result into its stored form.
func NewTestFailure(r TestResult) TestFailure {
	return TestFailure{
		Executable: r.Test.Executable,
		TestID:     r.Test.ID,
		Adapter:    r.Test.Adapter,
		Status:     r.Outcome.Status,
		Failures:   r.Outcome.Failures,
	}
}
