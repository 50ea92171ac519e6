package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ctp/internal/domain"
)

func TestApplyRerun(t *testing.T) {
	stored := domain.TestFailure{
		Executable: "/b/test_x",
		TestID:     "X.y",
		Status:     domain.StatusError,
		Failures:   domain.Failures{domain.NewFailure(domain.UnknownFile, 0, "Internal Error: boom")},
	}

	passed := applyRerun(stored, domain.Passed())
	assert.True(t, passed.Resolved)
	assert.Equal(t, stored.Failures, passed.Failures)

	stored.Resolved = true
	failed := applyRerun(stored, domain.Failed(domain.NewFailure("x.cpp", 3, "Expected: 1")))
	assert.False(t, failed.Resolved)
	assert.Equal(t, domain.StatusFail, failed.Status)
	assert.Equal(t, "x.cpp", failed.Failures[0].File)
}

func TestTviewTags(t *testing.T) {
	assert.Equal(t, "[red::b]", tviewTags(domain.Line{Text: "x", Markup: domain.ErrorMarkup}))
	assert.Equal(t, "[red::-]", tviewTags(domain.Line{Text: "x", Markup: []string{domain.MarkupRed}}))
	assert.Equal(t, "[-::-]", tviewTags(domain.Line{Text: "x"}))
}

func TestListItemText(t *testing.T) {
	f := domain.TestFailure{TestID: "Suite/[0].case"}
	assert.Equal(t, "[yellow]2.[white] Suite/[0[].case", listItemText(f, 1))

	f.Resolved = true
	assert.Contains(t, listItemText(f, 0), "✓")
}

func TestFormatFailureDetails(t *testing.T) {
	details := formatFailureDetails(domain.TestFailure{
		Executable: "/b/test_x",
		TestID:     "X.y",
		Status:     domain.StatusFail,
		Failures: domain.Failures{
			domain.NewFailure("/nonexistent/x.cpp", 3, "Expected: 1"),
			domain.NewFailure(domain.UnknownFile, 0, "C++ exception"),
		},
	})
	assert.Contains(t, details, "✗ Test: X.y[white] (fail)")
	assert.Contains(t, details, "Executable: /b/test_x")
	assert.Contains(t, details, "Location 1: /nonexistent/x.cpp:3")
	assert.Contains(t, details, "[red::b]Expected: 1[-:-:-]")
	assert.Contains(t, details, "Failure 2:")
}

func TestFormatFailureStats(t *testing.T) {
	assert.Contains(t, formatFailureStats(domain.TestFailure{TestID: "X.y", Adapter: "gtest"}), "Unknown path")
}
