package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"ctp/internal/config"
	"ctp/internal/domain"
	"ctp/internal/driver"
)

// Formatter formats and displays output
type Formatter struct {
	config *config.Config
	out    io.Writer
}

// NewFormatter creates a new Formatter writing to stdout
func NewFormatter(cfg *config.Config) *Formatter {
	return &Formatter{
		config: cfg,
		out:    os.Stdout,
	}
}

// PrintMetaStats displays the statistics of a stored run and the tree of its
// failed tests
func (f *Formatter) PrintMetaStats(output *domain.TestResultsOutput) {
	meta := output.Meta

	fmt.Fprintln(f.out)
	color.New(color.FgCyan, color.Bold).Fprintln(f.out, "Test Execution Statistics")
	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Value", Align: text.AlignRight},
	})
	t.AppendRows([]table.Row{
		{"Executables", meta.TotalExecutables},
		{"Total Tests", meta.TotalTests},
		{"Passed", meta.PassedTests},
		{"Failed", meta.FailedTests},
		{"Errors", meta.ErroredTests},
		{"Skipped", meta.SkippedTests},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Duration", fmt.Sprintf("%.2fs", meta.DurationSeconds)},
		{"Workers", meta.Workers},
		{"Timestamp", meta.Timestamp},
	})

	// Update the table style based on overall result status
	switch {
	case meta.FailedTests+meta.ErroredTests > 0:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	case meta.SkippedTests > 0:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}
	t.Render()

	// Print summary line
	fmt.Fprintln(f.out)
	failed := meta.FailedTests + meta.ErroredTests
	if failed == 0 {
		color.New(color.FgGreen).Fprintln(f.out, "✓ All tests passed!")
		return
	}
	color.New(color.FgRed).Fprintf(f.out, "✗ %d test(s) failed (%d assertion failure(s), %d error(s))\n",
		failed, meta.FailedTests, meta.ErroredTests)
	fmt.Fprintln(f.out)
	f.printFailedTestsTree(output.Details)
}

// printFailedTestsTree prints failed tests grouped by executable, in the
// order they were reported
func (f *Formatter) printFailedTestsTree(failures []domain.TestFailure) {
	var executables []string
	byExecutable := make(map[string][]domain.TestFailure)
	for _, failure := range failures {
		if _, ok := byExecutable[failure.Executable]; !ok {
			executables = append(executables, failure.Executable)
		}
		byExecutable[failure.Executable] = append(byExecutable[failure.Executable], failure)
	}

	for i, exe := range executables {
		nodes := make([]treeNode, 0, len(byExecutable[exe]))
		for _, failure := range byExecutable[exe] {
			label := failure.TestID
			if failure.Status == domain.StatusError {
				label += " (error)"
			}
			nodes = append(nodes, treeNode{text: label, style: color.New(color.FgRed)})
		}
		f.printTreeBranch(f.relPath(exe), "", nodes, i == len(executables)-1)
	}
}

// PrintFailures prints the full failure report of every failed test
func (f *Formatter) PrintFailures(failures []domain.TestFailure) {
	header := color.New(color.FgRed, color.Bold)
	for _, failure := range failures {
		fmt.Fprintln(f.out)
		header.Fprintf(f.out, "━━ %s::%s ", f.relPath(failure.Executable), failure.TestID)
		fmt.Fprintf(f.out, "[%s]\n", failure.Status)
		WriteFailures(f.out, failure.Failures)
	}
}

// PrintCollectErrors reports executables that were recognized but could not
// be listed
func (f *Formatter) PrintCollectErrors(errs []driver.CollectError) {
	for _, e := range errs {
		color.New(color.FgRed).Fprintf(f.out, "Error collecting %s: %v\n", f.relPath(e.Path), e.Err)
	}
}

type treeNode struct {
	text  string
	style *color.Color
}

// printTreeBranch prints one root entry and its children
func (f *Formatter) printTreeBranch(root, marker string, children []treeNode, isLast bool) {
	connector, childPrefix := "├── ", "│   "
	if isLast {
		connector, childPrefix = "└── ", "    "
	}
	color.New(color.FgCyan).Fprintf(f.out, "%s%s%s\n", connector, root, marker)

	for j, child := range children {
		caseConnector := "├── "
		if j == len(children)-1 {
			caseConnector = "└── "
		}
		fmt.Fprintf(f.out, "%s%s%s\n", childPrefix, caseConnector, child.style.Sprint(child.text))
	}
}

// PrintTestList prints the collected executables, optionally with their test
// ids. failedKeys is optional; tests in this set (from the last run) are
// marked with [F] in red, and so are executables containing one.
func (f *Formatter) PrintTestList(files []*driver.File, showTestCases bool, failedKeys map[string]struct{}) {
	failMarker := " " + color.RedString("[F]")
	hasFailed := func(item *driver.Item) bool {
		_, ok := failedKeys[item.Test().Key()]
		return ok
	}

	if !showTestCases {
		color.New(color.FgGreen).Fprintf(f.out, "Found %d test executable(s):\n\n", len(files))
	} else {
		color.New(color.FgGreen).Fprintf(f.out, "Found %d test executable(s) with %d test(s):\n\n",
			len(files), len(driver.Items(files)))
	}

	for i, file := range files {
		marker := ""
		for _, item := range file.Items {
			if hasFailed(item) {
				marker = failMarker
				break
			}
		}
		root := fmt.Sprintf("%s (%s)", f.relPath(file.Path), file.Adapter.Name())

		var children []treeNode
		if showTestCases {
			for _, item := range file.Items {
				label := item.ID
				if hasFailed(item) {
					label += failMarker
				}
				children = append(children, treeNode{text: label, style: color.New(color.FgYellow)})
			}
			if len(file.Items) == 0 {
				children = append(children, treeNode{text: "(no test cases found)", style: color.New(color.FgRed)})
			}
		}
		f.printTreeBranch(root, marker, children, i == len(files)-1)

		// Add spacing between executables (except for the last one)
		if showTestCases && i < len(files)-1 {
			fmt.Fprintln(f.out)
		}
	}
}

// relPath shortens path relative to the project for display
func (f *Formatter) relPath(path string) string {
	if f.config == nil {
		return path
	}
	rel, err := filepath.Rel(f.config.ProjectPath, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
