package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"ctp/internal/domain"
	"ctp/internal/storage"
)

// RerunFunc runs a single stored failure again.
type RerunFunc func(ctx context.Context, failure domain.TestFailure) (domain.Outcome, error)

// ErrorViewer displays test failures in an interactive TUI
type ErrorViewer struct {
	storage storage.Storage
	rerun   RerunFunc
}

var _ Viewer = (*ErrorViewer)(nil)

// NewErrorViewer creates a new ErrorViewer. rerun may be nil, which disables
// re-running from the viewer.
func NewErrorViewer(st storage.Storage, rerun RerunFunc) *ErrorViewer {
	return &ErrorViewer{
		storage: st,
		rerun:   rerun,
	}
}

// View displays test failures in an interactive TUI
func (ev *ErrorViewer) View(results *domain.TestResultsOutput) error {
	if len(results.Details) == 0 {
		color.Green("✓ No test failures found!")
		return nil
	}

	// Persist resolved flags and re-run results
	save := func() error {
		return ev.storage.SaveOutput(results)
	}

	app := tview.NewApplication()

	// Create list for failed tests (left side)
	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	updateListItem := func(index int) {
		if index < 0 || index >= list.GetItemCount() {
			return
		}
		list.SetItemText(index, listItemText(results.Details[index], index), "")
	}

	for i := range results.Details {
		list.AddItem(listItemText(results.Details[i], i), "", 0, nil)
	}

	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	// Stats header view (shows executable and test id)
	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	// Text view for error details (right side)
	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	// List on left (1/3), details on right (2/3)
	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	status := ""
	updateHeader := func() {
		keys := "[yellow]R[white] to mark resolved"
		if ev.rerun != nil {
			keys += ", [yellow]X[white] to re-run"
		}
		headerView.SetText(fmt.Sprintf(" Test Failures (%d total, %d unresolved) | Use ↑↓ to navigate, %s, → to view details, ← to go back, Ctrl+C to exit %s",
			len(results.Details), countUnresolved(results.Details), keys, status))
	}
	updateHeader()

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index >= 0 && index < len(results.Details) {
			failure := results.Details[index]
			statsView.SetText(formatFailureStats(failure))
			detailsView.SetText(formatFailureDetails(failure)).ScrollToBeginning()
		}
	}

	refresh := func(index int, err error) {
		status = ""
		if err != nil {
			status = fmt.Sprintf("| [red]%s[white]", tview.Escape(err.Error()))
		}
		updateListItem(index)
		updateHeader()
		updateDetails()
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyUp, tcell.KeyDown:
			return event
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			index := list.GetCurrentItem()
			if index < 0 || index >= len(results.Details) {
				return event
			}
			switch event.Rune() {
			case 'r', 'R':
				results.Details[index].Resolved = !results.Details[index].Resolved
				refresh(index, save())
				return nil
			case 'x', 'X':
				if ev.rerun == nil {
					return nil
				}
				outcome, err := ev.rerun(context.Background(), results.Details[index])
				if err == nil {
					results.Details[index] = applyRerun(results.Details[index], outcome)
					err = save()
				}
				refresh(index, err)
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
		updateDetails()
	})

	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	return nil
}

func countUnresolved(details []domain.TestFailure) int {
	count := 0
	for _, d := range details {
		if !d.Resolved {
			count++
		}
	}
	return count
}

// applyRerun folds a new outcome into a stored failure: passing tests become
// resolved, failing ones get the new records.
func applyRerun(failure domain.TestFailure, outcome domain.Outcome) domain.TestFailure {
	if !outcome.IsFailure() {
		failure.Resolved = true
		return failure
	}
	failure.Status = outcome.Status
	failure.Failures = outcome.Failures
	failure.Resolved = false
	return failure
}

// listItemText formats one entry of the failure list
func listItemText(failure domain.TestFailure, index int) string {
	name := tview.Escape(failure.TestID)
	if failure.Resolved {
		return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", index+1, name)
	}
	return fmt.Sprintf("[yellow]%d.[white] %s", index+1, name)
}

// formatFailureDetails formats a test failure for display using tview color tags ([red], [cyan], etc.)
func formatFailureDetails(failure domain.TestFailure) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[red]✗ Test: %s[white] (%s)\n\n", tview.Escape(failure.TestID), failure.Status)
	fmt.Fprintf(&b, "[cyan]Executable: %s[white]\n", tview.Escape(failure.Executable))

	for i, rec := range failure.Failures {
		fmt.Fprintln(&b)
		if rec.HasLocation() {
			fmt.Fprintf(&b, "[yellow]Location %d: %s[white]\n", i+1, tview.Escape(rec.Location()))
			for _, line := range sourceContext(rec.File, rec.Line) {
				fmt.Fprintf(&b, "[::b]%s[::-]\n", tview.Escape(line))
			}
		} else {
			fmt.Fprintf(&b, "[yellow]Failure %d:[white]\n", i+1)
		}
		for _, line := range rec.Lines {
			fmt.Fprintf(&b, "%s%s[-:-:-]\n", tviewTags(line), tview.Escape(line.Text))
		}
	}
	return b.String()
}

// tviewTags maps line markup onto a tview style tag.
func tviewTags(line domain.Line) string {
	fg, attrs := "-", "-"
	if line.Has(domain.MarkupRed) {
		fg = "red"
	}
	if line.Has(domain.MarkupBold) {
		attrs = "b"
	}
	return fmt.Sprintf("[%s::%s]", fg, attrs)
}

// formatFailureStats formats the stats header for a test failure
func formatFailureStats(failure domain.TestFailure) string {
	path := failure.Executable
	if path == "" {
		path = "Unknown path"
	}
	return fmt.Sprintf("[cyan]path:[white] [yellow]%s[white]::[yellow]%s[white] [gray](%s)[white]\n",
		tview.Escape(path), tview.Escape(failure.TestID), failure.Adapter)
}
