package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/fatih/color"

	"ctp/internal/domain"
)

// contextLines is how many source lines are shown above a failure,
// the failing line included.
const contextLines = 3

var markupAttributes = map[string]color.Attribute{
	domain.MarkupRed:  color.FgRed,
	domain.MarkupBold: color.Bold,
}

// styleFor maps a line's markup onto a color.
func styleFor(markup []string) *color.Color {
	c := color.New()
	for _, m := range markup {
		if attr, ok := markupAttributes[m]; ok {
			c.Add(attr)
		}
	}
	return c
}

// WriteFailure renders f for a terminal: the source lines leading to the
// failure in bold, the failure lines indented like the failing code, then
// the location.
func WriteFailure(w io.Writer, f domain.Failure) {
	bold := color.New(color.Bold)
	code := sourceContext(f.File, f.Line)
	for _, line := range code {
		bold.Fprintln(w, line)
	}

	indent := ""
	if len(code) > 0 {
		last := code[len(code)-1]
		indent = last[:len(last)-len(strings.TrimLeftFunc(last, unicode.IsSpace))]
	}
	for _, line := range f.Lines {
		styleFor(line.Markup).Fprintln(w, indent+line.Text)
	}

	color.New(color.FgRed, color.Bold).Fprint(w, f.File)
	fmt.Fprintf(w, ":%d: C++ failure\n", f.Line)
}

// WriteFailures renders every record, separated by a blank line.
func WriteFailures(w io.Writer, fs domain.Failures) {
	for i, f := range fs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		WriteFailure(w, f)
	}
}

// sourceContext returns up to contextLines lines of file ending at line
// (1-based), right-trimmed. Missing files give no context.
func sourceContext(file string, line int) []string {
	if line <= 0 {
		return nil
	}
	info, err := os.Stat(file)
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}
	fh, err := os.Open(file)
	if err != nil {
		return nil
	}
	defer fh.Close()

	first := line - contextLines + 1
	var lines []string
	r := bufio.NewReader(fh)
	for n := 1; n <= line; n++ {
		text, err := r.ReadString('\n')
		if text == "" && err != nil {
			break
		}
		if n >= first {
			lines = append(lines, strings.TrimRightFunc(text, unicode.IsSpace))
		}
		if err != nil {
			break
		}
	}
	return lines
}
