package domain

import (
	"fmt"
	"strings"
)

// Markup style names attached to failure lines.
const (
	MarkupRed  = "red"
	MarkupBold = "bold"
)

// Sentinel file names meaning "no source attribution".
const (
	UnknownFile     = "unknown file"
	UnknownLocation = "unknown location"
)

// ErrorMarkup is the markup every reported failure line carries.
var ErrorMarkup = []string{MarkupRed, MarkupBold}

// Line is one rendered line of a failure together with its style names.
type Line struct {
	Text   string   `json:"text"`
	Markup []string `json:"markup,omitempty"`
}

// Has reports whether the line carries the given style.
func (l Line) Has(style string) bool {
	for _, m := range l.Markup {
		if m == style {
			return true
		}
	}
	return false
}

// Failure is one localized assertion or exception failure.
type Failure struct {
	Lines []Line `json:"lines"`
	File  string `json:"file"`
	Line  int    `json:"line"`
}

// NewFailure builds a failure from raw text, one Line per text line, all
// marked as errors.
func NewFailure(file string, line int, contents string) Failure {
	return Failure{
		Lines: MarkLines(SplitLines(contents)),
		File:  file,
		Line:  line,
	}
}

// HasLocation reports whether the failure points at a real source position.
func (f Failure) HasLocation() bool {
	return f.Line > 0 && f.File != "" && f.File != UnknownFile && f.File != UnknownLocation
}

// Texts returns the text of every line.
func (f Failure) Texts() []string {
	texts := make([]string, len(f.Lines))
	for i, l := range f.Lines {
		texts[i] = l.Text
	}
	return texts
}

// Location formats the file reference the way compilers do.
func (f Failure) Location() string {
	return fmt.Sprintf("%s:%d", f.File, f.Line)
}

// String renders the failure without colours.
func (f Failure) String() string {
	return fmt.Sprintf("%s\n%s: C++ failure", strings.Join(f.Texts(), "\n"), f.Location())
}

// Failures is the ordered group of records produced by one failed run.
// A nil or empty Failures never denotes a failure.
type Failures []Failure

// String renders every failure, separated by a blank line.
func (fs Failures) String() string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = f.String()
	}
	return strings.Join(parts, "\n\n")
}

// SplitLines splits text on newlines the way str.splitlines does: a trailing
// newline does not produce an empty last line and "\r\n" counts as one break.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// MarkLines wraps every text with the error markup.
func MarkLines(texts []string) []Line {
	lines := make([]Line, len(texts))
	for i, t := range texts {
		lines[i] = Line{Text: t, Markup: ErrorMarkup}
	}
	return lines
}
