package parser

import (
	"encoding/xml"
	"fmt"
	"io"
)

type gtestReport struct {
	Suites []gtestSuite `xml:"testsuite"`
}

type gtestSuite struct {
	Name  string      `xml:"name,attr"`
	Cases []gtestCase `xml:"testcase"`
}

type gtestCase struct {
	Name     string         `xml:"name,attr"`
	Status   string         `xml:"status,attr"`
	Result   string         `xml:"result,attr"`
	Failures []gtestFailure `xml:"failure"`
	Skipped  *struct{}      `xml:"skipped"`
}

type gtestFailure struct {
	Message string `xml:"message,attr"`
	Text    string `xml:",chardata"`
}

func (f gtestFailure) contents() string {
	if f.Text != "" {
		return f.Text
	}
	return f.Message
}

func (c gtestCase) skipped() bool {
	return c.Status == "notrun" || c.Result == "skipped" || c.Skipped != nil
}

// GoogleTestParser parses the XML reports written by --gtest_output=xml.
type GoogleTestParser struct{}

// NewGoogleTestParser creates a new GoogleTestParser
func NewGoogleTestParser() *GoogleTestParser {
	return &GoogleTestParser{}
}

// ParseReport returns every test case of the report in document order.
func (p *GoogleTestParser) ParseReport(r io.Reader) ([]CaseResult, error) {
	var report gtestReport
	if err := xml.NewDecoder(r).Decode(&report); err != nil {
		return nil, fmt.Errorf("parse gtest report: %w", err)
	}

	var results []CaseResult
	for _, suite := range report.Suites {
		for _, tc := range suite.Cases {
			failures := make([]string, 0, len(tc.Failures))
			for _, f := range tc.Failures {
				failures = append(failures, f.contents())
			}
			results = append(results, CaseResult{
				ID:       suite.Name + "." + tc.Name,
				Failures: failures,
				Skipped:  tc.skipped(),
			})
		}
	}
	return results, nil
}
