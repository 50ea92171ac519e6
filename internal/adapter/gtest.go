package adapter

import (
	"context"
	"fmt"
	"os"
	"strings"

	"ctp/internal/domain"
	"ctp/internal/parser"
)

// GoogleTest flags.
const (
	GoogleTestListFlag   = "--gtest_list_tests"
	GoogleTestFilterFlag = "--gtest_filter"
	GoogleTestOutputFlag = "--gtest_output"
)

// GoogleTest runs binaries built with GoogleTest. Each test id is run on its
// own with --gtest_filter and its result read from an XML report.
type GoogleTest struct {
	options
	parser parser.ReportParser
}

// NewGoogleTest creates a new GoogleTest adapter
func NewGoogleTest(opts ...Option) *GoogleTest {
	return &GoogleTest{
		options: newOptions(opts),
		parser:  parser.NewGoogleTestParser(),
	}
}

// Name implements Adapter.
func (g *GoogleTest) Name() string {
	return "gtest"
}

// IsTestSuite implements Adapter. GoogleTest binaries mention
// --gtest_list_tests in their help.
func (g *GoogleTest) IsTestSuite(ctx context.Context, path string) bool {
	out, err := g.run(ctx, path, "--help")
	if err != nil || out.exitCode != 0 {
		return false
	}
	return strings.Contains(string(out.combined), GoogleTestListFlag)
}

// ListTests implements Adapter.
func (g *GoogleTest) ListTests(ctx context.Context, path string) ([]string, error) {
	out, err := g.run(ctx, path, GoogleTestListFlag)
	if err != nil {
		return nil, fmt.Errorf("list tests: %w", err)
	}
	if out.exitCode != 0 {
		return nil, fmt.Errorf("list tests: %w", &ExitError{
			Path:     path,
			Args:     []string{GoogleTestListFlag},
			ExitCode: out.exitCode,
			Output:   string(out.combined),
		})
	}
	return parser.ParseGoogleTestList(string(out.combined)), nil
}

// RunTest implements Adapter. Exit status 0 means the test passed and 1 that
// it failed; anything else is an internal error and the report is not read.
func (g *GoogleTest) RunTest(ctx context.Context, path, id string) (domain.Outcome, error) {
	xmlFile, err := g.tempReport()
	if err != nil {
		return domain.Outcome{}, err
	}
	defer os.Remove(xmlFile)

	out, err := g.run(ctx, path,
		GoogleTestFilterFlag+"="+id,
		GoogleTestOutputFlag+"=xml:"+xmlFile,
	)
	if err != nil {
		return domain.Outcome{}, err
	}
	if out.exitCode != 0 && out.exitCode != 1 {
		return domain.InternalErrorf(domain.UnknownFile,
			"Internal Error: calling %s for test %s failed (returncode=%d):\n%s",
			path, id, out.exitCode, out.combined), nil
	}

	results, err := g.readReport(xmlFile)
	if err != nil {
		return domain.InternalErrorf(domain.UnknownFile,
			"Internal Error: could not read results of %s for test %s: %v\n%s",
			path, id, err, out.combined), nil
	}

	for _, result := range results {
		if result.ID != id {
			continue
		}
		switch {
		case len(result.Failures) > 0:
			failures := make([]domain.Failure, len(result.Failures))
			for i, text := range result.Failures {
				failures[i] = parser.ParseFailureText(text)
			}
			return domain.Failed(failures...), nil
		case result.Skipped:
			return domain.Skipped(), nil
		default:
			return domain.Passed(), nil
		}
	}

	return domain.InternalErrorf(domain.UnknownFile,
		"Internal Error: could not find test %s in results:\n%s",
		id, strings.Join(parser.IDs(results), "\n")), nil
}

// tempReport reserves a unique path for the XML report.
func (g *GoogleTest) tempReport() (string, error) {
	f, err := os.CreateTemp(g.tempDir, "ctp-gtest-*.xml")
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("create report file: %w", err)
	}
	return name, nil
}

func (g *GoogleTest) readReport(xmlFile string) ([]parser.CaseResult, error) {
	f, err := os.Open(xmlFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return g.parser.ParseReport(f)
}
