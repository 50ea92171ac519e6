// Package testutil writes fake native test binaries for tests. The fakes are
// POSIX shell scripts that speak the GoogleTest and Boost.Test command line.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// RequireShell skips the test where the fake binaries cannot run.
func RequireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake test binaries are shell scripts")
	}
}

// WriteScript writes an executable shell script named name into dir and
// returns its path.
func WriteScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	RequireShell(t)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("failed to write script %s: %v", path, err)
	}
	return path
}

// WriteTextFile writes a plain, non-executable file.
func WriteTextFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return path
}

// GoogleTestCase describes one test case of a fake GoogleTest binary.
type GoogleTestCase struct {
	Suite    string
	Name     string
	Failures []string // Failure texts, one <failure> element each
	NotRun   bool
}

// ID returns the fully qualified test id.
func (c GoogleTestCase) ID() string {
	return c.Suite + "." + c.Name
}

// FooTestCases mirrors the classic FooTest fixture: one passing, one failing
// assertion, one uncaught exception and one disabled test.
var FooTestCases = []GoogleTestCase{
	{Suite: "FooTest", Name: "test_success"},
	{Suite: "FooTest", Name: "test_failure", Failures: []string{
		"gtest.cpp:17\nValue of: 5\nExpected: 2 * 3\nWhich is: 6",
	}},
	{Suite: "FooTest", Name: "test_error", Failures: []string{
		"unknown file\nC++ exception with description \"unexpected exception\" thrown in the test body.",
	}},
	{Suite: "FooTest", Name: "DISABLED_test_disabled", NotRun: true},
}

// FakeGoogleTest writes a script that answers --help, --gtest_list_tests and
// --gtest_filter/--gtest_output=xml: like a GoogleTest binary containing
// cases. A filter matching no case writes an empty report and exits 0.
func FakeGoogleTest(t *testing.T, dir, name string, cases []GoogleTestCase) string {
	t.Helper()

	var listing strings.Builder
	suite := ""
	for _, c := range cases {
		if c.Suite != suite {
			suite = c.Suite
			fmt.Fprintf(&listing, "%s.\n", suite)
		}
		fmt.Fprintf(&listing, "  %s\n", c.Name)
	}

	var run strings.Builder
	for _, c := range cases {
		rc := 0
		if len(c.Failures) > 0 {
			rc = 1
		}
		fmt.Fprintf(&run, "  %s)\n    rc=%d\n    cat > \"$out\" <<'XML'\n%s\nXML\n    ;;\n", shellPattern(c.ID()), rc, gtestReport(c))
	}

	body := `out=""
filter=""
for arg in "$@"; do
  case "$arg" in
    --help)
      echo "This program contains tests written using Google Test."
      echo "  --gtest_list_tests"
      echo "      List the names of all tests instead of running them."
      exit 0
      ;;
    --gtest_list_tests)
      cat <<'LIST'
` + listing.String() + `LIST
      exit 0
      ;;
    --gtest_filter=*) filter="${arg#--gtest_filter=}" ;;
    --gtest_output=xml:*) out="${arg#--gtest_output=xml:}" ;;
  esac
done
echo "Note: Google Test filter = $filter"
rc=0
case "$filter" in
` + run.String() + `  *)
    cat > "$out" <<'XML'
<?xml version="1.0" encoding="UTF-8"?>
<testsuites tests="0" name="AllTests"></testsuites>
XML
    ;;
esac
exit $rc
`
	return WriteScript(t, dir, name, body)
}

func gtestReport(c GoogleTestCase) string {
	status := "run"
	if c.NotRun {
		status = "notrun"
	}
	var failures strings.Builder
	for _, f := range c.Failures {
		fmt.Fprintf(&failures, "<failure message=\"\" type=\"\"><![CDATA[%s]]></failure>", f)
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<testsuites name="AllTests">
  <testsuite name="%s">
    <testcase name="%s" status="%s" classname="%s">%s</testcase>
  </testsuite>
</testsuites>`, c.Suite, c.Name, status, c.Suite, failures.String())
}

// shellPattern quotes a test id for use as a case pattern.
func shellPattern(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// BoostCheck is one failed check or exception in a fake Boost.Test log.
type BoostCheck struct {
	Exception bool
	File      string
	Line      int
	Message   string
}

// FakeBoost writes a script that answers --help like a Boost.Test binary and,
// when run, writes checks as its XML log and exits with exitCode.
func FakeBoost(t *testing.T, dir, name string, checks []BoostCheck, exitCode int) string {
	t.Helper()

	var log strings.Builder
	log.WriteString("<TestLog>")
	for _, c := range checks {
		tag := "Error"
		if c.Exception {
			tag = "Exception"
		}
		fmt.Fprintf(&log, `<%s file="%s" line="%d"><![CDATA[%s]]></%s>`, tag, c.File, c.Line, c.Message, tag)
	}
	log.WriteString("</TestLog>")

	body := `log=""
report=""
for arg in "$@"; do
  case "$arg" in
    --help)
      echo "Boost.Test arguments correspond to the following run-time parameters:"
      echo "  --log_format"
      echo "  --output_format"
      exit 0
      ;;
    --log_sink=*) log="${arg#--log_sink=}" ;;
    --report_sink=*) report="${arg#--report_sink=}" ;;
  esac
done
cat > "$log" <<'XML'
` + log.String() + `
XML
echo '<TestResult></TestResult>' > "$report"
echo "Running tests..."
exit ` + fmt.Sprint(exitCode) + "\n"
	return WriteScript(t, dir, name, body)
}

// BoostFailureChecks are the two failed checks of the boost_failure fixture.
var BoostFailureChecks = []BoostCheck{
	{File: "boost_failure.cpp", Line: 8, Message: "check 2 * 3 == 5 failed"},
	{File: "boost_failure.cpp", Line: 14, Message: "check 2 - 1 == 0 failed"},
}

// BoostErrorChecks are the two uncaught exceptions of the boost_error fixture.
var BoostErrorChecks = []BoostCheck{
	{Exception: true, File: "unknown location", Line: 0, Message: "std::runtime_error: unexpected exception"},
	{Exception: true, File: "unknown location", Line: 0, Message: "std::runtime_error: another unexpected exception"},
}
