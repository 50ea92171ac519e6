package adapter

import (
	"context"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctp/internal/domain"
	"ctp/internal/testutil"
)

func newTestGoogleTest(t *testing.T, opts ...Option) (*GoogleTest, string) {
	t.Helper()
	tmp := t.TempDir()
	return NewGoogleTest(append([]Option{WithTempDir(tmp)}, opts...)...), tmp
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary report files must be removed")
}

func TestGoogleTest_ListTests(t *testing.T) {
	bin := testutil.FakeGoogleTest(t, t.TempDir(), "gtest", testutil.FooTestCases)
	g, _ := newTestGoogleTest(t)

	expected := []string{
		"FooTest.test_success",
		"FooTest.test_failure",
		"FooTest.test_error",
		"FooTest.DISABLED_test_disabled",
	}
	ids, err := g.ListTests(context.Background(), bin)
	require.NoError(t, err)
	assert.Equal(t, expected, ids)

	again, err := g.ListTests(context.Background(), bin)
	require.NoError(t, err)
	assert.Equal(t, ids, again, "listing must be deterministic")
}

func TestGoogleTest_ListTests_Errors(t *testing.T) {
	g, _ := newTestGoogleTest(t)

	t.Run("non-zero exit", func(t *testing.T) {
		bin := testutil.WriteScript(t, t.TempDir(), "broken", "echo 'cannot list' >&2\nexit 3\n")
		_, err := g.ListTests(context.Background(), bin)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 3, exitErr.ExitCode)
		assert.Contains(t, exitErr.Output, "cannot list")
	})

	t.Run("missing binary", func(t *testing.T) {
		_, err := g.ListTests(context.Background(), "/non/existent/gtest")
		assert.Error(t, err)
	})
}

func TestGoogleTest_RunTest(t *testing.T) {
	bin := testutil.FakeGoogleTest(t, t.TempDir(), "gtest", testutil.FooTestCases)

	t.Run("success", func(t *testing.T) {
		g, tmp := newTestGoogleTest(t)
		outcome, err := g.RunTest(context.Background(), bin, "FooTest.test_success")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPass, outcome.Status)
		assert.Empty(t, outcome.Failures)
		assertEmptyDir(t, tmp)
	})

	t.Run("assertion failure", func(t *testing.T) {
		g, tmp := newTestGoogleTest(t)
		outcome, err := g.RunTest(context.Background(), bin, "FooTest.test_failure")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusFail, outcome.Status)
		require.Len(t, outcome.Failures, 1)

		failure := outcome.Failures[0]
		assert.Equal(t, []domain.Line{
			{Text: "Value of: 5", Markup: domain.ErrorMarkup},
			{Text: "Expected: 2 * 3", Markup: domain.ErrorMarkup},
			{Text: "Which is: 6", Markup: domain.ErrorMarkup},
		}, failure.Lines)
		assert.Equal(t, "gtest.cpp", failure.File)
		assert.Equal(t, 17, failure.Line)
		assertEmptyDir(t, tmp)
	})

	t.Run("uncaught exception", func(t *testing.T) {
		g, _ := newTestGoogleTest(t)
		outcome, err := g.RunTest(context.Background(), bin, "FooTest.test_error")
		require.NoError(t, err)
		require.Len(t, outcome.Failures, 1)
		assert.Equal(t, []string{
			"unknown file",
			`C++ exception with description "unexpected exception" thrown in the test body.`,
		}, outcome.Failures[0].Texts())
		assert.Equal(t, domain.UnknownFile, outcome.Failures[0].File)
		assert.Equal(t, 0, outcome.Failures[0].Line)
	})

	t.Run("disabled test is skipped", func(t *testing.T) {
		g, tmp := newTestGoogleTest(t)
		outcome, err := g.RunTest(context.Background(), bin, "FooTest.DISABLED_test_disabled")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSkip, outcome.Status)
		assert.Empty(t, outcome.Failures)
		assertEmptyDir(t, tmp)
	})

	t.Run("unknown id", func(t *testing.T) {
		g, tmp := newTestGoogleTest(t)
		outcome, err := g.RunTest(context.Background(), bin, "FooTest.missing")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusError, outcome.Status)
		require.Len(t, outcome.Failures, 1)
		assert.Contains(t, outcome.Failures[0].Texts()[0], "Internal Error: could not find test FooTest.missing in results")
		assertEmptyDir(t, tmp)
	})

	t.Run("every listed id round-trips", func(t *testing.T) {
		g, _ := newTestGoogleTest(t)
		ids, err := g.ListTests(context.Background(), bin)
		require.NoError(t, err)
		for _, id := range ids {
			outcome, err := g.RunTest(context.Background(), bin, id)
			require.NoError(t, err)
			assert.NotEqual(t, domain.StatusError, outcome.Status, id)
		}
	})

	t.Run("repeated runs agree", func(t *testing.T) {
		g, _ := newTestGoogleTest(t)
		first, err := g.RunTest(context.Background(), bin, "FooTest.test_failure")
		require.NoError(t, err)
		second, err := g.RunTest(context.Background(), bin, "FooTest.test_failure")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestGoogleTest_RunTest_InternalError(t *testing.T) {
	g, tmp := newTestGoogleTest(t, WithCommand(func(ctx context.Context, name string, arg ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sh", "-c", "echo 'segmentation fault'; exit 100")
	}))
	testutil.RequireShell(t)

	outcome, err := g.RunTest(context.Background(), "/fake/gtest", "FooTest.test_success")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, outcome.Status)
	require.Len(t, outcome.Failures, 1)

	failure := outcome.Failures[0]
	assert.Contains(t, failure.Texts()[0], "Internal Error: calling /fake/gtest for test FooTest.test_success failed (returncode=100)")
	assert.Contains(t, failure.Texts(), "segmentation fault")
	assert.Equal(t, domain.UnknownFile, failure.File)
	assert.Equal(t, 0, failure.Line)
	assertEmptyDir(t, tmp)
}

func TestGoogleTest_RunTest_MalformedReport(t *testing.T) {
	bin := testutil.WriteScript(t, t.TempDir(), "gtest", `for arg in "$@"; do
  case "$arg" in
    --gtest_output=xml:*) printf '<testsuites><testsuite' > "${arg#--gtest_output=xml:}" ;;
  esac
done
exit 0
`)
	g, tmp := newTestGoogleTest(t)

	outcome, err := g.RunTest(context.Background(), bin, "FooTest.test_success")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, outcome.Status)
	assert.Contains(t, outcome.Failures[0].Texts()[0], "Internal Error: could not read results")
	assertEmptyDir(t, tmp)
}

func TestGoogleTest_RunTest_SpawnFailure(t *testing.T) {
	g, tmp := newTestGoogleTest(t)
	_, err := g.RunTest(context.Background(), "/non/existent/gtest", "FooTest.test_success")
	assert.Error(t, err)
	assertEmptyDir(t, tmp)
}

func TestGoogleTest_RunTest_Env(t *testing.T) {
	bin := testutil.WriteScript(t, t.TempDir(), "gtest", "echo \"worker=$CTP_WORKER_ID\"\nexit 7\n")
	g, _ := newTestGoogleTest(t)

	ctx := WithEnv(context.Background(), "CTP_WORKER_ID=3")
	outcome, err := g.RunTest(ctx, bin, "FooTest.test_success")
	require.NoError(t, err)
	assert.Contains(t, outcome.Failures[0].Texts(), "worker=3")
}
