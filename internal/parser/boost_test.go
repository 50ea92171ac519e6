package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctp/internal/domain"
)

func TestBoostParser_ParseLog(t *testing.T) {
	t.Run("errors at the root", func(t *testing.T) {
		log := `<TestLog>` +
			`<Error file="boost_failure.cpp" line="8">check 2 * 3 == 5 failed</Error>` +
			`<Error file="boost_failure.cpp" line="14">check 2 - 1 == 0 failed</Error>` +
			`</TestLog>`
		failures, err := NewBoostParser().ParseLog(strings.NewReader(log))
		require.NoError(t, err)
		require.Len(t, failures, 2)

		assert.Equal(t, []string{"check 2 * 3 == 5 failed"}, failures[0].Texts())
		assert.Equal(t, "boost_failure.cpp", failures[0].File)
		assert.Equal(t, 8, failures[0].Line)

		assert.Equal(t, []string{"check 2 - 1 == 0 failed"}, failures[1].Texts())
		assert.Equal(t, 14, failures[1].Line)
	})

	t.Run("exceptions come before errors", func(t *testing.T) {
		log := `<TestLog>` +
			`<Error file="a.cpp" line="1">first error</Error>` +
			`<Exception file="unknown location" line="0">std::runtime_error: unexpected exception</Exception>` +
			`</TestLog>`
		failures, err := NewBoostParser().ParseLog(strings.NewReader(log))
		require.NoError(t, err)
		require.Len(t, failures, 2)
		assert.Equal(t, domain.UnknownLocation, failures[0].File)
		assert.Equal(t, "a.cpp", failures[1].File)
	})

	t.Run("nested test units", func(t *testing.T) {
		log := `<TestLog><TestSuite name="MyTest"><TestCase name="test_failure">` +
			`<Error file="t.cpp" line="11"><![CDATA[check 2 * 3 == 5 has failed]]></Error>` +
			`</TestCase><TestCase name="test_error">` +
			`<Exception file="t.cpp" line="14"><![CDATA[unknown type]]><LastCheckpoint file="t.cpp" line="13"><![CDATA[Test case entry]]></LastCheckpoint></Exception>` +
			`</TestCase></TestSuite></TestLog>`
		failures, err := NewBoostParser().ParseLog(strings.NewReader(log))
		require.NoError(t, err)
		require.Len(t, failures, 2)
		assert.Equal(t, 14, failures[0].Line)
		assert.Equal(t, []string{"unknown type"}, failures[0].Texts())
		assert.Equal(t, 11, failures[1].Line)
	})

	t.Run("multi-line messages", func(t *testing.T) {
		log := "<TestLog><Error file=\"m.cpp\" line=\"2\">line one\nline two\n</Error></TestLog>"
		failures, err := NewBoostParser().ParseLog(strings.NewReader(log))
		require.NoError(t, err)
		require.Len(t, failures, 1)
		assert.Equal(t, []string{"line one", "line two"}, failures[0].Texts())
	})

	t.Run("no failures", func(t *testing.T) {
		for _, log := range []string{"", "  \n", "<TestLog></TestLog>"} {
			failures, err := NewBoostParser().ParseLog(strings.NewReader(log))
			require.NoError(t, err)
			assert.Empty(t, failures)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := NewBoostParser().ParseLog(strings.NewReader("<TestLog><Error"))
		assert.Error(t, err)
	})

	t.Run("invalid line attribute", func(t *testing.T) {
		_, err := NewBoostParser().ParseLog(strings.NewReader(`<TestLog><Error file="x" line="y">z</Error></TestLog>`))
		assert.Error(t, err)
	})
}
