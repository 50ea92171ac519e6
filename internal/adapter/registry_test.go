package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctp/internal/domain"
	"ctp/internal/testutil"
)

func TestIsTestSuite(t *testing.T) {
	dir := t.TempDir()
	gtest := testutil.FakeGoogleTest(t, dir, "gtest", testutil.FooTestCases)
	boost := testutil.FakeBoost(t, dir, "boost_success", nil, 0)
	text := testutil.WriteTextFile(t, dir, "foo.txt", "just text\n")
	failing := testutil.WriteScript(t, dir, "failing_help", "echo '--gtest_list_tests --output_format log_format'\nexit 1\n")

	tests := []struct {
		name    string
		adapter Adapter
		path    string
		want    bool
	}{
		{name: "gtest recognizes gtest", adapter: NewGoogleTest(), path: gtest, want: true},
		{name: "gtest rejects boost", adapter: NewGoogleTest(), path: boost, want: false},
		{name: "boost recognizes boost", adapter: NewBoost(), path: boost, want: true},
		{name: "boost rejects gtest", adapter: NewBoost(), path: gtest, want: false},
		{name: "gtest rejects text file", adapter: NewGoogleTest(), path: text, want: false},
		{name: "boost rejects text file", adapter: NewBoost(), path: text, want: false},
		{name: "gtest rejects missing file", adapter: NewGoogleTest(), path: dir + "/missing", want: false},
		{name: "boost rejects directory", adapter: NewBoost(), path: dir, want: false},
		{name: "gtest rejects non-zero help", adapter: NewGoogleTest(), path: failing, want: false},
		{name: "boost rejects non-zero help", adapter: NewBoost(), path: failing, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.adapter.IsTestSuite(context.Background(), tt.path))
		})
	}
}

type stubAdapter struct {
	name    string
	matches bool
	probed  *[]string
}

func (s stubAdapter) Name() string { return s.name }

func (s stubAdapter) IsTestSuite(context.Context, string) bool {
	*s.probed = append(*s.probed, s.name)
	return s.matches
}

func (s stubAdapter) ListTests(context.Context, string) ([]string, error) { return nil, nil }

func (s stubAdapter) RunTest(context.Context, string, string) (domain.Outcome, error) {
	return domain.Passed(), nil
}

func TestRegistry_Detect(t *testing.T) {
	t.Run("first match wins", func(t *testing.T) {
		var probed []string
		r := NewRegistry(
			stubAdapter{name: "a", probed: &probed},
			stubAdapter{name: "b", matches: true, probed: &probed},
			stubAdapter{name: "c", matches: true, probed: &probed},
		)
		got := r.Detect(context.Background(), "/bin/x")
		require.NotNil(t, got)
		assert.Equal(t, "b", got.Name())
		assert.Equal(t, []string{"a", "b"}, probed)
	})

	t.Run("no match", func(t *testing.T) {
		var probed []string
		r := NewRegistry(stubAdapter{name: "a", probed: &probed})
		assert.Nil(t, r.Detect(context.Background(), "/bin/x"))
	})

	t.Run("registered adapters are probed last", func(t *testing.T) {
		var probed []string
		r := NewRegistry(stubAdapter{name: "a", probed: &probed})
		r.Register(stubAdapter{name: "z", matches: true, probed: &probed})
		assert.Equal(t, "z", r.Detect(context.Background(), "/bin/x").Name())
	})

	t.Run("default order", func(t *testing.T) {
		r := DefaultRegistry()
		names := []string{}
		for _, a := range r.Adapters() {
			names = append(names, a.Name())
		}
		assert.Equal(t, []string{"gtest", "boost"}, names)
		assert.NotNil(t, r.Lookup("boost"))
		assert.Nil(t, r.Lookup("catch2"))
	})

	t.Run("real binaries", func(t *testing.T) {
		dir := t.TempDir()
		r := DefaultRegistry()
		gtest := testutil.FakeGoogleTest(t, dir, "test_gtest", testutil.FooTestCases)
		boost := testutil.FakeBoost(t, dir, "test_boost", nil, 0)
		assert.Equal(t, "gtest", r.Detect(context.Background(), gtest).Name())
		assert.Equal(t, "boost", r.Detect(context.Background(), boost).Name())
		assert.Nil(t, r.Detect(context.Background(), testutil.WriteTextFile(t, dir, "test_notes", "x")))
	})
}
