// Package adapter implements detection, enumeration and execution of native
// test binaries, one Adapter per supported framework.
package adapter

import (
	"context"

	"ctp/internal/domain"
)

// Adapter is the capability set of one native test framework.
//
// Implementations hold no per-run state: every call spawns and waits for
// exactly one child process (ListTests may spawn none).
type Adapter interface {
	// Name identifies the framework, e.g. "gtest".
	Name() string

	// IsTestSuite reports whether the executable at path was built with this
	// framework. It never fails: any problem running the binary means false.
	IsTestSuite(ctx context.Context, path string) bool

	// ListTests returns the test identifiers of the executable in discovery
	// order.
	ListTests(ctx context.Context, path string) ([]string, error)

	// RunTest runs one test identifier and classifies the result. The error
	// is non-nil only when the process could not be started.
	RunTest(ctx context.Context, path, id string) (domain.Outcome, error)
}
