// Package execution runs collected test executables on a pool of workers.
package execution

import (
	"context"
	"time"

	"ctp/internal/domain"
	"ctp/internal/driver"
)

// Executor executes collected files and returns their results
type Executor interface {
	Execute(ctx context.Context, files []*driver.File) ([]domain.TestResult, time.Duration, error)
}

// Progress receives running totals while tests execute
type Progress interface {
	Update(passed, skipped, failed int)
	Finish()
}
