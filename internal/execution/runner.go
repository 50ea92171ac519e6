package execution

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"ctp/internal/adapter"
	"ctp/internal/domain"
	"ctp/internal/driver"
)

// WorkerIDEnv is set for every test process to the number of the worker
// running it, starting at 1.
const WorkerIDEnv = "CTP_WORKER_ID"

// Runner executes a single collected test
type Runner struct {
	logger *slog.Logger
}

// NewRunner creates a new Runner. A nil logger discards output.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{logger: logger}
}

// Run executes item on behalf of the given worker
func (r *Runner) Run(ctx context.Context, item *driver.Item, workerID int) domain.TestResult {
	ctx = adapter.WithEnv(ctx, fmt.Sprintf("%s=%d", WorkerIDEnv, workerID))
	result := item.Result(ctx)
	r.logger.Debug("test finished",
		"worker", workerID,
		"executable", item.File.Path,
		"test", item.ID,
		"status", result.Outcome.Status,
		"duration", result.Duration,
	)
	return result
}
