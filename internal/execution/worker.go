package execution

import (
	"context"
	"sync"
	"time"

	"ctp/internal/domain"
	"ctp/internal/driver"
)

// WorkerPool manages a pool of workers for parallel test execution.
// Executables run in parallel; the tests of one executable run one after
// another on the same worker.
type WorkerPool struct {
	workers   int
	runner    *Runner
	scheduler Scheduler
	progress  Progress
}

var _ Executor = (*WorkerPool)(nil)

// NewWorkerPool creates a new WorkerPool
func NewWorkerPool(workers int, runner *Runner, scheduler Scheduler) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	return &WorkerPool{
		workers:   workers,
		runner:    runner,
		scheduler: scheduler,
	}
}

// SetProgress sets the progress bar for the worker pool
func (wp *WorkerPool) SetProgress(progress Progress) {
	wp.progress = progress
}

// Workers returns the number of workers the pool starts at most.
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

// Execute runs every item of files (no fail-fast).
func (wp *WorkerPool) Execute(ctx context.Context, files []*driver.File) ([]domain.TestResult, time.Duration, error) {
	return wp.ExecuteWithOptions(ctx, files, false)
}

// ExecuteWithOptions runs every item of files with optional fail-fast: after
// the first failed or errored test no new test is started. Results come back
// in collection order. When ctx is cancelled the results gathered so far are
// returned together with ctx.Err().
func (wp *WorkerPool) ExecuteWithOptions(ctx context.Context, files []*driver.File, failFast bool) ([]domain.TestResult, time.Duration, error) {
	startTime := time.Now()

	offsets := make(map[*driver.File]int, len(files))
	total := 0
	for _, f := range files {
		offsets[f] = total
		total += len(f.Items)
	}
	if total == 0 {
		return nil, 0, nil
	}

	workerCount := wp.workers
	if workerCount > len(files) {
		workerCount = len(files)
	}
	distribution := wp.scheduler.Schedule(files, workerCount)

	var (
		mu                      sync.Mutex
		slots                   = make([]*domain.TestResult, total)
		passed, skipped, failed int
		stopped                 bool
	)
	shouldStop := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return stopped || ctx.Err() != nil
	}

	var wg sync.WaitGroup
	for i, assigned := range distribution {
		wg.Add(1)
		go func(workerID int, assigned []*driver.File) {
			defer wg.Done()
			for _, file := range assigned {
				for j, item := range file.Items {
					if shouldStop() {
						return
					}
					result := wp.runner.Run(ctx, item, workerID)
					if ctx.Err() != nil {
						// The process was killed; its outcome says nothing about the test.
						return
					}

					mu.Lock()
					slots[offsets[file]+j] = &result
					switch {
					case result.Outcome.IsFailure():
						failed++
						if failFast {
							stopped = true
						}
					case result.Outcome.Status == domain.StatusSkip:
						skipped++
					default:
						passed++
					}
					if wp.progress != nil {
						wp.progress.Update(passed, skipped, failed)
					}
					mu.Unlock()
				}
			}
		}(i+1, assigned)
	}
	wg.Wait()

	if wp.progress != nil {
		wp.progress.Finish()
	}

	results := make([]domain.TestResult, 0, total)
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	return results, time.Since(startTime), ctx.Err()
}
