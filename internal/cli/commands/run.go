package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ctp/internal/config"
	"ctp/internal/domain"
	"ctp/internal/driver"
	"ctp/internal/execution"
	"ctp/internal/metrics"
	"ctp/internal/storage"
	"ctp/internal/ui"
)

// RunCommand handles the run command
type RunCommand struct {
	config *config.Config
	logger *slog.Logger
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(cfg *config.Config, logger *slog.Logger) *RunCommand {
	return &RunCommand{
		config: cfg,
		logger: logger,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	comps := newComponents(rc.config, rc.logger)

	st, err := storage.New(rc.config)
	if err != nil {
		return err
	}
	defer closeStorage(st)

	// Discover tests
	files, err := comps.collect(ctx, args)
	if err != nil {
		return err
	}

	// Narrow down to the failures of the last run
	var previous *domain.TestResultsOutput
	if rc.config.Flags.Failed {
		previous, err = st.Load()
		if errors.Is(err, storage.ErrNoResults) {
			color.Yellow("No previous results found, run tests first")
			return nil
		}
		if err != nil {
			return err
		}
		files = selectItems(files, inKeys(storage.FailedKeys(previous)))
	}

	items := driver.Items(files)
	if len(items) == 0 {
		color.Yellow("No tests to execute")
		return nil
	}

	// Execute tests
	results, duration, err := rc.execute(ctx, files, len(items))
	if err != nil {
		return err
	}

	if rc.config.Flags.RerunFailures {
		results, err = rc.rerunFailures(ctx, files, results)
		if err != nil {
			return err
		}
	}

	// Save results
	var output *domain.TestResultsOutput
	if previous != nil {
		ran := make(map[string]struct{}, len(items))
		for _, item := range items {
			ran[item.Test().Key()] = struct{}{}
		}
		output = storage.Merge(previous, storage.BuildOutput(results, duration, rc.config.Processors), ran)
		err = st.SaveOutput(output)
	} else {
		output, err = st.Save(results, duration, rc.config.Processors)
	}
	if err != nil {
		return fmt.Errorf("failed to save test results: %w", err)
	}

	if rc.config.MetricsFile != "" {
		m := metrics.New()
		m.RecordResults(results)
		m.RecordRun(output.Meta, float64(time.Now().Unix()))
		if err := m.WriteTextfile(rc.config.MetricsFile); err != nil {
			return err
		}
	}

	// Print failures of this run, then stats
	comps.formatter.PrintFailures(failuresOf(results))
	comps.formatter.PrintMetaStats(output)

	if !anyFailed(results) {
		return nil
	}
	if rc.config.Flags.OpenFaills {
		if err := ui.NewErrorViewer(st, comps.rerunFunc()).View(output); err != nil {
			return err
		}
	}
	return ErrTestsFailed
}

func (rc *RunCommand) execute(ctx context.Context, files []*driver.File, count int) ([]domain.TestResult, time.Duration, error) {
	pool := execution.NewWorkerPool(rc.config.Processors, execution.NewRunner(rc.logger), execution.NewRoundRobinScheduler())
	pool.SetProgress(ui.NewProgressBar(count))
	return pool.ExecuteWithOptions(ctx, files, rc.config.Flags.FailFast)
}

// rerunFailures runs every failed test once more and keeps the new result.
func (rc *RunCommand) rerunFailures(ctx context.Context, files []*driver.File, results []domain.TestResult) ([]domain.TestResult, error) {
	failed := make(map[string]struct{})
	for _, r := range results {
		if r.Outcome.IsFailure() {
			failed[r.Test.Key()] = struct{}{}
		}
	}
	if len(failed) == 0 {
		return results, nil
	}

	color.Cyan("Re-running %d failed test(s)", len(failed))
	retryFiles := selectItems(files, inKeys(failed))
	retried, _, err := rc.execute(ctx, retryFiles, len(failed))
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]domain.TestResult, len(retried))
	for _, r := range retried {
		byKey[r.Test.Key()] = r
	}
	merged := make([]domain.TestResult, len(results))
	for i, r := range results {
		if again, ok := byKey[r.Test.Key()]; ok {
			r = again
		}
		merged[i] = r
	}
	return merged, nil
}

func failuresOf(results []domain.TestResult) []domain.TestFailure {
	var failures []domain.TestFailure
	for _, r := range results {
		if r.Outcome.IsFailure() {
			failures = append(failures, domain.NewTestFailure(r))
		}
	}
	return failures
}

func anyFailed(results []domain.TestResult) bool {
	for _, r := range results {
		if r.Outcome.IsFailure() {
			return true
		}
	}
	return false
}
