package commands

import (
	"context"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ctp/internal/config"
	"ctp/internal/storage"
)

// ListCommand handles the list command
type ListCommand struct {
	config *config.Config
	logger *slog.Logger
}

// NewListCommand creates a new ListCommand
func NewListCommand(cfg *config.Config, logger *slog.Logger) *ListCommand {
	return &ListCommand{
		config: cfg,
		logger: logger,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	comps := newComponents(lc.config, lc.logger)

	files, err := comps.collect(ctx, args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		color.Yellow("No tests found")
		return nil
	}

	// Mark failures of the last run when there is one
	var failedKeys map[string]struct{}
	if st, err := storage.New(lc.config); err != nil {
		lc.logger.Debug("storage unavailable, not marking failures", "error", err)
	} else {
		defer closeStorage(st)
		if last, err := st.Load(); err != nil {
			lc.logger.Debug("no previous results, not marking failures", "error", err)
		} else {
			failedKeys = storage.FailedKeys(last)
		}
	}

	comps.formatter.PrintTestList(files, lc.config.Flags.TestCases, failedKeys)
	return nil
}
