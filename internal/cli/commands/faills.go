package commands

import (
	"errors"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ctp/internal/config"
	"ctp/internal/storage"
	"ctp/internal/ui"
)

// FaillsCommand handles the faills command
type FaillsCommand struct {
	config *config.Config
	logger *slog.Logger
}

// NewFaillsCommand creates a new FaillsCommand
func NewFaillsCommand(cfg *config.Config, logger *slog.Logger) *FaillsCommand {
	return &FaillsCommand{
		config: cfg,
		logger: logger,
	}
}

// Execute runs the command
func (fc *FaillsCommand) Execute(cmd *cobra.Command, args []string) error {
	st, err := storage.New(fc.config)
	if err != nil {
		return err
	}
	defer closeStorage(st)
	results, err := st.Load()
	if errors.Is(err, storage.ErrNoResults) {
		color.Yellow("No previous results found, run tests first")
		return nil
	}
	if err != nil {
		return err
	}

	comps := newComponents(fc.config, fc.logger)
	return ui.NewErrorViewer(st, comps.rerunFunc()).View(results)
}
