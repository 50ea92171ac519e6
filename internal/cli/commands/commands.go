package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"ctp/internal/cli"
	"ctp/internal/config"
)

// ErrTestsFailed is returned by run when at least one test failed or
// errored. main maps it to exit status 1 without printing it.
var ErrTestsFailed = errors.New("tests failed")

// Commands holds all CLI commands
type Commands struct {
	Run    *RunCommand
	List   *ListCommand
	Faills *FaillsCommand
}

// NewCommands creates all commands with dependencies. cfg is filled in by
// each command's PreRunE once flags are parsed.
func NewCommands(cfg *config.Config, logger *slog.Logger) *Commands {
	return &Commands{
		Run:    NewRunCommand(cfg, logger),
		List:   NewListCommand(cfg, logger),
		Faills: NewFaillsCommand(cfg, logger),
	}
}

// loadConfig returns a PreRunE that layers config file, environment and
// flags into cfg.
func loadConfig(flags *cli.Flags, cfg *config.Config) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(flags.ToConfigFlags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		*cfg = *loaded
		return nil
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	filesUsage := "File name masks of test executables, shell glob syntax with [^...] for negated classes (default " +
		strings.Join(config.DefaultMasks, ",") + ")"
	filterUsage := "Filter tests by id pattern (supports wildcards, e.g. 'FooTest.*' or '*failure*')"

	// Run command
	runCmd := &cobra.Command{
		Use:     "run [paths...]",
		Short:   "Run native test executables in parallel",
		Long:    "Discover GoogleTest and Boost.Test executables, run every test case and report failures",
		RunE:    c.Run.Execute,
		PreRunE: loadConfig(flags, cfg),
	}
	runCmd.Flags().IntVarP(&flags.Processors, "processors", "p", 0, fmt.Sprintf("Number of processors to use (default %d)", config.DefaultProcessors))
	runCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder where test detection should start")
	runCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", filterUsage)
	runCmd.Flags().StringSliceVar(&flags.Files, "files", nil, filesUsage)
	runCmd.Flags().BoolVar(&flags.FailFast, "fail-fast", false, "Stop on first test failure")
	runCmd.Flags().BoolVar(&flags.OnlyFailed, "failed", false, "Run only tests that failed in the last run")
	runCmd.Flags().BoolVar(&flags.RerunFailures, "rerun-failures", false, "After running all tests, rerun only failed ones once and save that result")
	runCmd.Flags().BoolVar(&flags.OpenFaills, "open-faills", false, "Open the faills viewer when the run finishes with failures")
	runCmd.Flags().StringVar(&flags.MetricsFile, "metrics-file", "", "Write Prometheus metrics of the run to this textfile")
	runCmd.Flags().StringVar(&flags.Store, "store", "", "Where to keep results: json or mysql (default json)")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list [paths...]",
		Short:   "List discovered tests",
		Long:    "Scan and list all test executables without running their tests",
		RunE:    c.List.Execute,
		PreRunE: loadConfig(flags, cfg),
	}
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", filterUsage)
	listCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder where test detection should start")
	listCmd.Flags().StringSliceVar(&flags.Files, "files", nil, filesUsage)
	listCmd.Flags().BoolVarP(&flags.TestCases, "test-cases", "c", false, "List test cases of every executable")
	rootCmd.AddCommand(listCmd)

	// Faills command
	faillsCmd := &cobra.Command{
		Use:     "faills",
		Short:   "View test failures interactively",
		Long:    "Display test failures from the last test run in an interactive viewer",
		RunE:    c.Faills.Execute,
		PreRunE: loadConfig(flags, cfg),
		Args:    cobra.NoArgs,
	}
	rootCmd.AddCommand(faillsCmd)
}

// NewRootCommand builds the ctp command tree. The verbose flag lowers level
// to debug.
func NewRootCommand(version string, level *slog.LevelVar, logger *slog.Logger) *cobra.Command {
	var flags cli.Flags

	rootCmd := &cobra.Command{
		Use:     "ctp",
		Short:   "Parallel C++ test processor",
		Long:    `Discovers GoogleTest and Boost.Test executables, runs their test cases in parallel and reports failures with their source location.`,
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.Verbose {
				level.Set(slog.LevelDebug)
			}
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Log adapter and worker activity to stderr")

	cfg := config.New()
	NewCommands(cfg, logger).Register(rootCmd, &flags, cfg)
	return rootCmd
}
