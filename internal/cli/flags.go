package cli

import "ctp/internal/config"

// Flags holds command-line flags
type Flags struct {
	Processors    int
	TestPath      string
	NameFilter    string
	Files         []string
	TestCases     bool
	FailFast      bool
	OnlyFailed    bool
	RerunFailures bool
	OpenFaills    bool
	MetricsFile   string
	Store         string
	Verbose       bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Processors:    f.Processors,
		Filter:        f.NameFilter,
		TestPath:      f.TestPath,
		Files:         f.Files,
		FailFast:      f.FailFast,
		Failed:        f.OnlyFailed,
		RerunFailures: f.RerunFailures,
		OpenFaills:    f.OpenFaills,
		MetricsFile:   f.MetricsFile,
		Store:         f.Store,
		Verbose:       f.Verbose,
		TestCases:     f.TestCases,
	}
}
