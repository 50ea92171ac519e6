package adapter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"ctp/internal/domain"
	"ctp/internal/parser"
)

// BoostTestsFailed is the exit status Boost.Test uses when the run completed
// with failing checks.
const BoostTestsFailed = 201

// Boost runs binaries built with Boost.Test. Boost offers no way to select a
// single test, so the whole binary is one test named after the executable.
type Boost struct {
	options
	parser parser.LogParser
}

// NewBoost creates a new Boost adapter
func NewBoost(opts ...Option) *Boost {
	return &Boost{
		options: newOptions(opts),
		parser:  parser.NewBoostParser(),
	}
}

// Name implements Adapter.
func (b *Boost) Name() string {
	return "boost"
}

// IsTestSuite implements Adapter.
func (b *Boost) IsTestSuite(ctx context.Context, path string) bool {
	out, err := b.run(ctx, path, "--help")
	if err != nil || out.exitCode != 0 {
		return false
	}
	help := string(out.stdout)
	return strings.Contains(help, "--output_format") && strings.Contains(help, "log_format")
}

// ListTests implements Adapter. No process is started.
func (b *Boost) ListTests(_ context.Context, path string) ([]string, error) {
	return []string{baseName(path)}, nil
}

// RunTest implements Adapter. The id is only used in messages: the whole
// binary runs. Every Exception and Error of the XML log becomes a failure.
func (b *Boost) RunTest(ctx context.Context, path, id string) (domain.Outcome, error) {
	dir, err := os.MkdirTemp(b.tempDir, "ctp-boost-*")
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("create report dir: %w", err)
	}
	defer os.RemoveAll(dir)

	logFile := filepath.Join(dir, "log.xml")
	reportFile := filepath.Join(dir, "report.xml")

	out, err := b.run(ctx, path,
		"--output_format=xml",
		"--log_sink="+logFile,
		"--report_sink="+reportFile,
	)
	if err != nil {
		return domain.Outcome{}, err
	}
	if out.exitCode != 0 && out.exitCode != BoostTestsFailed {
		return domain.InternalErrorf(domain.UnknownLocation,
			"Internal Error: calling %s for test %s failed (returncode=%d):\nstdout:%s\nstderr:%s",
			path, id, out.exitCode, out.stdout, out.stderr), nil
	}

	failures, err := b.readLog(logFile)
	if err != nil {
		return domain.InternalErrorf(domain.UnknownLocation,
			"Internal Error: could not read results of %s for test %s: %v\nstdout:%s\nstderr:%s",
			path, id, err, out.stdout, out.stderr), nil
	}
	if len(failures) == 0 && out.exitCode == BoostTestsFailed {
		return domain.InternalErrorf(domain.UnknownLocation,
			"Internal Error: could not read results of %s for test %s: no failures logged (returncode=%d)\nstdout:%s\nstderr:%s",
			path, id, out.exitCode, out.stdout, out.stderr), nil
	}
	return domain.Failed(failures...), nil
}

// readLog parses the XML log. A missing or blank log has no failures.
func (b *Boost) readLog(logFile string) (domain.Failures, error) {
	f, err := os.Open(logFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return b.parser.ParseLog(f)
}

// baseName is the file name of path without its extension.
func baseName(path string) string {
	name := filepath.Base(path)
	if ext := filepath.Ext(name); ext != name {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}
