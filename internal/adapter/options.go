package adapter

import (
	"context"
	"io"
	"log/slog"
	"os/exec"
)

// CommandBuilder creates the command used to invoke a test binary.
type CommandBuilder func(ctx context.Context, name string, arg ...string) *exec.Cmd

// Option configures an adapter.
type Option func(*options)

type options struct {
	command CommandBuilder
	tempDir string
	logger  *slog.Logger
}

// WithCommand replaces exec.CommandContext, mostly for tests.
func WithCommand(builder CommandBuilder) Option {
	return func(o *options) { o.command = builder }
}

// WithTempDir sets where per-run report files are created. The default is
// os.TempDir.
func WithTempDir(dir string) Option {
	return func(o *options) { o.tempDir = dir }
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func newOptions(opts []Option) options {
	o := options{
		command: exec.CommandContext,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
