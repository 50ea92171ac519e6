package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
)

type envKey struct{}

// WithEnv returns a context whose processes get the extra environment
// variables, given as "KEY=value".
func WithEnv(ctx context.Context, env ...string) context.Context {
	prev, _ := ctx.Value(envKey{}).([]string)
	merged := make([]string, 0, len(prev)+len(env))
	merged = append(merged, prev...)
	merged = append(merged, env...)
	return context.WithValue(ctx, envKey{}, merged)
}

func envFrom(ctx context.Context) []string {
	env, _ := ctx.Value(envKey{}).([]string)
	return env
}

// output is what one finished process produced.
type output struct {
	stdout   []byte
	stderr   []byte
	combined []byte
	exitCode int
}

// ExitError reports a test binary that exited with an unexpected status.
type ExitError struct {
	Path     string
	Args     []string
	ExitCode int
	Output   string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s %s exited with status %d:\n%s", e.Path, strings.Join(e.Args, " "), e.ExitCode, e.Output)
}

// run starts path with args and waits for it. A non-zero exit status is
// reported through exitCode, not as an error; the error is set only when the
// process could not run at all.
func (o options) run(ctx context.Context, path string, args ...string) (*output, error) {
	cmd := o.command(ctx, path, args...)
	if env := envFrom(ctx); len(env) > 0 {
		base := cmd.Env
		if base == nil {
			base = os.Environ()
		}
		cmd.Env = append(base, env...)
	}

	s := &streams{}
	cmd.Stdout = streamWriter{s: s, own: &s.stdout}
	cmd.Stderr = streamWriter{s: s, own: &s.stderr}

	o.logger.Debug("invoking test binary", "path", path, "args", args)
	err := cmd.Run()

	out := &output{
		stdout:   s.stdout.Bytes(),
		stderr:   s.stderr.Bytes(),
		combined: s.combined.Bytes(),
	}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		out.exitCode = exitErr.ExitCode()
	default:
		return nil, fmt.Errorf("run %s: %w", path, err)
	}
	o.logger.Debug("test binary finished", "path", path, "exit_code", out.exitCode)
	return out, nil
}

// streams captures stdout and stderr separately and interleaved. exec.Cmd
// copies each stream from its own goroutine.
type streams struct {
	mu       sync.Mutex
	stdout   bytes.Buffer
	stderr   bytes.Buffer
	combined bytes.Buffer
}

type streamWriter struct {
	s   *streams
	own *bytes.Buffer
}

func (w streamWriter) Write(p []byte) (int, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	w.own.Write(p)
	return w.s.combined.Write(p)
}
