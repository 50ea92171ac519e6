// Package driver binds executables to framework adapters and turns each
// listed test id into a runnable item.
package driver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"ctp/internal/adapter"
	"ctp/internal/discovery"
	"ctp/internal/domain"
)

// DefaultMasks are the file name patterns collected when none are configured.
var DefaultMasks = []string{"test_*", "*_test"}

// File is an executable claimed by exactly one adapter.
type File struct {
	Path    string
	Adapter adapter.Adapter
	Items   []*Item
}

// Item is one test id inside a collected file.
type Item struct {
	File *File
	ID   string
}

// Test returns the identity of the item.
func (i *Item) Test() domain.Test {
	return domain.Test{
		Executable: i.File.Path,
		Adapter:    i.File.Adapter.Name(),
		ID:         i.ID,
	}
}

// Run executes the item through its adapter. Errors raised by the adapter
// become error outcomes so a single broken binary never aborts the run.
func (i *Item) Run(ctx context.Context) domain.Outcome {
	outcome, err := i.File.Adapter.RunTest(ctx, i.File.Path, i.ID)
	if err != nil {
		return domain.InternalErrorf(domain.UnknownFile,
			"Internal Error: calling %s for test %s failed: %v", i.File.Path, i.ID, err)
	}
	return outcome
}

// Result runs the item and records how long it took.
func (i *Item) Result(ctx context.Context) domain.TestResult {
	start := time.Now()
	outcome := i.Run(ctx)
	return domain.TestResult{
		Test:     i.Test(),
		Outcome:  outcome,
		Duration: time.Since(start),
	}
}

// Collector decides which executables are test binaries and lists them.
type Collector struct {
	Registry *adapter.Registry
	Masks    []string
	Logger   *slog.Logger
}

// NewCollector creates a collector over registry. Empty masks mean
// DefaultMasks.
func NewCollector(registry *adapter.Registry, masks []string) *Collector {
	if len(masks) == 0 {
		masks = DefaultMasks
	}
	return &Collector{
		Registry: registry,
		Masks:    masks,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Matches reports whether the base name of path matches one of the masks.
func (c *Collector) Matches(path string) bool {
	return discovery.MatchMask(path, c.Masks)
}

// Collect binds path to the first adapter recognizing it and lists its test
// ids. It returns false, without starting any process, for names outside
// the masks, and false for executables no adapter recognizes.
func (c *Collector) Collect(ctx context.Context, path string) (*File, bool, error) {
	if !c.Matches(path) {
		return nil, false, nil
	}
	a := c.Registry.Detect(ctx, path)
	if a == nil {
		c.Logger.Debug("no adapter recognized executable", "path", path)
		return nil, false, nil
	}

	ids, err := a.ListTests(ctx, path)
	if err != nil {
		return nil, true, fmt.Errorf("collect %s: %w", path, err)
	}

	file := &File{Path: path, Adapter: a}
	file.Items = make([]*Item, len(ids))
	for n, id := range ids {
		file.Items[n] = &Item{File: file, ID: id}
	}
	c.Logger.Debug("collected executable", "path", path, "adapter", a.Name(), "tests", len(ids))
	return file, true, nil
}

// CollectError is a file that was recognized but could not be listed.
type CollectError struct {
	Path string
	Err  error
}

func (e CollectError) Error() string {
	return e.Err.Error()
}

func (e CollectError) Unwrap() error {
	return e.Err
}

// CollectAll collects every path in order. Listing errors do not stop the
// walk; they are returned alongside the files that could be collected.
func (c *Collector) CollectAll(ctx context.Context, paths []string) ([]*File, []CollectError) {
	var (
		files []*File
		errs  []CollectError
	)
	for _, path := range paths {
		if ctx.Err() != nil {
			errs = append(errs, CollectError{Path: path, Err: ctx.Err()})
			break
		}
		file, ok, err := c.Collect(ctx, path)
		switch {
		case err != nil:
			errs = append(errs, CollectError{Path: path, Err: err})
		case ok:
			files = append(files, file)
		}
	}
	return files, errs
}

// Items flattens the items of files, keeping their order.
func Items(files []*File) []*Item {
	var items []*Item
	for _, f := range files {
		items = append(items, f.Items...)
	}
	return items
}
