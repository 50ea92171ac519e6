package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"ctp/internal/adapter"
	"ctp/internal/config"
	"ctp/internal/discovery"
	"ctp/internal/domain"
	"ctp/internal/driver"
	"ctp/internal/storage"
	"ctp/internal/ui"
)

// components are the parts shared by the commands, built once the config
// is final.
type components struct {
	config    *config.Config
	logger    *slog.Logger
	registry  *adapter.Registry
	scanner   *discovery.Scanner
	filter    *discovery.Filter
	collector *driver.Collector
	formatter *ui.Formatter
}

func newComponents(cfg *config.Config, logger *slog.Logger) *components {
	registry := adapter.DefaultRegistry(adapter.WithLogger(logger))
	collector := driver.NewCollector(registry, cfg.Masks)
	collector.Logger = logger

	return &components{
		config:    cfg,
		logger:    logger,
		registry:  registry,
		scanner:   discovery.NewScanner(cfg.PathsToIgnore, cfg.Masks),
		filter:    discovery.NewFilter(),
		collector: collector,
		formatter: ui.NewFormatter(cfg),
	}
}

// collect finds the executables named by args (or under the test path when
// there are none), binds them to adapters and applies the id filter.
func (c *components) collect(ctx context.Context, args []string) ([]*driver.File, error) {
	paths := args
	if len(paths) == 0 {
		paths = []string{c.config.GetTestPath()}
	}
	candidates, err := c.scanner.Resolve(paths)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("candidate executables", "count", len(candidates))

	files, errs := c.collector.CollectAll(ctx, candidates)
	c.formatter.PrintCollectErrors(errs)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pattern := c.config.Flags.Filter
	if pattern == "" {
		return files, nil
	}
	return c.filterByName(files, pattern), nil
}

// filterByName keeps the items whose id matches pattern.
func (c *components) filterByName(files []*driver.File, pattern string) []*driver.File {
	keep := make(map[*driver.Item]bool)
	for _, f := range files {
		ids := make([]string, len(f.Items))
		for i, item := range f.Items {
			ids[i] = item.ID
		}
		matched := make(map[string]bool)
		for _, id := range c.filter.FilterByName(ids, pattern) {
			matched[id] = true
		}
		for _, item := range f.Items {
			if matched[item.ID] {
				keep[item] = true
			}
		}
	}
	return selectItems(files, func(item *driver.Item) bool {
		return keep[item]
	})
}

// selectItems keeps the items accepted by keep; files left empty are
// dropped. The collected files are not modified.
func selectItems(files []*driver.File, keep func(*driver.Item) bool) []*driver.File {
	var out []*driver.File
	for _, f := range files {
		selected := &driver.File{Path: f.Path, Adapter: f.Adapter}
		for _, item := range f.Items {
			if keep(item) {
				selected.Items = append(selected.Items, &driver.Item{File: selected, ID: item.ID})
			}
		}
		if len(selected.Items) > 0 {
			out = append(out, selected)
		}
	}
	return out
}

// inKeys keeps items whose key is in keys.
func inKeys(keys map[string]struct{}) func(*driver.Item) bool {
	return func(item *driver.Item) bool {
		_, ok := keys[item.Test().Key()]
		return ok
	}
}

// rerunFunc runs a stored failure again with the adapter that produced it.
func (c *components) rerunFunc() ui.RerunFunc {
	return func(ctx context.Context, failure domain.TestFailure) (domain.Outcome, error) {
		a := c.registry.Lookup(failure.Adapter)
		if a == nil {
			return domain.Outcome{}, fmt.Errorf("unknown adapter %q for %s", failure.Adapter, failure.Executable)
		}
		file := &driver.File{Path: failure.Executable, Adapter: a}
		item := &driver.Item{File: file, ID: failure.TestID}
		return item.Run(ctx), nil
	}
}

// closeStorage releases database handles held by st.
func closeStorage(st storage.Storage) {
	if c, ok := st.(io.Closer); ok {
		c.Close()
	}
}
