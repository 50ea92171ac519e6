// Package metrics counts test outcomes in Prometheus form. Runs are short
// lived, so the numbers are exported as a node_exporter textfile instead of
// being served.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"ctp/internal/domain"
)

const (
	MetricsNamespace = "ctp"
)

// Metrics holds the collectors of one run.
type Metrics struct {
	registry *prometheus.Registry

	testsTotal       *prometheus.CounterVec
	testDuration     *prometheus.HistogramVec
	executablesTotal prometheus.Gauge
	runDuration      prometheus.Gauge
	lastRun          prometheus.Gauge
}

// New creates the collectors on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		testsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "tests_total",
			Help:      "Count of executed tests by framework and status",
		}, []string{
			"adapter",
			"status",
		}),
		testDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Name:      "test_duration_seconds",
			Help:      "Wall time of single test invocations",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{
			"adapter",
		}),
		executablesTotal: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "executables",
			Help:      "Number of test executables in the last run",
		}),
		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run",
		}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}
}

// RecordTest counts one finished test.
func (m *Metrics) RecordTest(r domain.TestResult) {
	m.testsTotal.WithLabelValues(r.Test.Adapter, string(r.Outcome.Status)).Inc()
	m.testDuration.WithLabelValues(r.Test.Adapter).Observe(r.Duration.Seconds())
}

// RecordResults counts every result of a run.
func (m *Metrics) RecordResults(results []domain.TestResult) {
	for _, r := range results {
		m.RecordTest(r)
	}
}

// RecordRun sets the run-level gauges from the stored summary.
func (m *Metrics) RecordRun(meta domain.TestResultsMeta, finished float64) {
	m.executablesTotal.Set(float64(meta.TotalExecutables))
	m.runDuration.Set(meta.DurationSeconds)
	m.lastRun.Set(finished)
}

// Gatherer exposes the registry, mostly for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes all metrics to path in the text exposition format.
// The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
