package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace for all metrics
const namespace = "wpilog"

// Collector provides a central place for decoder metrics. Collectors
// register against their own registry so importing the library never
// pollutes the process-global default registry.
type Collector struct {
	registry *prometheus.Registry

	LoadsTotal     prometheus.Counter
	LoadFailures   *prometheus.CounterVec
	RecordsDecoded prometheus.Counter
	SamplesIndexed prometheus.Counter
	WarningsTotal  *prometheus.CounterVec
	LoadDuration   prometheus.Histogram
	LoadBytes      prometheus.Histogram
}

// NewCollector creates a collector with a fresh registry
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		LoadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "Total number of log loads attempted",
		}),
		LoadFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_failures_total",
			Help:      "Loads that ended with a fatal error, by reason",
		}, []string{"reason"}),
		RecordsDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_decoded_total",
			Help:      "Raw records decoded from log streams",
		}),
		SamplesIndexed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_indexed_total",
			Help:      "Typed samples appended to the time-series store",
		}),
		WarningsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warnings_total",
			Help:      "Non-fatal decode diagnostics, by kind",
		}, []string{"kind"}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Wall time of a full log load",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		LoadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_bytes",
			Help:      "Size of loaded log buffers",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 12),
		}),
	}

	registry.MustRegister(
		c.LoadsTotal,
		c.LoadFailures,
		c.RecordsDecoded,
		c.SamplesIndexed,
		c.WarningsTotal,
		c.LoadDuration,
		c.LoadBytes,
	)
	return c
}

// Registry returns the registry holding this collector's metrics
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

var (
	defaultOnce sync.Once
	defaultC    *Collector
)

// Default returns the process-wide collector the loader records into
func Default() *Collector {
	defaultOnce.Do(func() {
		defaultC = NewCollector()
	})
	return defaultC
}
