package promadapters

import (
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
)

// DefaultDurationBuckets suit in-process and single-roundtrip database operations, in seconds.
var DefaultDurationBuckets = []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// MetricsCollector implements entitystore.MetricsCollector with Prometheus vectors.
//
// A vector is created and registered on first use of a metric name. Its label names are fixed by that
// first call: later calls fill missing labels with "" and drop unknown ones.
type MetricsCollector struct {
	registerer prometheus.Registerer
	buckets    []float64

	mu         sync.Mutex
	histograms map[string]*vec[*prometheus.HistogramVec]
	counters   map[string]*vec[*prometheus.CounterVec]
	gauges     map[string]*vec[*prometheus.GaugeVec]
	errs       []error
}

type vec[V any] struct {
	labelNames []string
	vector     V
}

// Option configures a MetricsCollector.
type Option func(*MetricsCollector)

// WithDurationBuckets replaces DefaultDurationBuckets.
func WithDurationBuckets(buckets []float64) Option {
	return func(m *MetricsCollector) {
		m.buckets = buckets
	}
}

// NewMetricsCollector creates a collector registering its vectors on registerer.
func NewMetricsCollector(registerer prometheus.Registerer, options ...Option) *MetricsCollector {
	m := &MetricsCollector{
		registerer: registerer,
		buckets:    DefaultDurationBuckets,
		histograms: make(map[string]*vec[*prometheus.HistogramVec]),
		counters:   make(map[string]*vec[*prometheus.CounterVec]),
		gauges:     make(map[string]*vec[*prometheus.GaugeVec]),
	}

	for _, option := range options {
		option(m)
	}

	return m
}

// RecordDuration observes the duration in seconds.
func (m *MetricsCollector) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h := lookup(m, m.histograms, metric, labels, func(names []string) *prometheus.HistogramVec {
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metric,
			Help:    "Duration of entity store operations in seconds.",
			Buckets: m.buckets,
		}, names)
	})
	if h == nil {
		return
	}

	h.vector.WithLabelValues(labelValues(h.labelNames, labels)...).Observe(duration.Seconds())
}

// IncrementCounter adds one to the counter.
func (m *MetricsCollector) IncrementCounter(metric string, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := lookup(m, m.counters, metric, labels, func(names []string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metric,
			Help: "Count of entity store events.",
		}, names)
	})
	if c == nil {
		return
	}

	c.vector.WithLabelValues(labelValues(c.labelNames, labels)...).Inc()
}

// RecordValue sets the gauge.
func (m *MetricsCollector) RecordValue(metric string, value float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := lookup(m, m.gauges, metric, labels, func(names []string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: metric,
			Help: "Current value of an entity store measure.",
		}, names)
	})
	if g == nil {
		return
	}

	g.vector.WithLabelValues(labelValues(g.labelNames, labels)...).Set(value)
}

// Err returns the registration errors seen so far, joined.
func (m *MetricsCollector) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return errors.Join(m.errs...)
}

// lookup returns the cached vector or builds and registers a new one. The lock must be held.
// A vector already registered by someone else is adopted; nil means registration failed.
func lookup[V prometheus.Collector](
	m *MetricsCollector,
	cache map[string]*vec[V],
	metric string,
	labels map[string]string,
	build func(labelNames []string) V,
) *vec[V] {

	if v, ok := cache[metric]; ok {
		return v
	}

	names := labelNamesOf(labels)
	v := &vec[V]{labelNames: names, vector: build(names)}

	if err := m.registerer.Register(v.vector); err != nil {
		var (
			already  prometheus.AlreadyRegisteredError
			existing V
			ok       bool
		)
		if errors.As(err, &already) {
			existing, ok = already.ExistingCollector.(V)
		}
		if !ok {
			m.errs = append(m.errs, err)
			return nil
		}
		v.vector = existing
	}

	cache[metric] = v

	return v
}

func labelNamesOf(labels map[string]string) []string {
	return slices.Sorted(maps.Keys(labels))
}

func labelValues(names []string, labels map[string]string) []string {
	values := make([]string, len(names))
	for i, name := range names {
		values[i] = labels[name]
	}

	return values
}

var _ entitystore.MetricsCollector = (*MetricsCollector)(nil)
