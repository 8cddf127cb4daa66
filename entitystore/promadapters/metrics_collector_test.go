package promadapters_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/entitystore/memengine"
	"github.com/AntonStoeckl/entitystore-go/entitystore/promadapters"
)

func Test_MetricsCollector_IncrementCounter_When_CalledTwice_Then_CounterIsTwo(t *testing.T) {
	// setup
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)
	labels := map[string]string{entitystore.LabelStatus: entitystore.StatusCommitted}

	// act
	collector.IncrementCounter(entitystore.MetricTransactions, labels)
	collector.IncrementCounter(entitystore.MetricTransactions, labels)

	// assert
	expected := `
# HELP entitystore_transactions_total Count of entity store events.
# TYPE entitystore_transactions_total counter
entitystore_transactions_total{status="committed"} 2
`
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), entitystore.MetricTransactions))
	require.NoError(t, collector.Err())
}

func Test_MetricsCollector_When_LabelSetsDiffer_Then_FirstLabelNamesAreKept(t *testing.T) {
	// setup
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)

	// act
	collector.IncrementCounter(entitystore.MetricNotFound, map[string]string{entitystore.LabelEntityType: "book"})
	collector.IncrementCounter(entitystore.MetricNotFound, map[string]string{entitystore.LabelOperation: "update"})

	// assert
	expected := `
# HELP entitystore_not_found_total Count of entity store events.
# TYPE entitystore_not_found_total counter
entitystore_not_found_total{entity_type=""} 1
entitystore_not_found_total{entity_type="book"} 1
`
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), entitystore.MetricNotFound))
}

func Test_MetricsCollector_RecordValue_When_Set_Then_GaugeHoldsLastValue(t *testing.T) {
	// setup
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)

	// act
	collector.RecordValue(entitystore.MetricPendingChanges, 4, nil)
	collector.RecordValue(entitystore.MetricPendingChanges, 1, nil)

	// assert
	expected := `
# HELP entitystore_pending_changes Current value of an entity store measure.
# TYPE entitystore_pending_changes gauge
entitystore_pending_changes 1
`
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), entitystore.MetricPendingChanges))
}

func Test_MetricsCollector_RecordDuration_When_Observed_Then_HistogramCountsIt(t *testing.T) {
	// setup
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry, promadapters.WithDurationBuckets([]float64{0.1, 1}))

	// act
	collector.RecordDuration(entitystore.MetricQueryDuration, 50*time.Millisecond, map[string]string{entitystore.LabelEngine: "memory"})
	collector.RecordDuration(entitystore.MetricQueryDuration, 2*time.Second, map[string]string{entitystore.LabelEngine: "memory"})

	// assert
	expected := `
# HELP entitystore_query_duration_seconds Duration of entity store operations in seconds.
# TYPE entitystore_query_duration_seconds histogram
entitystore_query_duration_seconds_bucket{engine="memory",le="0.1"} 1
entitystore_query_duration_seconds_bucket{engine="memory",le="1"} 1
entitystore_query_duration_seconds_bucket{engine="memory",le="+Inf"} 2
entitystore_query_duration_seconds_sum{engine="memory"} 2.05
entitystore_query_duration_seconds_count{engine="memory"} 2
`
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), entitystore.MetricQueryDuration))
}

func Test_MetricsCollector_When_TwoCollectorsShareARegistry_Then_VectorIsAdopted(t *testing.T) {
	// setup
	registry := prometheus.NewRegistry()
	first := promadapters.NewMetricsCollector(registry)
	second := promadapters.NewMetricsCollector(registry)
	labels := map[string]string{entitystore.LabelStatus: entitystore.StatusRolledBack}

	// act
	first.IncrementCounter(entitystore.MetricTransactions, labels)
	second.IncrementCounter(entitystore.MetricTransactions, labels)

	// assert
	require.NoError(t, first.Err())
	require.NoError(t, second.Err())

	families, err := registry.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.InDelta(t, 2.0, families[0].GetMetric()[0].GetCounter().GetValue(), 0.0001)
}

func Test_MetricsCollector_When_NameClashesWithAnotherType_Then_ErrIsReported(t *testing.T) {
	// setup
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)

	// arrange
	collector.RecordValue("entitystore_clash", 1, nil)

	// act
	collector.IncrementCounter("entitystore_clash", nil)

	// assert
	assert.Error(t, collector.Err())
}

func Test_MetricsCollector_When_UsedByEngine_Then_QueriesAreMeasured(t *testing.T) {
	// setup
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)
	engine, err := memengine.NewEngine(memengine.WithMetrics(collector))
	require.NoError(t, err)

	// act
	_, err = engine.Load(context.Background(), entitystore.Criteria{EntityType: "book"})

	// assert
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(registry, entitystore.MetricQueryDuration)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
