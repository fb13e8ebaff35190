package oteladapters_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/simbank/cashier-simulation/bank/oteladapters"
)

func newCollector() (*oteladapters.MetricsCollector, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	return oteladapters.NewMetricsCollector(provider.Meter("bank-test")), reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	return rm
}

func findMetric(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Metrics {
	t.Helper()

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m
			}
		}
	}

	require.Failf(t, "metric not found", "metric %q was not collected", name)

	return metricdata.Metrics{}
}

func Test_MetricsCollector_RecordDuration(t *testing.T) {
	collector, reader := newCollector()

	collector.RecordDuration("bank_cashier_wait_duration_seconds", 150*time.Millisecond, nil)

	m := findMetric(t, collect(t, reader), "bank_cashier_wait_duration_seconds")
	histogram, ok := m.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, histogram.DataPoints, 1)

	assert.Equal(t, uint64(1), histogram.DataPoints[0].Count)
	assert.InDelta(t, 0.15, histogram.DataPoints[0].Sum, 0.001)
	assert.Equal(t, "s", m.Unit)
}

func Test_MetricsCollector_IncrementCounter(t *testing.T) {
	collector, reader := newCollector()
	labels := map[string]string{"operation": "withdraw", "outcome": "committed"}

	collector.IncrementCounter("bank_client_operations_total", labels)
	collector.IncrementCounterContext(context.Background(), "bank_client_operations_total", labels)

	m := findMetric(t, collect(t, reader), "bank_client_operations_total")
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)

	assert.Equal(t, int64(2), sum.DataPoints[0].Value)

	expected := attribute.NewSet(
		attribute.String("operation", "withdraw"),
		attribute.String("outcome", "committed"),
	)
	assert.True(t, sum.DataPoints[0].Attributes.Equals(&expected))
}

func Test_MetricsCollector_RecordValue_KeepsLastValue(t *testing.T) {
	collector, reader := newCollector()

	collector.RecordValue("bank_invariant_cash_difference", 0, nil)
	collector.RecordValueContext(context.Background(), "bank_invariant_cash_difference", -40, nil)

	m := findMetric(t, collect(t, reader), "bank_invariant_cash_difference")
	gauge, ok := m.Data.(metricdata.Gauge[float64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)

	assert.InDelta(t, -40.0, gauge.DataPoints[0].Value, 0.0001)
}

func Test_MetricsCollector_ConcurrentUse(t *testing.T) {
	collector, reader := newCollector()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				collector.IncrementCounter("bank_commit_retries_total", nil)
			}
		}()
	}
	wg.Wait()

	m := findMetric(t, collect(t, reader), "bank_commit_retries_total")
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)

	assert.Equal(t, int64(1000), sum.DataPoints[0].Value)
}
