package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	sdkMetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// ForTest records spans and metrics in memory.
type ForTest interface {
	Telemetry
	Spans() tracetest.SpanStubs
	// Int64Sum returns the current value of the counter, summed over all attribute sets.
	Int64Sum(t *testing.T, name string) int64
	// HistogramCount returns the number of recorded values, over all attribute sets.
	HistogramCount(t *testing.T, name string) uint64
}

type forTest struct {
	Telemetry
	spans  *tracetest.SpanRecorder
	reader *sdkMetric.ManualReader
}

func NewForTest(t *testing.T) ForTest {
	t.Helper()
	spans := tracetest.NewSpanRecorder()
	reader := sdkMetric.NewManualReader()
	tp := tracesdk.NewTracerProvider(tracesdk.WithSpanProcessor(spans))
	mp := sdkMetric.NewMeterProvider(sdkMetric.WithReader(reader))
	return &forTest{Telemetry: New(tp, mp), spans: spans, reader: reader}
}

func (v *forTest) Spans() tracetest.SpanStubs {
	return tracetest.SpanStubsFromReadOnlySpans(v.spans.Ended())
}

func (v *forTest) Int64Sum(t *testing.T, name string) int64 {
	t.Helper()
	var total int64
	for _, m := range v.collect(t) {
		if m.Name != name {
			continue
		}
		if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
			for _, point := range sum.DataPoints {
				total += point.Value
			}
		}
	}
	return total
}

func (v *forTest) HistogramCount(t *testing.T, name string) uint64 {
	t.Helper()
	var total uint64
	for _, m := range v.collect(t) {
		if m.Name != name {
			continue
		}
		if hist, ok := m.Data.(metricdata.Histogram[float64]); ok {
			for _, point := range hist.DataPoints {
				total += point.Count
			}
		}
	}
	return total
}

func (v *forTest) collect(t *testing.T) (out []metricdata.Metrics) {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, v.reader.Collect(context.Background(), &rm))
	for _, scope := range rm.ScopeMetrics {
		out = append(out, scope.Metrics...)
	}
	return out
}
