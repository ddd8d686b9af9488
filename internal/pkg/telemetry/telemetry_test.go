package telemetry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/keboola/sheets-writer/internal/pkg/telemetry"
	"github.com/keboola/sheets-writer/internal/pkg/utils/errors"
)

func TestTelemetry_Span(t *testing.T) {
	t.Parallel()
	tel := telemetry.NewForTest(t)

	_, span := tel.Tracer().Start(t.Context(), "my.span")
	span.SetAttributes(attribute.String("foo", "bar"))
	err := errors.New("some error")
	span.End(&err)

	spans := tel.Spans()
	require.Len(t, spans, 1)
	assert.Equal(t, "my.span", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "some error", spans[0].Status.Description)
}

func TestTelemetry_DisabledTracing(t *testing.T) {
	t.Parallel()
	tel := telemetry.NewForTest(t)

	_, span := tel.Tracer().Start(telemetry.ContextWithDisabledTracing(t.Context()), "my.span")
	span.End(nil)

	assert.Empty(t, tel.Spans())
}

func TestTelemetry_Meter(t *testing.T) {
	t.Parallel()
	tel := telemetry.NewForTest(t)

	counter := tel.Meter().Counter("my.counter", "Some counter.", "1")
	counter.Add(t.Context(), 2)
	counter.Add(t.Context(), 3)
	histogram := tel.Meter().Histogram("my.histogram", "Some histogram.", "ms")
	histogram.Record(t.Context(), 1.5)

	assert.Equal(t, int64(5), tel.Int64Sum(t, "my.counter"))
	assert.Equal(t, uint64(1), tel.HistogramCount(t, "my.histogram"))
}

func TestTelemetry_Nop(t *testing.T) {
	t.Parallel()
	tel := telemetry.NewNop()

	_, span := tel.Tracer().Start(t.Context(), "my.span")
	span.End(nil)
	tel.Meter().Counter("my.counter", "", "1").Add(t.Context(), 1)
}
