package committer

import (
	"go.opentelemetry.io/otel/metric"

	"github.com/keboola/sheets-writer/internal/pkg/telemetry"
)

type metrics struct {
	inserted metric.Int64Counter
	failed   metric.Int64Counter
	duration metric.Float64Histogram
}

func newMetrics(meter telemetry.Meter) *metrics {
	return &metrics{
		inserted: meter.Counter("sheets.rows.inserted", "Rows appended to the worksheet.", "row"),
		failed:   meter.Counter("sheets.rows.failed", "Rows which could not be appended.", "row"),
		duration: meter.Histogram("sheets.append.duration", "Duration of one append call.", "ms"),
	}
}
