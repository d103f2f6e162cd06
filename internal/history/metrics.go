package history

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	entriesGauge    metric.Int64Gauge
	mutationCounter metric.Int64Counter
)

// InitMetrics registers the history instruments. Call once at startup,
// before the first Recorder is built.
func InitMetrics() error {
	meter := otel.Meter("history")

	var err error

	entriesGauge, err = meter.Int64Gauge("history.entries",
		metric.WithDescription("Number of calculations currently kept in history"),
		metric.WithUnit("{calculation}"),
	)
	if err != nil {
		return fmt.Errorf("creating entries gauge: %w", err)
	}

	mutationCounter, err = meter.Int64Counter("history.mutations.total",
		metric.WithDescription("History writes by operation"),
		metric.WithUnit("{mutation}"),
	)
	if err != nil {
		return fmt.Errorf("creating mutation counter: %w", err)
	}

	return nil
}
