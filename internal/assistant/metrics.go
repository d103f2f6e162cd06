package assistant

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	inquiryCounter    metric.Int64Counter
	inquiryDuration   metric.Float64Histogram
	supersededCounter metric.Int64Counter
)

// InitMetrics registers the assistant instruments. Call once at startup.
func InitMetrics() error {
	meter := otel.Meter("assistant")

	var err error

	inquiryCounter, err = meter.Int64Counter("assistant.inquiries.total",
		metric.WithDescription("AI inquiries by outcome"),
		metric.WithUnit("{inquiry}"),
	)
	if err != nil {
		return fmt.Errorf("creating inquiry counter: %w", err)
	}

	inquiryDuration, err = meter.Float64Histogram("assistant.inquiry.duration",
		metric.WithDescription("Round-trip time of AI inquiries in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(100, 250, 500, 1000, 2500, 5000, 10000, 30000),
	)
	if err != nil {
		return fmt.Errorf("creating inquiry histogram: %w", err)
	}

	supersededCounter, err = meter.Int64Counter("assistant.superseded.total",
		metric.WithDescription("Inquiries cancelled because a newer one was issued"),
		metric.WithUnit("{inquiry}"),
	)
	if err != nil {
		return fmt.Errorf("creating superseded counter: %w", err)
	}

	return nil
}
