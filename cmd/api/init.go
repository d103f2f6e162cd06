package main

import (
	"context"

	"calc-pro/internal/assistant"
	"calc-pro/internal/calculator"
	"calc-pro/internal/history"
	"calc-pro/internal/observability"
)

// initMetrics initialises the OTLP metric provider when telemetry is enabled
// and then every domain's instruments. With telemetry off the instruments
// bind to the global no-op meter.
func initMetrics(ctx context.Context, exportEnabled bool) (func(context.Context) error, error) {
	shutdown := func(context.Context) error { return nil }

	if exportEnabled {
		var err error
		shutdown, err = observability.InitMetrics(ctx)
		if err != nil {
			return nil, err
		}
	}

	for _, initDomain := range []func() error{
		calculator.InitMetrics,
		history.InitMetrics,
		assistant.InitMetrics,
	} {
		if err := initDomain(); err != nil {
			return nil, err
		}
	}

	return shutdown, nil
}
