package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"calc-pro/internal/calculator"
	"calc-pro/internal/handlers"
	"calc-pro/internal/observability"
)

// Deps are the domain services the router exposes.
type Deps struct {
	Sessions *calculator.Registry
	History  calculator.HistoryLister
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler())

	calculator.RegisterRoutes(r, calculator.NewHandler(deps.Sessions, deps.History))

	registerGauges(deps)

	return r
}

// registerGauges exposes live domain state on /metrics alongside the OTel
// instruments.
func registerGauges(deps Deps) {
	logger := observability.Logger
	if err := observability.RegisterGaugeFunc("calc_sessions_active", "Open calculator sessions.", func() float64 {
		return float64(deps.Sessions.Len())
	}); err != nil {
		logger.Warn("registering sessions gauge", zap.Error(err))
	}
	if err := observability.RegisterGaugeFunc("calc_history_entries", "Entries in the shared calculation history.", func() float64 {
		return float64(len(deps.History.List()))
	}); err != nil {
		logger.Warn("registering history gauge", zap.Error(err))
	}
}
