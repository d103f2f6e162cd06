package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calc-pro/internal/assistant"
	"calc-pro/internal/calculator"
	"calc-pro/internal/config"
	"calc-pro/internal/history"
	"calc-pro/internal/observability"
	"calc-pro/internal/server"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	ctx := context.Background()

	if err := config.LoadDotEnv(); err != nil {
		panic(err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	// Logger
	err = observability.InitLogger()
	if err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	if cfg.Telemetry.Enabled {
		// Tracing
		traceShutdown, err := observability.InitTracing(ctx)
		if err != nil {
			panic(err)
		}
		defer traceShutdown(ctx)

		if cfg.Telemetry.ExportLogs {
			logShutdown, err := observability.InitLogging(ctx)
			if err != nil {
				panic(err)
			}
			defer logShutdown(ctx)
		}
	}

	// Metrics
	metricShutdown, err := initMetrics(ctx, cfg.Telemetry.Enabled)
	if err != nil {
		panic(err)
	}
	defer metricShutdown(ctx)

	logger := observability.Logger

	// History
	store, closeStore, err := history.OpenStore(cfg)
	if err != nil {
		logger.Fatal("opening history store", zap.Error(err))
	}
	defer closeStore()
	recorder := history.NewRecorder(ctx, store)

	// Assistant
	ai, err := assistant.New(cfg.AI)
	if err != nil {
		logger.Fatal("configuring assistant", zap.Error(err))
	}
	if !ai.Ready() {
		logger.Warn("no API key configured, AI inquiries will be rejected",
			zap.String("provider", cfg.AI.Provider),
		)
	}

	// Router
	router := server.NewRouter(server.Deps{
		Sessions: calculator.NewRegistry(recorder, ai),
		History:  recorder,
	})

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Info("server started",
			zap.String("addr", cfg.Server.Addr),
			zap.String("history_backend", cfg.History.Backend),
			zap.Int("history_entries", recorder.Len()),
			zap.String("ai_provider", cfg.AI.Provider),
			zap.String("ai_model", cfg.AI.ModelOrDefault()),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	waitForShutdown(srv, time.Duration(cfg.ShutdownTimeout())*time.Second)
}

func waitForShutdown(srv *http.Server, timeout time.Duration) {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		observability.Logger.Warn("graceful shutdown incomplete", zap.Error(err))
	}
}
