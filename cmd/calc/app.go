package main

import (
	"context"
	"fmt"

	"calc-pro/internal/assistant"
	"calc-pro/internal/config"
	"calc-pro/internal/history"
	"calc-pro/internal/observability"

	"go.uber.org/zap"
)

// app holds what the subcommands share. The history store is opened lazily
// so "ask" works without touching it.
type app struct {
	configPath string
	verbose    bool

	cfg        config.Config
	recorder   *history.Recorder
	closeStore func() error
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if a.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		observability.Logger = l
	}

	if err := history.InitMetrics(); err != nil {
		return err
	}
	return assistant.InitMetrics()
}

func (a *app) openHistory(ctx context.Context) (*history.Recorder, error) {
	if a.recorder != nil {
		return a.recorder, nil
	}

	store, closeStore, err := history.OpenStore(a.cfg)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	a.closeStore = closeStore
	a.recorder = history.NewRecorder(ctx, store)
	return a.recorder, nil
}

func (a *app) close() error {
	observability.SyncLogger()
	if a.closeStore == nil {
		return nil
	}
	err := a.closeStore()
	a.closeStore = nil
	a.recorder = nil
	return err
}
