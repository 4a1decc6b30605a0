package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/shopspring/decimal"

	"StockOS/internal/config"
	"StockOS/internal/portfolio"
	"StockOS/internal/quote"
	"StockOS/internal/recorder"
	"StockOS/internal/scheduler"
)

var configPath = flag.String("config", "", "Path to the YAML config file (default $CONFIG_PATH or configs/config.yaml)")

// app holds the wired components shared by every subcommand.
type app struct {
	cfg   *config.Config
	store *portfolio.Store
	rec   recorder.Recorder
	sched *scheduler.Scheduler
}

// loadConfig reads and validates the config named by -config,
// $CONFIG_PATH or the default path.
func loadConfig() (*config.Config, error) {
	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			cfgPath = v
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// openApp wires the store, recorder, syncer and scheduler. sender may be
// nil, in which case notifications are only logged.
func openApp(ctx context.Context, cfg *config.Config, sender scheduler.Sender) (*app, error) {
	store, err := portfolio.NewStore(cfg.Portfolio.StateFile, decimal.NewFromFloat(cfg.Portfolio.InitialCash))
	if err != nil {
		return nil, err
	}

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	fetcher := quote.NewTencentFetcher(cfg.Quote.BaseURL, cfg.Proxy, cfg.Quote.Timeout)
	log.Printf("[INFO] quote source: %s", fetcher.Name())
	syncer := quote.NewSyncer(fetcher, store)

	return &app{
		cfg:   cfg,
		store: store,
		rec:   rec,
		sched: scheduler.NewScheduler(ctx, store, syncer, sender, rec),
	}, nil
}

func (a *app) Close() {
	if err := a.rec.Close(); err != nil {
		log.Printf("[ERROR] close recorder: %v", err)
	}
}
