package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"BoursePulse/internal/analyst"
	"BoursePulse/internal/bulletin"
	"BoursePulse/internal/config"
	"BoursePulse/internal/indicator"
	"BoursePulse/internal/logger"
	"BoursePulse/internal/pipeline"
	"BoursePulse/internal/quota"
	"BoursePulse/internal/scheduler"
	"BoursePulse/internal/store"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log := logger.Init().WithField("component", "main")
	log.Info("BoursePulse starting")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("config validation")
	}

	// Open store
	st, err := store.Open(cfg.Database.SQLitePath)
	if err != nil {
		log.WithError(err).Fatal("open store")
	}
	defer st.Close()

	// Exchange fetcher
	fetcher := bulletin.NewBRVMFetcher(cfg.Exchange.BaseURL, cfg.Exchange.RequestsPerSecond)
	log.WithField("source", fetcher.Name()).Info("exchange source ready")

	// Indicator engine
	engine := indicator.NewEngine(cfg.IndicatorConfig())

	// AI analyst: skipped entirely when no API keys are configured.
	var ai pipeline.Analyzer
	keys, err := config.LoadKeys()
	if err != nil {
		log.WithError(err).Warn("no API keys, fundamental analysis disabled")
	} else {
		ledger := quota.NewLedger(cfg.Gemini.DailyLimit, cfg.Gemini.MinuteLimit)
		backend := analyst.NewGeminiSummarizer(cfg.Gemini.Model)
		ai = analyst.New(keys, ledger, backend, analyst.Options{
			MaxRetries:        cfg.Gemini.MaxRetries,
			RequestsPerMinute: cfg.Gemini.RequestsPerMinute,
		})
		log.WithField("keys", len(keys)).Info("analyst ready")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := pipeline.New(cfg, st, fetcher, engine, ai)

	sched := scheduler.New(ctx, p)
	if err := sched.Register(cfg.Schedule.DailyCron); err != nil {
		log.WithError(err).Fatal("register cron task")
	}
	sched.Start()
	defer sched.Stop()

	if cfg.Schedule.RunOnStart {
		log.Info("RUN_ON_START enabled, executing batch now")
		go sched.RunNow()
	}

	log.Info("BoursePulse is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, stopping")
	cancel()
	log.Info("BoursePulse stopped")
}
