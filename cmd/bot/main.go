package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"BrickWatch/internal/broker"
	"BrickWatch/internal/collector"
	"BrickWatch/internal/config"
	"BrickWatch/internal/notifier"
	"BrickWatch/internal/recorder"
	"BrickWatch/internal/scheduler"
	"BrickWatch/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] BrickWatch starting...")

	// Load .env before config so env overrides apply
	if err := godotenv.Load(); err == nil {
		log.Println("[INFO] loaded .env file")
	}

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init brokerage client
	fetcher := collector.NewAlpacaFetcher(cfg.Alpaca.APIKey, cfg.Alpaca.Secret, cfg.Alpaca.BaseURL, cfg.Proxy)
	log.Printf("[INFO] data source: %s", fetcher.Name())

	// Init snapshot cache
	cache, err := store.New(cfg.CacheDir)
	if err != nil {
		log.Fatalf("[FATAL] init snapshot cache: %v", err)
	}

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	trackerCfg := broker.Config{
		Interval:  cfg.Tracker.Interval,
		Capacity:  cfg.Tracker.Capacity,
		Window:    cfg.Tracker.Window,
		Evaluator: cfg.Tracker.Evaluator,
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, cancel, fetcher, fetcher, tn, rec, cache,
		trackerCfg, cfg.ChartsDir, cfg.Trading.EnableOrders)
	if err := sched.RegisterAll(cfg.Schedule.ScanCron, cfg.Schedule.ClockCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, scanning positions now")
		go sched.RunScanNow()
	}

	log.Println("[INFO] BrickWatch is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal or bye command
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Println("[INFO] shutdown signal received, stopping...")
	case <-ctx.Done():
		log.Println("[INFO] stopping on internal request...")
	}
	cancel()
	log.Println("[INFO] BrickWatch stopped")
}
