package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"BandWatch/internal/api"
	"BandWatch/internal/app"
	"BandWatch/internal/config"
	"BandWatch/internal/notifier"
	"BandWatch/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] BandWatch starting...")

	// Load config
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
	mode, _ := cfg.Mode()
	fill, _ := cfg.Fill()

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("[FATAL] init: %v", err)
	}
	defer a.Close()

	// Telegram when configured, log otherwise
	var n notifier.Notifier = notifier.LogNotifier{}
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	} else {
		log.Println("[WARN] telegram not configured, reports go to the log")
	}

	sched := scheduler.NewScheduler(ctx, a.Analyzer, n, scheduler.Options{
		Watchlist:    cfg.Watchlist,
		LookbackDays: cfg.Bands.LookbackDays,
		Mode:         mode,
		Fill:         fill,
		DailyCron:    cfg.Schedule.DailyCron,
	})
	if err := sched.RegisterAll(); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	handler := api.NewHandler(a.Analyzer, a.Recorder, api.Defaults{
		Mode:         mode,
		Fill:         fill,
		LookbackDays: cfg.Bands.LookbackDays,
	})
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.SetupRoutes(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("[INFO] HTTP API listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[ERROR] http server: %v", err)
		}
	}()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing daily report now")
		go sched.RunDailyNow()
	}

	log.Println("[INFO] BandWatch is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] http shutdown: %v", err)
	}
	log.Println("[INFO] BandWatch stopped")
}
