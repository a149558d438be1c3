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

	"GridironMarket/internal/cache"
	"GridironMarket/internal/calculator"
	"GridironMarket/internal/collector"
	"GridironMarket/internal/config"
	"GridironMarket/internal/httpapi"
	"GridironMarket/internal/notifier"
	"GridironMarket/internal/portfolio"
	"GridironMarket/internal/recorder"
	"GridironMarket/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] GridironMarket starting...")

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

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init fetcher
	var fetcher collector.Fetcher
	if cfg.API.Source == "api" {
		fetcher = collector.NewAPIFetcher(cfg.API.BaseURL, cfg.API.Token, cfg.API.HistoryPath, cfg.Proxy)
	} else {
		mock := collector.NewMockFetcher(cfg.API.MockSeed)
		mock.Backfill(24*60, time.Minute)
		fetcher = mock
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	// Init query cache
	var store cache.Store = cache.NewMemoryStore()
	if cfg.Cache.RedisAddr != "" {
		rs, err := cache.NewRedisStore(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, cfg.Cache.KeyPrefix)
		if err != nil {
			log.Printf("[WARN] init redis cache failed, using memory: %v", err)
		} else {
			store = rs
		}
	}
	qc := cache.NewQueryCache(store)
	defer qc.Close()

	col := collector.NewCollector(fetcher, qc, cfg.Cache.HistoryStaleTime)

	// Init portfolio ledger
	var ledger *portfolio.Manager
	if cfg.Portfolio.Source == "ledger" {
		ledger, err = portfolio.NewManager(cfg.Portfolio.LedgerFile, cfg.Portfolio.InitialDeposit)
		if err != nil {
			log.Fatalf("[FATAL] init portfolio ledger: %v", err)
		}
	}

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

	// Init notifier
	var tn *notifier.TelegramNotifier
	var n notifier.Notifier = notifier.NewConsoleNotifier(os.Stdout)
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = notifier.Retrying{Notifier: tn, MaxRetries: 3}
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, col, ledger, n, rec)
	sched.DomainOptions = cfg.DomainOptions()
	defaultRange, _ := calculator.ParseRange(cfg.Market.DefaultRange)
	sched.Focus(cfg.Market.DefaultTeam, defaultRange)
	if err := sched.RegisterAll(cfg.Polling.TeamsCron, cfg.Polling.PortfolioCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.RefreshBoard()
	sched.Start()
	defer sched.Stop()

	// Command input
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	} else {
		go func() {
			if err := notifier.ReadCommands(ctx, os.Stdin, n, sched.HandleCommand); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("[ERROR] console commands: %v", err)
			}
		}()
		log.Println("[INFO] reading commands from stdin, try /help")
	}

	// HTTP API
	var srv *http.Server
	if cfg.HTTP.Addr != "" {
		srv = &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           httpapi.NewRouter(httpapi.NewHandler(sched, defaultRange)),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("[ERROR] http server: %v", err)
			}
		}()
		log.Printf("[INFO] HTTP API listening on %s", cfg.HTTP.Addr)
	}

	log.Println("[INFO] GridironMarket is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	if srv != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] http shutdown: %v", err)
		}
		done()
	}
	cancel()
	log.Println("[INFO] GridironMarket stopped")
}
