package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"StockForecaster/internal/api"
	"StockForecaster/internal/collector"
	"StockForecaster/internal/config"
	"StockForecaster/internal/datastore"
	"StockForecaster/internal/logger"
	"StockForecaster/internal/metrics"
	"StockForecaster/internal/notifier"
	"StockForecaster/internal/predictor"
	"StockForecaster/internal/recorder"
	"StockForecaster/internal/scheduler"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log.Info("StockForecaster starting", logger.String("config", cfgPath))

	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	store := datastore.NewCSVStore(cfg.Data.Dir)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn("init sqlite recorder failed, using noop", logger.Error(err))
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	m := metrics.New(prometheus.DefaultRegisterer)

	p := predictor.New(store,
		predictor.WithRecorder(rec),
		predictor.WithMetrics(m),
		predictor.WithLogger(log),
	)
	if err := p.RegisterDefaults(cfg.Algorithms.SMA.Window, cfg.Algorithms.EMA.Alpha); err != nil {
		return fmt.Errorf("register algorithms: %w", err)
	}
	log.Info("algorithms registered",
		logger.Strings("algorithms", p.ListAlgorithms()),
		logger.String("data_dir", p.DataDirectory()),
	)

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init Telegram notifier
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Source.Proxy, log)
		go tn.StartPolling(ctx, notifier.NewCommandHandler(p))
		log.Info("telegram polling started")
	}

	// Init scheduler
	if cfg.Schedule.Enabled {
		sched := scheduler.NewScheduler(p, cfg.Schedule.Symbols, cfg.Schedule.Algorithms, m, log)
		if cfg.Source.Provider == "yahoo" {
			fetcher := collector.NewYahooFetcher(cfg.Source.Proxy)
			sched.Collector = collector.NewCollector(fetcher, store, cfg.Source.Days, log)
			log.Info("series source enabled", logger.String("source", fetcher.Name()))
		}
		if tn != nil {
			sched.Notifier = tn
		}
		if err := sched.Register(cfg.Schedule.Cron); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()

		if os.Getenv("RUN_ON_START") == "true" {
			log.Info("RUN_ON_START enabled, refreshing forecasts now")
			sched.RunAsync()
		}
	}

	h := api.NewHandler(p, store, rec, log, cfg.Server.MaxUploadBytes)
	srv := api.NewServer(h, log,
		api.WithHost(cfg.Server.Host),
		api.WithPort(cfg.Server.Port),
		api.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	)
	srv.Start()

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, stopping...")
	if err := srv.Stop(context.Background()); err != nil {
		log.Error("http shutdown", logger.Error(err))
	}
	log.Info("StockForecaster stopped")
	return nil
}
