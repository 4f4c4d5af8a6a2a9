package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"dosewatch/internal/bot"
	"dosewatch/internal/config"
	"dosewatch/internal/drugs"
	"dosewatch/internal/events"
	"dosewatch/internal/history"
	"dosewatch/internal/metrics"
	"dosewatch/internal/notify"
	"dosewatch/internal/scheduler"
	"dosewatch/internal/service"
	"dosewatch/internal/store"
)

func main() {
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("DOSEWATCH_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Reminders live in a single JSON document: a local file by default, a
	// Redis key when an address is configured.
	var st store.Store
	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		st = store.NewRedisStore(rdb, cfg.Redis.Key, &logger)
		logger.Info().Str("address", cfg.Redis.Address).Msg("using redis store")
	} else {
		fileStore, err := store.NewFileStore(cfg.Storage.Path, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("open store error")
		}
		st = fileStore
		logger.Info().Str("path", cfg.Storage.Path).Msg("using file store")
	}

	var histDB *history.DB
	var recorder notify.DeliveryRecorder = notify.NopRecorder{}
	if cfg.History.Enabled {
		histDB, err = history.New(cfg.History.Path, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("open history db error")
		}
		defer histDB.Close()
		recorder = histDB
	}

	dispatcher := notify.NewDispatcher(notify.DispatcherConfig{
		Rate:  cfg.Notifications.Rate,
		Burst: cfg.Notifications.Burst,
		Retry: notify.RetryConfig{
			MaxRetries:  cfg.Notifications.MaxRetries,
			RetryDelays: cfg.RetryDelays(),
		},
	}, recorder, &logger, notify.NewLogNotifier(&logger))

	sched := scheduler.New(dispatcher, cfg.Location(), &logger)
	defer sched.Stop()

	bus := events.NewBus()
	for _, t := range []events.Type{
		events.ReminderCreated, events.ReminderUpdated,
		events.ReminderDeleted, events.ReminderToggled,
	} {
		bus.Subscribe(t, func(e events.Event) {
			logger.Info().Str("event", string(e.Type)).
				Str("id", e.Reminder.ID).
				Str("medicine", e.Reminder.MedicineName).
				Msg("reminder lifecycle event")
		})
	}

	svc := service.New(st, sched, bus, &logger)

	token := cfg.Notifications.Telegram.BotToken
	chatID := cfg.Notifications.Telegram.ChatID
	if cfg.Bot.Enabled && token != "" {
		b, api, err := bot.New(token, svc, histDB, drugs.Default(),
			cfg.Bot.AllowedChats, cfg.Bot.Debug, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("create bot error")
		}
		// Notifier and command surface share one bot session.
		dispatcher.AddNotifier(notify.NewTelegramNotifierWithBot(api, chatID, &logger))
		go b.Start(ctx)
	} else if token != "" {
		tn, err := notify.NewTelegramNotifier(token, chatID, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("create telegram notifier error")
		}
		dispatcher.AddNotifier(tn)
	}

	if err := svc.Reload(ctx); err != nil {
		logger.Fatal().Err(err).Msg("initial reminder load failed")
	}

	if rdb == nil {
		err := store.Watch(ctx, cfg.Storage.Path, &logger, func() {
			if err := svc.Reload(ctx); err != nil {
				logger.Error().Err(err).Msg("reload after store change failed")
			}
		})
		if err != nil {
			logger.Warn().Err(err).Msg("store watcher unavailable")
		}
	}

	maintenance := cron.New()
	backup := store.NewBackupService(cfg.Storage.Path, store.BackupConfig{
		Enabled:       cfg.Storage.Backup.Enabled,
		Path:          cfg.Storage.Backup.Path,
		RetentionDays: cfg.Storage.Backup.RetentionDays,
	}, &logger)
	_, err = maintenance.AddFunc(cfg.Maintenance.Schedule, func() {
		if cfg.Storage.Backup.Enabled && rdb == nil {
			if err := backup.PerformBackup(); err != nil {
				logger.Error().Err(err).Msg("store backup failed")
			}
			backup.CleanupOldBackups()
		}
		if histDB != nil {
			if _, err := histDB.Prune(ctx, cfg.HistoryRetention()); err != nil {
				logger.Error().Err(err).Msg("history prune failed")
			}
		}
	})
	if err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.Maintenance.Schedule).Msg("invalid maintenance schedule")
	}
	maintenance.Start()
	defer maintenance.Stop()

	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, histDB, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	logger.Info().Int("timers", sched.ArmedCount()).Msg("dosewatch started")
	<-ctx.Done()
	logger.Info().Msg("shutting down")
}

func startHealthServer(ctx context.Context, port int, histDB *history.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if histDB != nil {
			if err := histDB.PingContext(ctxPing); err != nil {
				http.Error(w, "history db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
