package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fintrack_notifier/internal/app"
	"fintrack_notifier/internal/domain/push"
	"fintrack_notifier/internal/infra/broker"
	"fintrack_notifier/internal/infra/config"
	idb "fintrack_notifier/internal/infra/database"
	"fintrack_notifier/internal/infra/httpapi"
	"fintrack_notifier/internal/infra/logger"
	"fintrack_notifier/internal/infra/metrics"
	"fintrack_notifier/internal/infra/scheduler"
	"fintrack_notifier/internal/infra/telegram"

	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg.LogLevel, cfg.Environment)
	logger.Log.Infof("Configuration loaded. LogLevel: %s, Environment: %s, PushChannel: %s", cfg.LogLevel, cfg.Environment, cfg.PushChannel)

	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer db.Close()
	logger.Log.Info("Database connection established successfully.")

	cardRepo := idb.NewPostgresCardRepository(db)
	userRepo := idb.NewPostgresUserRepository(db)
	ledgerRepo := idb.NewPostgresLedgerRepository(db)
	logRepo := idb.NewPostgresLogRepository(db)
	logger.Log.Info("Repositories initialized.")

	var sender push.Sender
	switch cfg.PushChannel {
	case config.PushChannelTelegram:
		bot, err := telebot.NewBot(telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) {
				logger.Log.WithError(err).Error("Telegram bot error")
			},
		})
		if err != nil {
			logger.Log.Fatalf("FATAL: Could not create Telegram bot: %v", err)
		}
		sender = telegram.NewSender(bot, userRepo)
		logger.Log.Info("Telegram push sender initialized.")
	case config.PushChannelAMQP:
		pub, err := broker.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Log.Fatalf("FATAL: Could not connect to message broker: %v", err)
		}
		defer pub.Close()
		sender = pub
		logger.Log.Infof("AMQP push publisher initialized (exchange: %s).", cfg.AMQPExchange)
	}

	m := metrics.New()
	dispatcher := app.NewDispatcher(sender, logRepo, ledgerRepo, m)
	engine := app.NewEngine(
		cardRepo,
		userRepo,
		ledgerRepo,
		dispatcher,
		m,
		cfg.WorkerLimit,
		cfg.RunTimeout,
		time.Duration(cfg.LedgerRetentionDays)*24*time.Hour,
	)
	logger.Log.Info("Notification engine initialized.")

	registry := scheduler.NewRegistry()
	scheduler.RegisterNotifierJobs(registry, engine, cfg.CronSpecDaily, cfg.CronSpecPrune, cfg.TriggerInitialDelay, cfg.RunTimeout+30*time.Second)
	registry.Start()

	apiServer := httpapi.NewServer(cfg.HTTPAddr, logRepo)
	go func() {
		logger.Log.Infof("HTTP API listening on %s", cfg.HTTPAddr)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("FATAL: HTTP server failed: %v", err)
		}
	}()

	logger.Log.Info("Application setup complete. Scheduler and API are running.")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down application...")
	registry.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Warn("HTTP server shutdown was not clean")
	}
	logger.Log.Info("Application shut down gracefully.")
}
