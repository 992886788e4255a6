package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Push channel selection values for PUSH_CHANNEL.
const (
	PushChannelTelegram = "telegram"
	PushChannelAMQP     = "amqp"
)

// AppConfig holds all configuration for the notifier daemon.
type AppConfig struct {
	DatabaseURL string
	LogLevel    string
	Environment string

	PushChannel   string // telegram | amqp
	TelegramToken string // Required when PushChannel == telegram
	AMQPURL       string // Required when PushChannel == amqp
	AMQPExchange  string

	HTTPAddr string

	// The engine does not assume sub-day precision; the cadence is whatever
	// the cron specs say, approximately daily by default.
	CronSpecDaily       string
	CronSpecPrune       string
	TriggerInitialDelay time.Duration

	WorkerLimit         int
	RunTimeout          time.Duration
	LedgerRetentionDays int
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.PushChannel = strings.ToLower(os.Getenv("PUSH_CHANNEL"))
	if cfg.PushChannel == "" {
		cfg.PushChannel = PushChannelTelegram
	}
	switch cfg.PushChannel {
	case PushChannelTelegram:
		cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
		if cfg.TelegramToken == "" {
			return nil, fmt.Errorf("TELEGRAM_TOKEN is not set (required for PUSH_CHANNEL=telegram)")
		}
	case PushChannelAMQP:
		cfg.AMQPURL = os.Getenv("AMQP_URL")
		if cfg.AMQPURL == "" {
			return nil, fmt.Errorf("AMQP_URL is not set (required for PUSH_CHANNEL=amqp)")
		}
		cfg.AMQPExchange = os.Getenv("AMQP_EXCHANGE")
		if cfg.AMQPExchange == "" {
			cfg.AMQPExchange = "fintrack.notifications"
		}
	default:
		return nil, fmt.Errorf("invalid PUSH_CHANNEL: %q", cfg.PushChannel)
	}

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.CronSpecDaily = os.Getenv("CRON_SPEC_DAILY")
	if cfg.CronSpecDaily == "" {
		cfg.CronSpecDaily = "0 9 * * *" // Default: 9:00 AM daily
	}
	cfg.CronSpecPrune = os.Getenv("CRON_SPEC_PRUNE")
	if cfg.CronSpecPrune == "" {
		cfg.CronSpecPrune = "30 3 * * *" // Default: 3:30 AM daily
	}

	cfg.TriggerInitialDelay, err = durationEnv("TRIGGER_INITIAL_DELAY", time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.RunTimeout, err = durationEnv("RUN_TIMEOUT", 2*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.WorkerLimit, err = intEnv("WORKER_LIMIT", 8)
	if err != nil {
		return nil, err
	}
	cfg.LedgerRetentionDays, err = intEnv("LEDGER_RETENTION_DAYS", 90)
	if err != nil {
		return nil, err
	}
	if cfg.LedgerRetentionDays < 1 {
		return nil, fmt.Errorf("LEDGER_RETENTION_DAYS must be positive, got %d", cfg.LedgerRetentionDays)
	}

	return cfg, nil
}

func intEnv(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}
