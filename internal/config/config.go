package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds dispatcher configuration loaded from the environment.
type Config struct {
	AppName  string
	LogLevel string
	HTTPPort string

	RabbitURL       string
	EventsQueue     string
	DeadLetterQueue string
	PrefetchCount   int
	WorkerCount     int
	MaxDeliveries   int

	DatabaseURL string
	RedisURL    string

	FCMServerKey    string
	FCMEndpoint     string
	ProviderTimeout time.Duration

	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	EmailFrom     string
	ReportEmailTo string

	SystemActorID string

	RetentionAge    time.Duration
	CleanupInterval time.Duration

	DialMaxAttempts    int
	DialInitialBackoff time.Duration
	DialMaxBackoff     time.Duration
}

// Load loads configuration and performs basic validation.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppName:  getEnv("APP_NAME", "quick_bundles_notifications"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPPort: getEnv("HTTP_PORT", "8083"),

		RabbitURL:       getEnv("RABBITMQ_URL", ""),
		EventsQueue:     getEnv("EVENTS_QUEUE", "document.events"),
		DeadLetterQueue: getEnv("EVENTS_DLQ", "document.events.dead"),
		PrefetchCount:   getEnvAsInt("EVENTS_PREFETCH", 100),
		WorkerCount:     getEnvAsInt("WORKER_COUNT", 5),
		MaxDeliveries:   getEnvAsInt("MAX_DELIVERIES", 4),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		FCMServerKey:    getEnv("FCM_SERVER_KEY", ""),
		FCMEndpoint:     getEnv("FCM_ENDPOINT", "https://fcm.googleapis.com/fcm/send"),
		ProviderTimeout: getEnvAsDuration("PROVIDER_TIMEOUT", 10*time.Second),

		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		EmailFrom:     getEnv("EMAIL_FROM", "no-reply@quickbundles.app"),
		ReportEmailTo: getEnv("REPORT_EMAIL_TO", ""),

		SystemActorID: getEnv("SYSTEM_ACTOR_ID", "system"),

		RetentionAge:    getEnvAsDuration("NOTIFICATION_RETENTION", 7*24*time.Hour),
		CleanupInterval: getEnvAsDuration("CLEANUP_INTERVAL", 24*time.Hour),

		DialMaxAttempts:    getEnvAsInt("DIAL_MAX_ATTEMPTS", 5),
		DialInitialBackoff: getEnvAsDuration("DIAL_INITIAL_BACKOFF", time.Second),
		DialMaxBackoff:     getEnvAsDuration("DIAL_MAX_BACKOFF", 15*time.Second),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadMigrate loads only what the one-shot backfill needs.
func LoadMigrate() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
	}
	if cfg.DatabaseURL == "" {
		return nil, missingError([]string{"DATABASE_URL"})
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.RabbitURL == "" {
		missing = append(missing, "RABBITMQ_URL")
	}
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.FCMServerKey == "" {
		missing = append(missing, "FCM_SERVER_KEY")
	}
	return missingError(missing)
}

func missingError(missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required environment variables: %v", missing)
}

func getEnv(key, def string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	return value
}

func getEnvAsInt(key string, def int) int {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(value)
		if err != nil {
			log.Printf("invalid int for %s, using default %d: %v", key, def, err)
			return def
		}
		return i
	}
	return def
}

func getEnvAsDuration(key string, def time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(value)
		if err != nil {
			log.Printf("invalid duration for %s, using default %s: %v", key, def, err)
			return def
		}
		return d
	}
	return def
}
