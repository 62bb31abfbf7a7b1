package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/streadway/amqp"
	"gorm.io/gorm"

	"github.com/bossbruno/quick-bundles-notifications/internal/api"
	"github.com/bossbruno/quick-bundles-notifications/internal/config"
	"github.com/bossbruno/quick-bundles-notifications/internal/consumer"
	"github.com/bossbruno/quick-bundles-notifications/internal/repository"
	"github.com/bossbruno/quick-bundles-notifications/internal/services"
	"github.com/bossbruno/quick-bundles-notifications/internal/worker"
	"github.com/bossbruno/quick-bundles-notifications/pkg/logger"
	"github.com/bossbruno/quick-bundles-notifications/pkg/metrics"
	"github.com/bossbruno/quick-bundles-notifications/pkg/retry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logr := logger.New(cfg.LogLevel, cfg.AppName)
	logr.Info("starting notification dispatcher")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dialCfg := retry.Config{
		MaxAttempts:    cfg.DialMaxAttempts,
		InitialBackoff: cfg.DialInitialBackoff,
		MaxBackoff:     cfg.DialMaxBackoff,
	}

	var db *gorm.DB
	if err := retry.Do(ctx, dialCfg, func() error {
		var dialErr error
		db, dialErr = repository.Connect(cfg.DatabaseURL)
		return dialErr
	}); err != nil {
		logr.Error("failed to connect database", slog.Any("error", err))
		os.Exit(1)
	}

	var cache *repository.SuppressionCache
	if cfg.RedisURL != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
		cache = repository.NewSuppressionCache(rdb, 24*time.Hour)
		defer cache.Close()
	}

	notifications := repository.NewNotificationStore(db)
	users := repository.NewUserStore(db)
	orders := repository.NewOrderStore(db)

	metricsCollector := metrics.New()
	fcmProvider := services.NewFCMProvider(cfg.FCMServerKey, cfg.FCMEndpoint, cfg.ProviderTimeout, logr)

	dispatcher := services.NewDispatcher(
		users,
		notifications,
		orders,
		suppressorOrNil(cache),
		fcmProvider,
		metricsCollector,
		logr,
		cfg.SystemActorID,
	)

	emailSender := services.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	reportNotifier := services.NewReportNotifier(emailSender, cfg.EmailFrom, cfg.ReportEmailTo, metricsCollector, logr)

	router := services.NewEventRouter(dispatcher, reportNotifier, logr)

	var conn *amqp.Connection
	if err := retry.Do(ctx, dialCfg, func() error {
		var dialErr error
		conn, dialErr = amqp.Dial(cfg.RabbitURL)
		return dialErr
	}); err != nil {
		logr.Error("failed to connect rabbitmq", slog.Any("error", err))
		os.Exit(1)
	}
	defer conn.Close()

	base := consumer.NewBaseConsumer(
		conn,
		cfg.EventsQueue,
		cfg.DeadLetterQueue,
		cfg.PrefetchCount,
		cfg.WorkerCount,
		logr,
	)
	eventConsumer := consumer.NewEventConsumer(base, router, logr, cfg.MaxDeliveries)

	cleanup := worker.NewCleanup(notifications, cfg.RetentionAge, cfg.CleanupInterval, metricsCollector, logr)
	go cleanup.Run(ctx)

	started := time.Now()
	httpSrv := startHTTPServer(cfg.HTTPPort, router, notifications, metricsCollector, logr, started)

	if err := eventConsumer.Start(ctx); err != nil {
		logr.Error("event consumer exited", slog.Any("error", err))
	}

	shutdownHTTP(httpSrv, logr)
	logr.Info("notification dispatcher stopped")
}

// suppressorOrNil avoids handing the dispatcher a typed-nil interface when
// Redis is not configured.
func suppressorOrNil(cache *repository.SuppressionCache) services.TokenSuppressor {
	if cache == nil {
		return nil
	}
	return cache
}

func startHTTPServer(
	port string,
	changes api.ChangeHandler,
	notifications api.NotificationReader,
	metricsCollector *metrics.Metrics,
	logr *slog.Logger,
	started time.Time,
) *http.Server {
	if port == "" {
		port = "8083"
	}
	handler := api.NewRouter(api.NewHandler(changes, notifications, metricsCollector, started))
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: handler,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Error("http server error", slog.Any("error", err))
		}
	}()
	return srv
}

func shutdownHTTP(srv *http.Server, logr *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("failed to shutdown http server", slog.Any("error", err))
	}
}
