// The main service: participation admission and the public event catalog.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"eventboard/config"
	"eventboard/internal/adapters/cache"
	"eventboard/internal/adapters/email"
	"eventboard/internal/adapters/queue"
	"eventboard/internal/adapters/statsclient"
	delivery "eventboard/internal/delivery/http"
	"eventboard/internal/delivery/http/controllers"
	"eventboard/internal/domain"
	"eventboard/internal/metrics"
	"eventboard/internal/repository/postgres"
	"eventboard/internal/services"
	"eventboard/migrations"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	logger := config.NewLogger("main-service")
	if err := run(logger); err != nil {
		logger.Error("main service stopped", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	pingCtx, cancel := context.WithTimeout(ctx, cfg.ContextTimeout)
	err = db.PingContext(pingCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	if cfg.AutoMigrate {
		if err := migrations.Apply(ctx, db, migrations.MainService); err != nil {
			return err
		}
	}
	logger.Info("connected to postgres")

	m := metrics.New(prometheus.DefaultRegisterer, "eventboard")

	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	requestRepo := postgres.NewRequestRepository(db)

	stats := statsclient.NewHTTPClient(cfg.StatsServerURL, &http.Client{Timeout: cfg.StatsTimeout})

	pingers := map[string]controllers.Pinger{"postgres": db}

	var viewCache domain.ViewCache
	if cfg.RedisAddr != "" {
		client, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.Warn("view cache disabled", "err", err)
		} else {
			defer client.Close()
			viewCache = cache.NewViewCache(client)
			pingers["redis"] = controllers.PingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
		}
	}

	publisher := queue.NewPublisher(cfg.RabbitMQURL)
	if cfg.RabbitMQURL != "" {
		if err := startNotifications(ctx, cfg, logger, userRepo, eventRepo); err != nil {
			return err
		}
	}

	requestService := services.NewRequestService(requestRepo, userRepo, eventRepo, publisher, m, logger, cfg.ContextTimeout)
	catalogService := services.NewCatalogService(eventRepo, requestRepo, stats, viewCache, m, logger, services.CatalogOptions{
		AppName:        cfg.AppName,
		StatsTimeout:   cfg.StatsTimeout,
		CacheTTL:       cfg.ViewCacheTTL,
		ContextTimeout: cfg.ContextTimeout,
	})

	router := delivery.NewRouter(
		controllers.NewRequestController(logger, requestService),
		controllers.NewEventController(logger, catalogService),
		controllers.NewHealthController(logger, pingers),
		delivery.RouterOptions{
			Logger:         logger,
			Metrics:        m,
			Gatherer:       prometheus.DefaultGatherer,
			AllowedOrigins: cfg.CORSAllowedOrigins,
		},
	)

	return delivery.Serve(ctx, logger, ":"+cfg.Port, router)
}

// startNotifications runs the status change consumer that mails requesters
// about decisions on their requests.
func startNotifications(ctx context.Context, cfg *config.Config, logger *slog.Logger, userRepo domain.UserRepository, eventRepo domain.EventRepository) error {
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("create mailer: %w", err)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	handler := services.NewNotificationHandler(userRepo, eventRepo, emailService, logger, cfg.ContextTimeout)
	consumer := queue.NewConsumer(cfg.RabbitMQURL, handler, logger)
	go func() {
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("status consumer stopped", "err", err)
		}
	}()
	return nil
}
