// The stats service: records endpoint hits and answers view count queries.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"eventboard/config"
	delivery "eventboard/internal/delivery/http"
	"eventboard/internal/delivery/http/controllers"
	"eventboard/internal/domain"
	"eventboard/internal/metrics"
	"eventboard/internal/repository/pgxstore"
	"eventboard/internal/repository/sqlite"
	"eventboard/internal/services"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	logger := config.NewLogger("stats-service")
	if err := run(logger); err != nil {
		logger.Error("stats service stopped", "err", err)
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

	hits, ping, closeStore, err := openHitStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	m := metrics.New(prometheus.DefaultRegisterer, "eventboard_stats")
	statsService := services.NewStatsService(hits, cfg.ContextTimeout)

	router := delivery.NewStatsRouter(
		controllers.NewStatsController(logger, statsService),
		controllers.NewHealthController(logger, map[string]controllers.Pinger{cfg.StatsDBDriver: ping}),
		delivery.RouterOptions{
			Logger:         logger,
			Metrics:        m,
			Gatherer:       prometheus.DefaultGatherer,
			AllowedOrigins: cfg.CORSAllowedOrigins,
		},
	)

	return delivery.Serve(ctx, logger, ":"+cfg.StatsPort, router)
}

// openHitStore opens the hit store selected by STATS_DB_DRIVER.
func openHitStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.HitRepository, controllers.PingFunc, func(), error) {
	switch cfg.StatsDBDriver {
	case "sqlite":
		store, err := sqlite.Open(cfg.StatsDBUrl)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open sqlite hit store: %w", err)
		}
		logger.Info("using sqlite hit store", "path", cfg.StatsDBUrl)
		return store, store.Ping, func() { _ = store.Close() }, nil
	case "postgres":
		pool, err := pgxstore.NewPool(ctx, cfg.StatsDBUrl, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		store := pgxstore.NewHitStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		logger.Info("using postgres hit store")
		return store, pool.Ping, pool.Close, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown STATS_DB_DRIVER %q", cfg.StatsDBDriver)
	}
}
