// Package pgxstore provides the PostgreSQL hit store of the stats service, using pgx.
package pgxstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"eventboard/internal/domain"
	"eventboard/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool creates and validates a pgxpool connection pool.
// It retries up to 5 times to accommodate containers starting up.
func NewPool(ctx context.Context, dsn string, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	poolCfg.MaxConns = 20
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= 5; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		logger.Warn("db connect attempt failed", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	return nil, fmt.Errorf("connect to postgres: %w", err)
}

// HitStore is a domain.HitRepository backed by PostgreSQL.
type HitStore struct {
	db *pgxpool.Pool
}

var _ domain.HitRepository = (*HitStore)(nil)

func NewHitStore(db *pgxpool.Pool) *HitStore {
	return &HitStore{db: db}
}

// EnsureSchema applies the embedded stats schema. Without arguments pgx
// sends the script over the simple protocol, so it may hold several statements.
func (s *HitStore) EnsureSchema(ctx context.Context) error {
	script, err := migrations.FS.ReadFile(migrations.StatsService)
	if err != nil {
		return fmt.Errorf("read stats schema: %w", err)
	}
	if _, err := s.db.Exec(ctx, string(script)); err != nil {
		return fmt.Errorf("create endpoint_hits table: %w", err)
	}
	return nil
}

func (s *HitStore) Create(ctx context.Context, hit *domain.EndpointHit) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO endpoint_hits (app, uri, ip, timestamp)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		hit.App, hit.URI, hit.IP, hit.Timestamp.UTC(),
	).Scan(&hit.ID)
	if err != nil {
		return fmt.Errorf("insert hit: %w", err)
	}
	return nil
}

func (s *HitStore) Stats(ctx context.Context, q domain.StatsQuery) ([]*domain.ViewStats, error) {
	query, args := statsQuery(q)
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	stats := make([]*domain.ViewStats, 0)
	for rows.Next() {
		v := &domain.ViewStats{}
		if err := rows.Scan(&v.App, &v.URI, &v.Hits); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats = append(stats, v)
	}
	return stats, rows.Err()
}

// statsQuery builds the grouped count query. Timestamps are stored without
// zone and compared in UTC.
func statsQuery(q domain.StatsQuery) (string, []any) {
	count := "COUNT(*)"
	if q.Unique {
		count = "COUNT(DISTINCT ip)"
	}
	args := []any{q.Start.UTC(), q.End.UTC()}
	uriFilter := ""
	if len(q.URIs) > 0 {
		uriFilter = " AND uri = ANY($3)"
		args = append(args, q.URIs)
	}
	query := fmt.Sprintf(`
		SELECT app, uri, %s AS hits
		FROM endpoint_hits
		WHERE timestamp BETWEEN $1 AND $2%s
		GROUP BY app, uri
		ORDER BY hits DESC, app, uri
	`, count, uriFilter)
	return query, args
}
