// Package sqlite provides the embedded SQLite hit store of the stats service.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"eventboard/internal/domain"

	_ "modernc.org/sqlite"
)

// timeFormat is fixed width so lexicographic order matches chronological order.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// HitStore is a domain.HitRepository backed by a SQLite file.
type HitStore struct {
	db *sql.DB
}

var _ domain.HitRepository = (*HitStore)(nil)

// Open opens the database at path with WAL mode and busy_timeout and creates
// the schema if needed.
func Open(path string) (*HitStore, error) {
	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", url.PathEscape(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	// WAL allows parallel readers; writes are still serialized by SQLite.
	db.SetMaxOpenConns(4)

	s := &HitStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *HitStore) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *HitStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *HitStore) migrate(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS endpoint_hits (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		app       TEXT NOT NULL,
		uri       TEXT NOT NULL,
		ip        TEXT NOT NULL,
		ts        TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_endpoint_hits_ts_uri ON endpoint_hits(ts, uri);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create endpoint_hits table: %w", err)
	}
	return nil
}

func (s *HitStore) Create(ctx context.Context, hit *domain.EndpointHit) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO endpoint_hits (app, uri, ip, ts) VALUES (?, ?, ?, ?)`,
		hit.App, hit.URI, hit.IP, hit.Timestamp.UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("insert hit: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	hit.ID = id
	return nil
}

func (s *HitStore) Stats(ctx context.Context, q domain.StatsQuery) ([]*domain.ViewStats, error) {
	count := "COUNT(*)"
	if q.Unique {
		count = "COUNT(DISTINCT ip)"
	}
	where := []string{"ts >= ?", "ts <= ?"}
	args := []any{q.Start.UTC().Format(timeFormat), q.End.UTC().Format(timeFormat)}
	if len(q.URIs) > 0 {
		marks := make([]string, len(q.URIs))
		for i, uri := range q.URIs {
			marks[i] = "?"
			args = append(args, uri)
		}
		where = append(where, "uri IN ("+strings.Join(marks, ", ")+")")
	}
	query := fmt.Sprintf(`
		SELECT app, uri, %s AS hits
		FROM endpoint_hits
		WHERE %s
		GROUP BY app, uri
		ORDER BY hits DESC, app, uri
	`, count, strings.Join(where, " AND "))

	rows, err := s.db.QueryContext(ctx, query, args...)
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
