// Package migrations embeds the SQL schema files of both services.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
)

// MainService is the schema of the participation store.
const MainService = "001_main_service.sql"

// StatsService is the schema of the postgres hit store.
const StatsService = "002_stats_service.sql"

//go:embed *.sql
var FS embed.FS

// Apply runs the named schema file as a single statement batch. Every file is
// idempotent, so Apply is safe on every start.
func Apply(ctx context.Context, db *sql.DB, name string) error {
	script, err := FS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", name, err)
	}
	if _, err := db.ExecContext(ctx, string(script)); err != nil {
		return fmt.Errorf("apply migration %s: %w", name, err)
	}
	return nil
}
