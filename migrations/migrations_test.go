package migrations

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_ContainsSchemas(t *testing.T) {
	for _, name := range []string{MainService, StatsService} {
		b, err := FS.ReadFile(name)
		require.NoError(t, err, name)
		assert.True(t, strings.Contains(string(b), "CREATE TABLE IF NOT EXISTS"), name)
	}
	b, err := FS.ReadFile(MainService)
	require.NoError(t, err)
	assert.Contains(t, string(b), "WHERE status <> 'CANCELED'")
}

func TestApply(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	script, err := FS.ReadFile(MainService)
	require.NoError(t, err)
	mock.ExpectExec(string(script)).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Apply(context.Background(), db, MainService))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApply_Errors(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	err = Apply(context.Background(), db, "999_missing.sql")
	assert.ErrorContains(t, err, "read migration 999_missing.sql")

	script, err := FS.ReadFile(StatsService)
	require.NoError(t, err)
	mock.ExpectExec(string(script)).WillReturnError(errors.New("permission denied for schema public"))
	err = Apply(context.Background(), db, StatsService)
	assert.ErrorContains(t, err, "apply migration 002_stats_service.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}
