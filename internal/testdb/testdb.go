//go:build integration

// Package testdb provides a migrated Postgres database for integration tests.
// Tests are skipped unless INTELLICARD_TEST_DATABASE_URL is set.
package testdb

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/stefanvasilev2002/intellicard/internal/platform/postgres"
	"github.com/stefanvasilev2002/intellicard/internal/redact"
	"github.com/stretchr/testify/require"
)

// EnvDatabaseURL names the variable holding the test database URL.
const EnvDatabaseURL = "INTELLICARD_TEST_DATABASE_URL"

const pingTimeout = 5 * time.Second

var (
	migrateOnce sync.Once
	migrateErr  error
)

// Open connects to the test database and applies all migrations once per
// test binary. The connection is closed when t ends.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := os.Getenv(EnvDatabaseURL)
	if dbURL == "" {
		t.Skipf("%s not set, skipping integration test", EnvDatabaseURL)
	}

	db, err := sql.Open("pgx", dbURL)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("test database unreachable: %s", redact.Error(err))
	}

	migrateOnce.Do(func() {
		quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
		migrateErr = postgres.Migrate(context.Background(), db, postgres.MigrateUp, quiet)
	})
	require.NoError(t, migrateErr, "failed to migrate test database")

	return db
}

// WithTx runs fn inside a transaction that is always rolled back, so tests
// can share one database without seeing each other's rows.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err, "failed to begin test transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}
