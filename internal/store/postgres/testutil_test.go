//go:build integration

package postgres_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/store/postgres"
)

func migrationsDir() string {
	_, currentFile, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(currentFile), "migrations")
}

// testDB connects to TEST_DB_URL when set, otherwise starts a PostgreSQL
// container. Migrations are applied and every table is truncated so each
// test starts empty.
func testDB(t *testing.T) *postgres.DB {
	t.Helper()
	ctx := context.Background()

	url := os.Getenv("TEST_DB_URL")
	if url == "" {
		url = startContainer(t)
	}

	db, err := postgres.New(postgres.Config{
		URL:             url,
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.RunMigrations(ctx, migrationsDir()))
	_, err = db.ExecContext(ctx, `
		TRUNCATE ledger_reconciliation_findings, spin_credit_records, chain_transfers,
			sync_cursors, credit_config, account_addresses, spin_balances
	`)
	require.NoError(t, err)
	return db
}

func startContainer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("test_spin_indexer"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(context.Background()))
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return connStr
}
