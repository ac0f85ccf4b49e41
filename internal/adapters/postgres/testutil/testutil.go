// Package testutil provides a migrated Postgres pool for adapter tests.
//
// TEST_DATABASE_URL points the tests at an existing database. Without it a throwaway container is
// started via testcontainers; the tests skip when -short is set or no container provider is reachable.
package testutil

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	postgres "github.com/student-enrollment/enrollment-api/internal/adapters/postgres"
)

const image = "postgres:16-alpine"

// OpenMigratedPool returns a pool on a database with the current schema applied.
// The pool is closed when the test finishes.
func OpenMigratedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dsn := strings.TrimSpace(os.Getenv("TEST_DATABASE_URL"))
	if dsn == "" {
		dsn = startContainer(ctx, t)
	}

	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolOptions{MaxConns: 4})
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := postgres.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pool
}

// Truncate empties the given tables and resets their identity sequences.
func Truncate(t *testing.T, pool *pgxpool.Pool, tables ...string) {
	t.Helper()
	if len(tables) == 0 {
		return
	}
	ids := make([]string, 0, len(tables))
	for _, tbl := range tables {
		ids = append(ids, pgx.Identifier{tbl}.Sanitize())
	}
	_, err := pool.Exec(context.Background(), "TRUNCATE "+strings.Join(ids, ", ")+" RESTART IDENTITY")
	if err != nil {
		t.Fatalf("truncate %v: %v", tables, err)
	}
}

func startContainer(ctx context.Context, t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctr, err := tcpostgres.Run(ctx, image,
		tcpostgres.WithDatabase("enrollment"),
		tcpostgres.WithUsername("enrollment"),
		tcpostgres.WithPassword("enrollment"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}
	return dsn
}
