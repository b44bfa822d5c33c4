// Package testhelpers provides a shared Postgres container for integration tests.
package testhelpers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"starc/internal/repository/postgres"
)

// PostgresImage is the image the integration suite runs against.
const PostgresImage = "postgres:16-alpine"

// TablePrefix keeps integration tables apart from dev data.
const TablePrefix = "test_"

// TestDB holds a shared test database container and a migrated connection pool.
type TestDB struct {
	Container testcontainers.Container
	Pool      *pgxpool.Pool
	Tables    *postgres.TableNames
	ConnStr   string
}

// RepoConfig returns a repository config bound to the shared pool.
func (db *TestDB) RepoConfig() *postgres.RepositoryConfig {
	return &postgres.RepositoryConfig{
		Pool:   db.Pool,
		Tables: db.Tables,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

var (
	sharedTestDB     *TestDB
	sharedTestDBOnce sync.Once
	sharedTestDBErr  error
)

// GetTestDB returns a shared PostgreSQL container for integration tests.
// The container is created once and reused across all tests in the run.
func GetTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedTestDBOnce.Do(func() {
		sharedTestDB, sharedTestDBErr = setupTestDB()
	})

	if sharedTestDBErr != nil {
		t.Fatalf("Failed to setup test database: %v", sharedTestDBErr)
	}

	return sharedTestDB
}

func setupTestDB() (*TestDB, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        PostgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "starc_test",
			"POSTGRES_USER":     "starc",
			"POSTGRES_PASSWORD": "test_password",
		},
		// postgres logs readiness once for the init server and once for the real one
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	connStr := fmt.Sprintf("postgres://starc:test_password@%s:%s/starc_test?sslmode=disable",
		host, port.Port())

	pool, err := postgres.CreateConnectionPool(ctx, connStr)
	if err != nil {
		return nil, err
	}

	tables := postgres.NewTableNames(TablePrefix)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := postgres.RunMigrations(pool, tables, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TestDB{
		Container: container,
		Pool:      pool,
		Tables:    tables,
		ConnStr:   connStr,
	}, nil
}

// Truncate empties the given tables and resets their id sequences.
func (db *TestDB) Truncate(t *testing.T, tables ...string) {
	t.Helper()
	for _, table := range tables {
		if _, err := db.Pool.Exec(context.Background(),
			fmt.Sprintf("TRUNCATE %s RESTART IDENTITY CASCADE", table)); err != nil {
			t.Fatalf("failed to truncate %s: %v", table, err)
		}
	}
}
