package postgres

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// prefixPlaceholder is replaced by the table prefix in every migration file
const prefixPlaceholder = "{{prefix}}"

// RunMigrations applies pending migrations for the given table prefix.
// Each prefix tracks its own version in <prefix>schema_migrations, so
// dev/test/prod tables can share one database.
func RunMigrations(pool *pgxpool.Pool, tables *TableNames, logger *slog.Logger) error {
	m, closeFn, err := newMigrator(pool, tables, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to apply (database up-to-date)", "prefix", tables.Prefix)
		return nil
	}
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, _, _ := m.Version()
	logger.Info("applied migrations", "version", version, "prefix", tables.Prefix)
	return nil
}

// DropAll reverts every migration for the given table prefix.
func DropAll(pool *pgxpool.Pool, tables *TableNames, logger *slog.Logger) error {
	m, closeFn, err := newMigrator(pool, tables, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("revert migrations: %w", err)
	}
	return nil
}

func newMigrator(pool *pgxpool.Pool, tables *TableNames, logger *slog.Logger) (*migrate.Migrate, func(), error) {
	db := stdlib.OpenDBFromPool(pool)

	driver, err := migratepg.WithInstance(db, &migratepg.Config{
		MigrationsTable: tables.Prefix + "schema_migrations",
	})
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("create migration driver: %w", err)
	}

	source, err := iofs.New(prefixFS{fsys: migrationFiles, prefix: tables.Prefix}, "migrations")
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("open migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("create migration instance: %w", err)
	}

	closeFn := func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Warn("failed to close migration source", "error", srcErr)
		}
		if dbErr != nil {
			logger.Warn("failed to close migration database", "error", dbErr)
		}
		db.Close()
	}
	return m, closeFn, nil
}

// prefixFS serves the embedded migrations with the table prefix substituted.
type prefixFS struct {
	fsys   embed.FS
	prefix string
}

func (p prefixFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return p.fsys.ReadDir(name)
}

func (p prefixFS) Open(name string) (fs.File, error) {
	f, err := p.fsys.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() || !strings.HasSuffix(name, ".sql") {
		return f, nil
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	body := strings.ReplaceAll(string(raw), prefixPlaceholder, p.prefix)
	return &renderedFile{
		Reader: bytes.NewReader([]byte(body)),
		info:   renderedInfo{FileInfo: info, size: int64(len(body))},
	}, nil
}

type renderedFile struct {
	*bytes.Reader
	info renderedInfo
}

func (f *renderedFile) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *renderedFile) Close() error               { return nil }

type renderedInfo struct {
	fs.FileInfo
	size int64
}

func (i renderedInfo) Size() int64 { return i.size }
