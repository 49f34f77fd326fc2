package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate applies every embedded migration not yet recorded in
// schema_migrations, in file name order. Each file runs in its own
// transaction together with its bookkeeping row.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`); err != nil {
		return 0, fmt.Errorf("db: ensure schema_migrations: %w", err)
	}

	names, err := migrationNames()
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, name := range names {
		version := strings.TrimSuffix(name, ".sql")
		ok, err := applyOne(ctx, pool, name, version)
		if err != nil {
			return applied, err
		}
		if ok {
			applied++
			logger.Info("migration applied", zap.String("version", version))
		}
	}
	return applied, nil
}

func migrationNames() ([]string, error) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("db: read migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".sql" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func applyOne(ctx context.Context, pool *pgxpool.Pool, name, version string) (bool, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("db: begin migration %s: %w", version, err)
	}
	defer tx.Rollback(ctx)

	// Serializes concurrent migrators.
	if _, err := tx.Exec(ctx, `LOCK TABLE schema_migrations IN EXCLUSIVE MODE`); err != nil {
		return false, fmt.Errorf("db: lock schema_migrations: %w", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&exists); err != nil {
		return false, fmt.Errorf("db: check migration %s: %w", version, err)
	}
	if exists {
		return false, nil
	}

	body, err := migrationFS.ReadFile(path.Join("migrations", name))
	if err != nil {
		return false, fmt.Errorf("db: read migration %s: %w", name, err)
	}
	if _, err := tx.Exec(ctx, string(body)); err != nil {
		return false, fmt.Errorf("db: apply migration %s: %w", version, err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
		return false, fmt.Errorf("db: record migration %s: %w", version, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("db: commit migration %s: %w", version, err)
	}
	return true, nil
}

// Reset drops every table the migrations create. Only tests call it.
func Reset(ctx context.Context, pool *pgxpool.Pool) error {
	tables := []string{"messages", "matches", "interests", "job_applications", "job_listings", "profiles", "user_roles", "schema_migrations"}
	for _, t := range tables {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+pgx.Identifier{t}.Sanitize()+" CASCADE"); err != nil {
			return fmt.Errorf("db: drop %s: %w", t, err)
		}
	}
	return nil
}
