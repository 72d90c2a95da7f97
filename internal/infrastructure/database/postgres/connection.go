// Package postgres provides the PostgreSQL connection pool, schema migration
// runner, and repository implementations for the sourcing domain.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"

	"github.com/turtacn/APISource-Intelligence/internal/config"
	apperrors "github.com/turtacn/APISource-Intelligence/pkg/errors"
)

// NewPool opens a pgx connection pool configured from cfg and verifies
// connectivity with one ping.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "parse database config")
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "open connection pool")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "ping database")
	}
	return pool, nil
}

// RunMigrations applies all pending file-based migrations from
// cfg.MigrationsPath.  An up-to-date schema is not an error.
func RunMigrations(cfg config.DatabaseConfig) error {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeMigrationFailed, "open migration connection")
	}
	defer db.Close()

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeMigrationFailed, "init migration driver")
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cfg.MigrationsPath), "postgres", driver)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeMigrationFailed, "init migrator")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return apperrors.Wrap(err, apperrors.ErrCodeMigrationFailed, "apply migrations")
	}
	return nil
}

// HealthCheck pings the pool with a short deadline, for readiness probes.
func HealthCheck(ctx context.Context, pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeServiceUnavailable, "database unreachable")
	}
	return nil
}

//Personal.AI order the ending
