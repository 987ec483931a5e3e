package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sojus/helpdesk/internal/config"
	"github.com/sojus/helpdesk/internal/repository"
	"github.com/sojus/helpdesk/internal/repository/sqlite"
)

// OpenStore connects the ticket store selected by cfg.Storage.Driver and brings its schema up to date.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := OpenSQLite(ctx, cfg.Storage.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return sqlite.NewStore(db), nil
	case config.DriverPostgres:
		if cfg.Postgres.DSN == "" {
			return nil, fmt.Errorf("POSTGRES_DSN is required for the postgres driver")
		}
		pool, err := openPostgresPool(ctx, cfg.Postgres, cfg.App.Name, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pool, logger); err != nil {
				pool.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		return repository.NewPostgresStore(pool), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
