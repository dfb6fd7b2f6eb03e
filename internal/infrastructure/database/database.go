package database

import (
	"context"
	"database/sql"
	"fmt"

	"orders/internal/config"
	"orders/internal/infrastructure/migrate"
	"orders/internal/infrastructure/mysql"
	"orders/internal/infrastructure/sqlite"
)

// Open connects to the configured driver and brings the schema up to date.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)

	switch cfg.Driver {
	case config.DriverMySQL:
		db, err = mysql.NewConnection(cfg)
	case config.DriverSQLite:
		db, err = sqlite.NewConnection(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := migrate.Apply(ctx, db, cfg.Driver); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying migrations: %w", err)
	}

	return db, nil
}
