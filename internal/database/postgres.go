// Package database provides PostgreSQL connectivity, migrations and repositories.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/jonesrussell/faqhub/infrastructure/logger"
	"github.com/jonesrussell/faqhub/infrastructure/retry"
	"github.com/jonesrussell/faqhub/internal/config"
)

const (
	// DefaultPingTimeout is the default timeout for ping operations
	DefaultPingTimeout = 5 * time.Second
)

// Connect opens a PostgreSQL pool and verifies it, retrying transient failures.
func Connect(ctx context.Context, cfg config.DatabaseConfig, policy retry.Policy, log logger.Logger) (*sqlx.DB, error) {
	log.Info("Connecting to PostgreSQL database",
		logger.String("host", cfg.Host),
		logger.Int("port", cfg.Port),
		logger.String("database", cfg.Database),
	)

	db, err := retry.Do(ctx, policy, func(ctx context.Context) (*sqlx.DB, error) {
		conn, openErr := sqlx.Open("postgres", cfg.DSN())
		if openErr != nil {
			return nil, fmt.Errorf("open database: %w", openErr)
		}

		pingCtx, cancel := context.WithTimeout(ctx, DefaultPingTimeout)
		defer cancel()

		if pingErr := conn.PingContext(pingCtx); pingErr != nil {
			_ = conn.Close()
			log.Warn("Database not reachable yet", logger.Error(pingErr))
			return nil, fmt.Errorf("ping database: %w", pingErr)
		}
		return conn, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnectionMaxLifetime)

	log.Info("Database connected successfully")

	return db, nil
}
