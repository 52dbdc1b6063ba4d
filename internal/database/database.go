package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stock-manager/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open connects to PostgreSQL through the pgx stdlib driver and verifies the
// connection before returning it.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Health reports basic connection pool statistics for the health endpoint.
func Health(db *sql.DB) map[string]any {
	stats := db.Stats()
	return map[string]any{
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
		"wait_count":       stats.WaitCount,
	}
}
