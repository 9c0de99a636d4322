package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tilp-connect/common/config"

	_ "github.com/lib/pq"
)

// ErrUnavailable is returned when the store cannot be opened or reached.
var ErrUnavailable = errors.New("store unavailable")

const pingTimeout = 5 * time.Second

// NewPostgresDB opens the pool and pings it once.
func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w: %w", ErrUnavailable, err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.MaxIdle)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w: %w", ErrUnavailable, err)
	}

	return db, nil
}

// Close closes db if it is non-nil.
func Close(db *sql.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}
