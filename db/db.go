package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres driver
)

type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

var DefaultPoolConfig = PoolConfig{
	MaxOpenConns:    25,
	MaxIdleConns:    25,
	ConnMaxLifetime: 5 * time.Minute,
}

// Connect opens a postgres handle and verifies it with a ping bounded by timeout.
func Connect(dsn string, timeout time.Duration, pool PoolConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close after failed ping: %w", closeErr))
		}
		return nil, fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}

	return db, nil
}
