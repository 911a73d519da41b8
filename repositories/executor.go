package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Transactor runs fn inside one database transaction. The transaction is
// committed when fn returns nil and rolled back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(exec SQLExecutor) error) error
}

type postgresTransactor struct {
	db          *sql.DB
	lockTimeout time.Duration
}

// NewPostgresTransactor returns a Transactor whose transactions give up waiting
// for row locks after lockTimeout. Zero keeps the server default.
func NewPostgresTransactor(db *sql.DB, lockTimeout time.Duration) Transactor {
	return &postgresTransactor{db: db, lockTimeout: lockTimeout}
}

func (t *postgresTransactor) WithinTx(ctx context.Context, fn func(exec SQLExecutor) error) (err error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return classifyError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = classifyError(fmt.Errorf("failed to commit transaction: %w", cErr))
		}
	}()

	if t.lockTimeout > 0 {
		// SET LOCAL does not take bind parameters.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", lockTimeoutMillis(t.lockTimeout))
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return classifyError(fmt.Errorf("failed to set lock timeout: %w", err))
		}
	}

	return fn(tx)
}

// lockTimeoutMillis rounds up to whole milliseconds. Postgres reads a zero
// lock_timeout as no limit at all.
func lockTimeoutMillis(d time.Duration) int64 {
	ms := d.Milliseconds()
	if time.Duration(ms)*time.Millisecond < d {
		ms++
	}
	return max(ms, 1)
}
