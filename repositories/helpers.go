package repositories

import (
	"database/sql"
	"fmt"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

func executorOr(exec SQLExecutor, db *sql.DB) SQLExecutor {
	if exec != nil {
		return exec
	}
	return db
}

func toInt64s(ids []int) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
