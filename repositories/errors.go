package repositories

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"
)

// ErrTransient marks failures that may succeed when the same call is retried:
// lock timeouts, serialization failures, deadlocks, dropped connections.
var ErrTransient = errors.New("transient storage failure")

var transientCodes = map[pq.ErrorCode]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
	"57014": true, // query_canceled (statement or lock timeout)
	"57P01": true, // admin_shutdown
	"53300": true, // too_many_connections
}

func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrTransient) {
		return err
	}
	if IsTransient(err) {
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}
	return err
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransient) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if transientCodes[pqErr.Code] {
			return true
		}
		// class 08: connection exception
		return pqErr.Code.Class() == "08"
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
