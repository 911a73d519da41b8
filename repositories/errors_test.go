package repositories

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"lock timeout", &pq.Error{Code: "55P03"}, true},
		{"statement cancelled", &pq.Error{Code: "57014"}, true},
		{"deadlock", fmt.Errorf("update: %w", &pq.Error{Code: "40P01"}), true},
		{"serialization", &pq.Error{Code: "40001"}, true},
		{"connection failure", &pq.Error{Code: "08006"}, true},
		{"unique violation", &pq.Error{Code: "23505"}, false},
		{"bad conn", driver.ErrBadConn, true},
		{"conn done", sql.ErrConnDone, true},
		{"deadline", context.DeadlineExceeded, true},
		{"net error", &net.OpError{Op: "read", Err: errors.New("connection reset by peer")}, true},
		{"already marked", fmt.Errorf("%w: x", ErrTransient), true},
		{"plain", errors.New("syntax error"), false},
		{"cancelled by caller", context.Canceled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestClassifyError(t *testing.T) {
	assert.NoError(t, classifyError(nil))

	wrapped := classifyError(&pq.Error{Code: "55P03"})
	assert.ErrorIs(t, wrapped, ErrTransient)

	plain := errors.New("boom")
	assert.Same(t, plain, classifyError(plain))
}

func TestLockTimeoutMillis(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int64
	}{
		{500 * time.Microsecond, 1},
		{time.Nanosecond, 1},
		{time.Millisecond, 1},
		{1500 * time.Microsecond, 2},
		{5 * time.Second, 5000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, lockTimeoutMillis(tt.in), tt.in.String())
	}
}
