package repository

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"tilp-connect/common/database"
	"tilp-connect/internal/domain"
)

func TestStoreError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, domain.ErrNotFound},
		{"bad conn", driver.ErrBadConn, domain.ErrStoreUnavailable},
		{"ping failed", fmt.Errorf("failed to ping database: %w", database.ErrUnavailable), domain.ErrStoreUnavailable},
		{"connection exception", &pq.Error{Code: "08001"}, domain.ErrStoreUnavailable},
		{"admin shutdown", &pq.Error{Code: "57P01"}, domain.ErrStoreUnavailable},
		{"unique violation", &pq.Error{Code: "23505"}, domain.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, storeError("op", tt.err), tt.want)
		})
	}
}

func TestStoreError_PlainFailure(t *testing.T) {
	cause := errors.New("syntax error")
	err := storeError("list users", cause)

	assert.ErrorIs(t, err, cause)
	assert.False(t, errors.Is(err, domain.ErrStoreUnavailable))
	assert.False(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, "failed to list users: syntax error", err.Error())
}

func TestStoreError_Nil(t *testing.T) {
	assert.NoError(t, storeError("op", nil))
}
