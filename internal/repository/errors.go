package repository

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"tilp-connect/common/database"
	"tilp-connect/internal/domain"

	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

// storeError maps driver errors onto the domain taxonomy so callers can use
// errors.Is without knowing about lib/pq.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	if isUnavailable(err) {
		return fmt.Errorf("failed to %s: %w: %w", op, domain.ErrStoreUnavailable, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return fmt.Errorf("failed to %s: %w: %w", op, domain.ErrConflict, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// isUnavailable reports connection-level failures: the store could not be
// opened or reached, as opposed to a statement failing.
func isUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, database.ErrUnavailable) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code.Class() == "08" { // connection_exception
			return true
		}
		switch pqErr.Code {
		case "57P01", "57P02", "57P03": // admin_shutdown, crash_shutdown, cannot_connect_now
			return true
		}
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
