package database

import (
	"database/sql/driver"
	"errors"

	"github.com/lib/pq"
)

// pqConnectionExceptionClass is the PostgreSQL error class for connection
// exceptions (SQLSTATE 08xxx).
const pqConnectionExceptionClass = "08"

// IsConnectivityError reports whether err indicates the store itself is
// unreachable, as opposed to a statement-level failure. Connectivity errors
// are fatal to a load run; statement failures only fail their load unit.
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == pqConnectionExceptionClass
	}

	return false
}
