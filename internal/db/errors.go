package db

import (
	"errors"
	"strings"
)

// Domain errors returned by the store and the repositories built on it.
// Handlers map these to HTTP status codes without inspecting driver errors.
var (
	// ErrNotFound is returned when a query or update targets a row that does
	// not exist (get by id, or an UPDATE/DELETE that affected zero rows).
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists is returned when an insert violates a uniqueness
	// constraint, e.g. creating an admin user with a taken email.
	ErrAlreadyExists = errors.New("record already exists")
)

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// Both backends (modernc sqlite and the libsql remote) surface the SQLite
// message text "UNIQUE constraint failed"; matching on the message keeps this
// check driver-agnostic, which matters because the backend is chosen at
// runtime.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
