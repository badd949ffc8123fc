package repositories

import (
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/devfolio/portfolio-backend/internal/db"
)

var errDB = errors.New("db error")

// newTestStore wires sqlmock through the real SQLStore so repository tests
// exercise the same scanning and error translation the server runs with.
func newTestStore(t *testing.T) (db.Store, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })
	return db.NewWithDB(mockDB, "sqlite"), mock
}
