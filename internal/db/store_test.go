package db

import (
	"context"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

// ---------------------------------------------------------------------------
// splitStatements
// ---------------------------------------------------------------------------

func TestSplitStatements_EmbeddedSchema(t *testing.T) {
	ddl, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		t.Fatalf("read embedded schema: %v", err)
	}

	stmts := splitStatements(string(ddl))
	if len(stmts) == 0 {
		t.Fatal("expected statements from embedded schema")
	}

	tables := 0
	for _, stmt := range stmts {
		if stmt == "" {
			t.Error("got empty statement")
		}
		if strings.Contains(stmt, ";") {
			t.Errorf("statement still contains separator: %q", stmt)
		}
		if !strings.HasPrefix(stmt, "CREATE") {
			t.Errorf("unexpected statement prefix: %q", stmt)
		}
		if strings.HasPrefix(stmt, "CREATE TABLE") {
			tables++
		}
	}

	if tables != 5 {
		t.Errorf("schema defines %d tables, want 5", tables)
	}
}

func TestSplitStatements_DropsCommentsAndBlanks(t *testing.T) {
	script := `-- leading comment
CREATE TABLE a (id INTEGER);

-- only a comment between separators
;

CREATE INDEX idx_a ON a (id);
`
	stmts := splitStatements(script)
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2: %#v", len(stmts), stmts)
	}
	if stmts[0] != "CREATE TABLE a (id INTEGER)" {
		t.Errorf("first statement = %q", stmts[0])
	}
}

// ---------------------------------------------------------------------------
// Update / QueryOne error translation
// ---------------------------------------------------------------------------

func TestUpdate_TranslatesUniqueViolation(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })

	store := NewWithDB(mockDB, "sqlite")
	mock.ExpectExec("INSERT INTO admin_users").
		WillReturnError(errUnique{})

	_, err = store.Update(context.Background(), "INSERT INTO admin_users (email) VALUES (?)", "a@b.c")
	if err != ErrAlreadyExists {
		t.Errorf("Update error = %v, want ErrAlreadyExists", err)
	}
}

func TestQueryOne_TranslatesNoRows(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })

	store := NewWithDB(mockDB, "sqlite")
	mock.ExpectQuery("SELECT .* FROM papers").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	var id int64
	err = store.QueryOne(context.Background(), &id, "SELECT id FROM papers WHERE id = ?", 99)
	if err != ErrNotFound {
		t.Errorf("QueryOne error = %v, want ErrNotFound", err)
	}
}

func TestUpdate_ReportsChangesAndLastInsertID(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })

	store := NewWithDB(mockDB, "sqlite")
	mock.ExpectExec("INSERT INTO papers").
		WillReturnResult(sqlmock.NewResult(7, 1))

	res, err := store.Update(context.Background(), "INSERT INTO papers (title) VALUES (?)", "t")
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if res.Changes != 1 || res.LastInsertID != 7 {
		t.Errorf("Result = %+v, want Changes=1 LastInsertID=7", res)
	}
}

// errUnique mimics the message both sqlite drivers produce on a UNIQUE
// constraint failure.
type errUnique struct{}

func (errUnique) Error() string {
	return "constraint failed: UNIQUE constraint failed: admin_users.email (2067)"
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(errUnique{}) {
		t.Error("expected unique violation to be detected")
	}
	if isUniqueViolation(nil) {
		t.Error("nil must not be a unique violation")
	}
	if isUniqueViolation(context.Canceled) {
		t.Error("unrelated error must not be a unique violation")
	}
}
