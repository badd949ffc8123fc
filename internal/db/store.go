// Package db implements the dual-backend data access layer for the portfolio
// backend. The store speaks to either a local file-backed SQLite database
// (modernc.org/sqlite, WAL mode) or a remote libSQL/Turso replica, chosen
// once at startup from configuration and fixed for the process lifetime.
// Both drivers register with database/sql, so everything above the DSN is
// backend-agnostic.
//
// Schema is applied lazily: the first store operation runs the embedded DDL
// (each statement idempotent), guarded by sync.Once so it executes at most
// once per process.
package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"

	"github.com/devfolio/portfolio-backend/internal/config"
)

//go:embed schema.sql
var schemaFS embed.FS

// Result reports the outcome of a mutating statement.
type Result struct {
	Changes      int64
	LastInsertID int64
}

// Statement pairs a SQL string with its arguments for Batch execution.
type Statement struct {
	SQL  string
	Args []any
}

// Store is the uniform query/update surface the repositories are built on.
// dest arguments follow sqlx conventions: a pointer to a slice for Query, a
// pointer to a struct or scalar for QueryOne.
type Store interface {
	// Query runs a SELECT expected to return any number of rows.
	Query(ctx context.Context, dest any, query string, args ...any) error
	// QueryOne runs a SELECT expected to return one row; ErrNotFound when
	// the result set is empty.
	QueryOne(ctx context.Context, dest any, query string, args ...any) error
	// Update runs an INSERT/UPDATE/DELETE and reports affected rows and the
	// last inserted row id.
	Update(ctx context.Context, query string, args ...any) (Result, error)
	// Batch runs several statements in a single transaction.
	Batch(ctx context.Context, stmts []Statement) error
	// Backend names the backend serving this store ("local" or "remote").
	Backend() string
}

// SQLStore is the concrete Store over an sqlx handle. It owns the lazy
// schema-initialisation flag; construct it with Connect and share one
// instance per process.
type SQLStore struct {
	db      *sqlx.DB
	backend string

	initOnce sync.Once
	initErr  error
}

// Connect opens the configured database backend and verifies connectivity.
// The remote libSQL backend is selected when both turso_url and
// turso_auth_token are present; otherwise the local file engine is used and
// its parent directory is created if missing.
func Connect(cfg *config.DatabaseConfig) (*SQLStore, error) {
	var (
		driver  string
		dsn     string
		backend string
	)

	if cfg.IsRemote() {
		driver = "libsql"
		dsn = fmt.Sprintf("%s?authToken=%s", cfg.TursoURL, cfg.TursoAuthToken)
		backend = "remote"
	} else {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		driver = "sqlite"
		// WAL permits concurrent readers during writes; busy_timeout avoids
		// spurious SQLITE_BUSY failures when writes briefly overlap.
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)", cfg.Path)
		backend = "local"
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", backend, err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MinIdleConnections)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping %s database: %w", backend, err)
	}

	return &SQLStore{db: db, backend: backend}, nil
}

// NewWithDB wraps an existing connection pool in a SQLStore and treats the
// schema as already applied. Used by tests running over sqlmock, where the
// DDL has nothing real to execute against.
func NewWithDB(database *sql.DB, driverName string) *SQLStore {
	s := &SQLStore{db: sqlx.NewDb(database, driverName), backend: driverName}
	s.initOnce.Do(func() {})
	return s
}

// Backend reports which engine was selected at startup: "local" or "remote".
func (s *SQLStore) Backend() string {
	return s.backend
}

// DB exposes the underlying sql.DB pool for health checks and pool metrics.
func (s *SQLStore) DB() *sql.DB {
	return s.db.DB
}

// Close closes the underlying connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// ensureSchema applies the embedded DDL, once per process. The schema file is
// split on semicolons and executed statement by statement because the remote
// backend does not accept multi-statement exec strings.
func (s *SQLStore) ensureSchema(ctx context.Context) error {
	s.initOnce.Do(func() {
		ddl, err := schemaFS.ReadFile("schema.sql")
		if err != nil {
			s.initErr = fmt.Errorf("failed to read embedded schema: %w", err)
			return
		}
		for _, stmt := range splitStatements(string(ddl)) {
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				s.initErr = fmt.Errorf("failed to apply schema statement: %w", err)
				return
			}
		}
	})
	return s.initErr
}

// splitStatements splits a DDL script into individual statements, dropping
// comment-only and empty fragments. Sufficient for this schema, which
// contains no semicolons inside string literals or triggers.
func splitStatements(script string) []string {
	parts := strings.Split(script, ";")
	stmts := make([]string, 0, len(parts))
	for _, part := range parts {
		var lines []string
		for _, line := range strings.Split(part, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" && !strings.HasPrefix(trimmed, "--") {
				lines = append(lines, line)
			}
		}
		if stmt := strings.TrimSpace(strings.Join(lines, "\n")); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// Query implements Store.
func (s *SQLStore) Query(ctx context.Context, dest any, query string, args ...any) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	return s.db.SelectContext(ctx, dest, query, args...)
}

// QueryOne implements Store. A row miss is reported as ErrNotFound so callers
// never compare against sql.ErrNoRows directly.
func (s *SQLStore) QueryOne(ctx context.Context, dest any, query string, args ...any) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	if err := s.db.GetContext(ctx, dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Update implements Store. Uniqueness violations are translated to
// ErrAlreadyExists; everything else is passed through wrapped.
func (s *SQLStore) Update(ctx context.Context, query string, args ...any) (Result, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return Result{}, err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return Result{}, ErrAlreadyExists
		}
		return Result{}, err
	}

	changes, err := res.RowsAffected()
	if err != nil {
		return Result{}, fmt.Errorf("failed to read affected rows: %w", err)
	}
	// LastInsertId is meaningless for UPDATE/DELETE but harmless to read.
	lastID, err := res.LastInsertId()
	if err != nil {
		lastID = 0
	}

	return Result{Changes: changes, LastInsertID: lastID}, nil
}

// Batch implements Store: all statements run inside one transaction and
// either all commit or none do.
func (s *SQLStore) Batch(ctx context.Context, stmts []Statement) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt.SQL, stmt.Args...); err != nil {
			_ = tx.Rollback()
			if isUniqueViolation(err) {
				return ErrAlreadyExists
			}
			return fmt.Errorf("failed to execute batch statement: %w", err)
		}
	}

	return tx.Commit()
}
