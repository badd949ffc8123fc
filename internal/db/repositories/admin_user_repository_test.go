package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/devfolio/portfolio-backend/internal/db"
)

var adminUserCols = []string{"id", "email", "password_hash", "created_at"}

func newAdminUserRepo(t *testing.T) (*AdminUserRepository, sqlmock.Sqlmock) {
	t.Helper()
	store, mock := newTestStore(t)
	return NewAdminUserRepository(store), mock
}

func TestAdminUserGetByEmail_Found(t *testing.T) {
	repo, mock := newAdminUserRepo(t)
	mock.ExpectQuery("SELECT .* FROM admin_users.*WHERE email").
		WithArgs("admin@example.com").
		WillReturnRows(sqlmock.NewRows(adminUserCols).
			AddRow(1, "admin@example.com", "$2a$12$fakehash", time.Now()))

	user, err := repo.GetByEmail(context.Background(), "admin@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Email != "admin@example.com" {
		t.Errorf("Email = %q, want admin@example.com", user.Email)
	}
	if user.PasswordHash == "" {
		t.Error("PasswordHash is empty")
	}
}

func TestAdminUserGetByEmail_NotFound(t *testing.T) {
	repo, mock := newAdminUserRepo(t)
	mock.ExpectQuery("SELECT .* FROM admin_users.*WHERE email").
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows(adminUserCols))

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, db.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestAdminUserCreate_Duplicate(t *testing.T) {
	repo, mock := newAdminUserRepo(t)
	mock.ExpectExec("INSERT INTO admin_users").
		WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: admin_users.email"))

	_, err := repo.Create(context.Background(), "admin@example.com", "$2a$12$fakehash")
	if !errors.Is(err, db.ErrAlreadyExists) {
		t.Errorf("error = %v, want ErrAlreadyExists", err)
	}
}

func TestAdminUserCreate(t *testing.T) {
	repo, mock := newAdminUserRepo(t)
	mock.ExpectExec("INSERT INTO admin_users").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery("SELECT .* FROM admin_users.*WHERE id").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(adminUserCols).
			AddRow(5, "new@example.com", "$2a$12$fakehash", time.Now()))

	user, err := repo.Create(context.Background(), "new@example.com", "$2a$12$fakehash")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != 5 {
		t.Errorf("created ID = %d, want 5", user.ID)
	}
}

func TestAdminUserUpdatePasswordHash_NotFound(t *testing.T) {
	repo, mock := newAdminUserRepo(t)
	mock.ExpectExec("UPDATE admin_users").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePasswordHash(context.Background(), "nobody@example.com", "$2a$12$newhash")
	if !errors.Is(err, db.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestAdminUserCount(t *testing.T) {
	repo, mock := newAdminUserRepo(t)
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	total, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 {
		t.Errorf("Count = %d, want 1", total)
	}
}
