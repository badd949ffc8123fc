package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/devfolio/portfolio-backend/internal/db"
	"github.com/devfolio/portfolio-backend/internal/db/models"
)

// AdminUserRepository handles admin_users table operations
type AdminUserRepository struct {
	store db.Store
}

// NewAdminUserRepository creates a new AdminUserRepository
func NewAdminUserRepository(store db.Store) *AdminUserRepository {
	return &AdminUserRepository{store: store}
}

// GetByEmail retrieves an admin user by their normalized (lower-cased) email;
// db.ErrNotFound when no such account exists.
func (r *AdminUserRepository) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM admin_users
		WHERE email = ?
	`
	user := &models.AdminUser{}
	if err := r.store.QueryOne(ctx, user, query, email); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID retrieves an admin user by id; db.ErrNotFound when absent.
func (r *AdminUserRepository) GetByID(ctx context.Context, id int64) (*models.AdminUser, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM admin_users
		WHERE id = ?
	`
	user := &models.AdminUser{}
	if err := r.store.QueryOne(ctx, user, query, id); err != nil {
		return nil, err
	}
	return user, nil
}

// Create provisions an admin account. The email must already be normalized;
// a taken email surfaces as db.ErrAlreadyExists rather than a generic
// failure so the provisioning CLI can report it precisely.
func (r *AdminUserRepository) Create(ctx context.Context, email, passwordHash string) (*models.AdminUser, error) {
	query := `
		INSERT INTO admin_users (email, password_hash, created_at)
		VALUES (?, ?, ?)
	`
	res, err := r.store.Update(ctx, query, email, passwordHash, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, res.LastInsertID)
}

// UpdatePasswordHash replaces an account's password hash; db.ErrNotFound
// when the email is unknown. Used by the provisioning CLI's reset command.
func (r *AdminUserRepository) UpdatePasswordHash(ctx context.Context, email, passwordHash string) error {
	res, err := r.store.Update(ctx, `UPDATE admin_users SET password_hash = ? WHERE email = ?`, passwordHash, email)
	if err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}
	if res.Changes == 0 {
		return db.ErrNotFound
	}
	return nil
}

// Count returns the number of provisioned admin accounts.
func (r *AdminUserRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.store.QueryOne(ctx, &total, `SELECT COUNT(*) FROM admin_users`); err != nil {
		return 0, fmt.Errorf("failed to count admin users: %w", err)
	}
	return total, nil
}
