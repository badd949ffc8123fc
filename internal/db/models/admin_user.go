// Package models defines the persisted entities of the portfolio backend.
// Struct fields carry db tags for sqlx scanning and json tags matching the
// field names the public API exposes. Nullable columns map to pointer fields.
package models

import "time"

// AdminUser represents an account allowed into the admin panel. Accounts are
// provisioned with cmd/admincli; the HTTP surface only ever reads them during
// credential verification.
type AdminUser struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
