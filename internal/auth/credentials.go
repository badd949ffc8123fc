// Package auth implements admin credential verification and the JWT-backed
// session layer. Credential checks are deliberately uniform: every failure
// path (malformed input, unknown email, wrong password) surfaces the same
// ErrInvalidCredentials so responses leak nothing about which part failed.
package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/devfolio/portfolio-backend/internal/db/models"
	"github.com/devfolio/portfolio-backend/internal/sanitize"
)

// BcryptCost is the work factor used when hashing admin passwords.
const BcryptCost = 12

// MinPasswordLength is the minimum accepted password length, enforced on
// both login and account creation.
const MinPasswordLength = 8

// ErrInvalidCredentials is the single failure mode for credential checks.
var ErrInvalidCredentials = errors.New("invalid credentials")

// dummyHash is a valid bcrypt hash of a throwaway string. When the email is
// unknown we still run a bcrypt comparison against it so the miss path costs
// roughly the same as the hit path.
const dummyHash = "$2a$12$K2CtDP7zSGOKgjXjxD8eIeF9DK7JFd0X5eoUqLJw8M26ssG4ZKfvy"

// UserStore is the slice of the admin user repository that credential
// verification needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
}

// Subject identifies a successfully authenticated admin.
type Subject struct {
	ID    int64
	Email string
}

// Authenticator verifies admin credentials against stored bcrypt hashes.
type Authenticator struct {
	users UserStore
}

// NewAuthenticator creates an Authenticator backed by the given user store.
func NewAuthenticator(users UserStore) *Authenticator {
	return &Authenticator{users: users}
}

// Verify checks an email/password pair. The email is normalized (trimmed,
// lowercased) before lookup. On any failure it returns ErrInvalidCredentials;
// callers must not distinguish why.
func (a *Authenticator) Verify(ctx context.Context, email, password string) (*Subject, error) {
	email = sanitize.Email(email)
	password = strings.TrimSpace(password)

	if email == "" || !strings.Contains(email, "@") || len(password) < MinPasswordLength {
		return nil, ErrInvalidCredentials
	}

	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		// Burn a comparison so unknown emails are not detectable by timing.
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &Subject{ID: user.ID, Email: user.Email}, nil
}

// HashPassword hashes a password at the standard cost. Used by the admin CLI
// when creating or resetting accounts.
func HashPassword(password string) (string, error) {
	if len(strings.TrimSpace(password)) < MinPasswordLength {
		return "", ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
