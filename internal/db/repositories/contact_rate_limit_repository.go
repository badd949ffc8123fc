package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/devfolio/portfolio-backend/internal/db"
	"github.com/devfolio/portfolio-backend/internal/db/models"
)

// ContactRateLimitRepository persists per-email contact submission windows.
// Unlike the in-memory login limiter, this state survives process restarts.
type ContactRateLimitRepository struct {
	store db.Store
}

// NewContactRateLimitRepository creates a new ContactRateLimitRepository
func NewContactRateLimitRepository(store db.Store) *ContactRateLimitRepository {
	return &ContactRateLimitRepository{store: store}
}

// Get retrieves the rate-limit record for a normalized email;
// db.ErrNotFound when the address has never submitted.
func (r *ContactRateLimitRepository) Get(ctx context.Context, email string) (*models.ContactRateLimit, error) {
	query := `
		SELECT email, submission_count, first_submission_at, last_submission_at, window_reset_at
		FROM contact_rate_limit
		WHERE email = ?
	`
	rec := &models.ContactRateLimit{}
	if err := r.store.QueryOne(ctx, rec, query, email); err != nil {
		return nil, err
	}
	return rec, nil
}

// RecordSubmission counts one submission for email in a single upsert.
// A missing record starts a fresh window ending at now+window. An existing
// record whose window has elapsed (now past window_reset_at) is reset to a
// fresh window with count 1; an active record is incremented in place.
//
// Timestamps are stored in UTC, so the text comparison the CASE expressions
// perform is equivalent to a chronological one on both backends.
func (r *ContactRateLimitRepository) RecordSubmission(ctx context.Context, email string, now time.Time, window time.Duration) error {
	now = now.UTC()
	resetAt := now.Add(window)

	query := `
		INSERT INTO contact_rate_limit (email, submission_count, first_submission_at, last_submission_at, window_reset_at)
		VALUES (?, 1, ?, ?, ?)
		ON CONFLICT (email) DO UPDATE SET
			submission_count = CASE
				WHEN excluded.last_submission_at >= contact_rate_limit.window_reset_at THEN 1
				ELSE contact_rate_limit.submission_count + 1
			END,
			first_submission_at = CASE
				WHEN excluded.last_submission_at >= contact_rate_limit.window_reset_at THEN excluded.first_submission_at
				ELSE contact_rate_limit.first_submission_at
			END,
			last_submission_at = excluded.last_submission_at,
			window_reset_at = CASE
				WHEN excluded.last_submission_at >= contact_rate_limit.window_reset_at THEN excluded.window_reset_at
				ELSE contact_rate_limit.window_reset_at
			END
	`
	if _, err := r.store.Update(ctx, query, email, now, now, resetAt); err != nil {
		return fmt.Errorf("failed to record contact submission: %w", err)
	}
	return nil
}
