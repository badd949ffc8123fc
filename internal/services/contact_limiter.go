// Package services holds domain logic that sits between HTTP handlers and
// repositories.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/devfolio/portfolio-backend/internal/db"
	"github.com/devfolio/portfolio-backend/internal/db/models"
	"github.com/devfolio/portfolio-backend/internal/telemetry"
)

// contactLimitStore is the repository surface the limiter needs.
type contactLimitStore interface {
	Get(ctx context.Context, email string) (*models.ContactRateLimit, error)
	RecordSubmission(ctx context.Context, email string, now time.Time, window time.Duration) error
}

// ContactDecision is the outcome of a rate limit check.
type ContactDecision struct {
	Allowed bool
	// Remaining is how many submissions are left in the window after the
	// current one, when allowed.
	Remaining int
	// ResetAt is when the window expires. Zero when no window is active.
	ResetAt time.Time
	// Message is a human-readable rejection reason suitable for the form UI.
	Message string
}

// ContactLimiter enforces the per-email contact form quota. State lives in
// the database so the limit survives restarts and applies across instances.
//
// Check and Record are deliberately separate: the submission is only recorded
// after the email has actually been dispatched, so a failed send does not
// consume quota.
type ContactLimiter struct {
	store  contactLimitStore
	max    int
	window time.Duration
	logger *slog.Logger

	// now is swapped in tests to pin the clock.
	now func() time.Time
}

// NewContactLimiter creates a ContactLimiter.
func NewContactLimiter(store contactLimitStore, max int, window time.Duration, logger *slog.Logger) *ContactLimiter {
	if max <= 0 {
		max = 3
	}
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &ContactLimiter{
		store:  store,
		max:    max,
		window: window,
		logger: logger,
		now:    time.Now,
	}
}

// Check decides whether an email may submit the contact form right now. It
// never blocks a submission because of a storage failure: when the limiter
// state cannot be read, the submission is allowed and the error is logged.
// Losing one spam message is cheaper than losing a real one.
func (l *ContactLimiter) Check(ctx context.Context, email string) ContactDecision {
	now := l.now().UTC()

	record, err := l.store.Get(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ContactDecision{Allowed: true, Remaining: l.max - 1}
		}
		l.logger.Warn("contact rate limit check failed, allowing submission", "error", err)
		return ContactDecision{Allowed: true, Remaining: l.max - 1}
	}

	if record.Expired(now) {
		// Window lapsed; the next Record call resets it.
		return ContactDecision{Allowed: true, Remaining: l.max - 1}
	}

	if record.SubmissionCount >= l.max {
		telemetry.RateLimitRejectionsTotal.WithLabelValues("contact").Inc()
		hours := int(math.Ceil(record.WindowResetAt.Sub(now).Hours()))
		if hours < 1 {
			hours = 1
		}
		return ContactDecision{
			Allowed: false,
			ResetAt: record.WindowResetAt,
			Message: fmt.Sprintf("Too many messages from this address. Try again in about %d hour(s).", hours),
		}
	}

	return ContactDecision{
		Allowed:   true,
		Remaining: l.max - record.SubmissionCount - 1,
		ResetAt:   record.WindowResetAt,
	}
}

// Record counts a successfully dispatched submission against the window.
// Failures are logged, not returned: the mail already went out, so the
// visitor's request succeeded regardless of limiter bookkeeping.
func (l *ContactLimiter) Record(ctx context.Context, email string) {
	if err := l.store.RecordSubmission(ctx, email, l.now().UTC(), l.window); err != nil {
		l.logger.Warn("failed to record contact submission", "email", email, "error", err)
	}
}
