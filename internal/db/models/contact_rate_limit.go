package models

import "time"

// ContactRateLimit tracks contact-form submissions for one normalized email
// address. The window runs from FirstSubmissionAt to WindowResetAt; once the
// current time passes WindowResetAt the record is logically expired and the
// next recorded submission starts a fresh window.
type ContactRateLimit struct {
	Email             string    `db:"email" json:"email"`
	SubmissionCount   int       `db:"submission_count" json:"submissionCount"`
	FirstSubmissionAt time.Time `db:"first_submission_at" json:"firstSubmissionAt"`
	LastSubmissionAt  time.Time `db:"last_submission_at" json:"lastSubmissionAt"`
	WindowResetAt     time.Time `db:"window_reset_at" json:"windowResetAt"`
}

// Expired reports whether the window has elapsed as of now.
func (c *ContactRateLimit) Expired(now time.Time) bool {
	return !now.Before(c.WindowResetAt)
}
