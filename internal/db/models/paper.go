package models

import "time"

// Paper entry types.
const (
	PaperTypePaper = "paper"
	PaperTypeBlog  = "blog"
)

// ValidPaperType reports whether t is one of the allowed paper types.
func ValidPaperType(t string) bool {
	return t == PaperTypePaper || t == PaperTypeBlog
}

// Paper represents a published paper or external blog post listed on the
// site. Date is the publication date as YYYY-MM-DD; listing order is by this
// field, newest first.
type Paper struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Authors     string    `db:"authors" json:"authors"`
	Date        string    `db:"date" json:"date"`
	URL         string    `db:"url" json:"url"`
	Description *string   `db:"description" json:"description"`
	Type        string    `db:"type" json:"type"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}
