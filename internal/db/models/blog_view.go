package models

import "time"

// BlogView is the per-slug view counter. Rows are created on first view and
// only ever incremented afterwards; nothing deletes or decrements them.
type BlogView struct {
	Slug         string    `db:"slug" json:"slug"`
	ViewCount    int64     `db:"view_count" json:"viewCount"`
	LastViewedAt time.Time `db:"last_viewed_at" json:"lastViewedAt"`
}
