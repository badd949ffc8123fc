package models

import "time"

// Weekly read categories.
const (
	WeeklyReadResearch      = "research"
	WeeklyReadArticle       = "article"
	WeeklyReadBlog          = "blog"
	WeeklyReadDocumentation = "documentation"
)

// ValidWeeklyReadCategory reports whether c is one of the allowed categories.
func ValidWeeklyReadCategory(c string) bool {
	switch c {
	case WeeklyReadResearch, WeeklyReadArticle, WeeklyReadBlog, WeeklyReadDocumentation:
		return true
	}
	return false
}

// WeeklyRead represents one item on the weekly reading list. ReadDate is the
// week's date as YYYY-MM-DD; listings order by it, newest first.
type WeeklyRead struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Authors     string    `db:"authors" json:"authors"`
	Source      *string   `db:"source" json:"source"`
	URL         string    `db:"url" json:"url"`
	Description *string   `db:"description" json:"description"`
	Category    string    `db:"category" json:"category"`
	ReadDate    string    `db:"read_date" json:"readDate"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}
