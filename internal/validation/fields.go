// Package validation checks user-supplied field values before they reach the
// repositories. Validators return a map of field name to message so handlers
// can hand the whole set back to the form UI in one response.
package validation

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/devfolio/portfolio-backend/internal/db/models"
)

// Field length caps. Generous for real content, tight enough to stop abuse.
const (
	MaxTitleLength       = 500
	MaxAuthorsLength     = 500
	MaxURLLength         = 2000
	MaxDescriptionLength = 5000
	MaxEmailLength       = 320

	// Contact form bounds.
	MinContactNameLength    = 2
	MaxContactNameLength    = 100
	MinContactMessageLength = 10
	MaxContactMessageLength = 5000
	MaxPreferredTimeLength  = 200
)

// Errors collects per-field validation failures.
type Errors map[string]string

// Ok reports whether no field failed.
func (e Errors) Ok() bool { return len(e) == 0 }

// Date checks a YYYY-MM-DD date string.
func Date(value string) error {
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return fmt.Errorf("must be a date in YYYY-MM-DD format")
	}
	return nil
}

// WebURL checks that value is an absolute http or https URL.
func WebURL(value string) error {
	if len(value) > MaxURLLength {
		return fmt.Errorf("must be at most %d characters", MaxURLLength)
	}
	u, err := url.Parse(value)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("must be an absolute http(s) URL")
	}
	return nil
}

// EmailAddress checks value parses as a single RFC 5322 address.
func EmailAddress(value string) error {
	if len(value) > MaxEmailLength {
		return fmt.Errorf("must be at most %d characters", MaxEmailLength)
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return fmt.Errorf("must be a valid email address")
	}
	return nil
}

func required(errs Errors, field, value string, max int) string {
	value = strings.TrimSpace(value)
	if value == "" {
		errs[field] = "is required"
		return value
	}
	if len(value) > max {
		errs[field] = fmt.Sprintf("must be at most %d characters", max)
	}
	return value
}

// PaperInput validates the mutable fields of a paper. description may be nil.
func PaperInput(title, authors, date, rawURL, paperType string, description *string) Errors {
	errs := Errors{}
	required(errs, "title", title, MaxTitleLength)
	required(errs, "authors", authors, MaxAuthorsLength)

	if date == "" {
		errs["date"] = "is required"
	} else if err := Date(date); err != nil {
		errs["date"] = err.Error()
	}

	if rawURL == "" {
		errs["url"] = "is required"
	} else if err := WebURL(rawURL); err != nil {
		errs["url"] = err.Error()
	}

	if !models.ValidPaperType(paperType) {
		errs["type"] = fmt.Sprintf("must be one of: %s, %s", models.PaperTypePaper, models.PaperTypeBlog)
	}

	if description != nil && len(*description) > MaxDescriptionLength {
		errs["description"] = fmt.Sprintf("must be at most %d characters", MaxDescriptionLength)
	}

	return errs
}

// WeeklyReadInput validates the mutable fields of a weekly read. source and
// description may be nil.
func WeeklyReadInput(title, authors, rawURL, category, readDate string, source, description *string) Errors {
	errs := Errors{}
	required(errs, "title", title, MaxTitleLength)
	required(errs, "authors", authors, MaxAuthorsLength)

	if rawURL == "" {
		errs["url"] = "is required"
	} else if err := WebURL(rawURL); err != nil {
		errs["url"] = err.Error()
	}

	if !models.ValidWeeklyReadCategory(category) {
		errs["category"] = "is not a recognized category"
	}

	if readDate == "" {
		errs["readDate"] = "is required"
	} else if err := Date(readDate); err != nil {
		errs["readDate"] = err.Error()
	}

	if source != nil && len(*source) > MaxAuthorsLength {
		errs["source"] = fmt.Sprintf("must be at most %d characters", MaxAuthorsLength)
	}
	if description != nil && len(*description) > MaxDescriptionLength {
		errs["description"] = fmt.Sprintf("must be at most %d characters", MaxDescriptionLength)
	}

	return errs
}

// ContactInput validates a contact form submission. preferredTime is
// optional; the other fields are required and bounded.
func ContactInput(name, email, message, preferredTime string) Errors {
	errs := Errors{}

	bounded(errs, "name", name, MinContactNameLength, MaxContactNameLength)

	if strings.TrimSpace(email) == "" {
		errs["email"] = "is required"
	} else if err := EmailAddress(strings.TrimSpace(email)); err != nil {
		errs["email"] = err.Error()
	}

	bounded(errs, "message", message, MinContactMessageLength, MaxContactMessageLength)

	if len(strings.TrimSpace(preferredTime)) > MaxPreferredTimeLength {
		errs["preferredTime"] = fmt.Sprintf("must be at most %d characters", MaxPreferredTimeLength)
	}

	return errs
}

func bounded(errs Errors, field, value string, min, max int) {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		errs[field] = "is required"
	case len(value) < min:
		errs[field] = fmt.Sprintf("must be at least %d characters", min)
	case len(value) > max:
		errs[field] = fmt.Sprintf("must be at most %d characters", max)
	}
}
