// Package sanitize provides pure input-cleaning helpers used at the HTTP
// boundary: HTML escaping for user-supplied text, URL allow-listing, and slug
// normalization for the blog view tracker. Nothing in this package touches
// storage or carries state.
package sanitize

import (
	"errors"
	"html"
	"net/url"
	"strings"
)

// ErrEmptySlug is returned when a slug is empty before or after sanitization.
var ErrEmptySlug = errors.New("slug is empty after sanitization")

// Text escapes HTML metacharacters and trims surrounding whitespace. It is
// applied to every free-form string before it is persisted so stored content
// is safe to render without further escaping.
func Text(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}

// Description cleans an optional description field. It collapses internal
// runs of whitespace (pasted text often carries newlines and tabs) in
// addition to the escaping done by Text.
func Description(s string) string {
	return Text(strings.Join(strings.Fields(s), " "))
}

// URL validates that raw parses as an absolute http or https URL with a host
// and returns it trimmed. Anything else (javascript:, data:, relative paths,
// missing host) is rejected.
func URL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", errors.New("url is not parseable")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.New("url scheme must be http or https")
	}
	if u.Host == "" {
		return "", errors.New("url is missing a host")
	}
	return trimmed, nil
}

// Slug reduces raw to the allow-listed slug character set: ASCII letters,
// digits, hyphen, and underscore. Every other byte is stripped, so path
// traversal sections like "../" simply vanish. Returns ErrEmptySlug when the
// input is empty or nothing survives the strip.
func Slug(raw string) (string, error) {
	if raw == "" {
		return "", ErrEmptySlug
	}

	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			b.WriteByte(c)
		}
	}

	if b.Len() == 0 {
		return "", ErrEmptySlug
	}
	return b.String(), nil
}

// Email normalizes an email address for use as a lookup or rate-limit key:
// trimmed and lower-cased. It does not validate format; that is the caller's
// concern.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
