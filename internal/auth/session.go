package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidSession covers every way a session token can fail validation:
// bad signature, wrong signing method, expired, malformed claims.
var ErrInvalidSession = errors.New("invalid session")

// Claims is the JWT payload carried in the session cookie.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// SessionManager issues and validates session tokens and manages the session
// cookie. Construct one at startup from config; it holds the signing secret
// so nothing else in the process needs it.
type SessionManager struct {
	secret     []byte
	issuer     string
	ttl        time.Duration
	cookieName string
	secureOnly bool
}

// NewSessionManager creates a SessionManager. secureOnly marks issued cookies
// Secure, which should track whether the deployment serves HTTPS.
func NewSessionManager(secret, issuer string, ttl time.Duration, cookieName string, secureOnly bool) *SessionManager {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &SessionManager{
		secret:     []byte(secret),
		issuer:     issuer,
		ttl:        ttl,
		cookieName: cookieName,
		secureOnly: secureOnly,
	}
}

// CookieName returns the name of the session cookie.
func (m *SessionManager) CookieName() string { return m.cookieName }

// TTL returns the session lifetime.
func (m *SessionManager) TTL() time.Duration { return m.ttl }

// Issue signs a session token for the given subject.
func (m *SessionManager) Issue(subject *Subject) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: strconv.FormatInt(subject.ID, 10),
		Email:  subject.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   strconv.FormatInt(subject.ID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Validate parses a session token and returns its claims. Any failure maps
// to ErrInvalidSession.
func (m *SessionManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidSession
	}
	if !token.Valid {
		return nil, ErrInvalidSession
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// SetCookie attaches the session cookie to the response. HttpOnly keeps it
// away from scripts; SameSite=Lax still sends it on top-level navigations so
// the admin dashboard redirect flow works.
func (m *SessionManager) SetCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, token, int(m.ttl.Seconds()), "/", "", m.secureOnly, true)
}

// ClearCookie expires the session cookie immediately.
func (m *SessionManager) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, "", -1, "/", "", m.secureOnly, true)
}

// FromRequest extracts and validates the session from the request cookie.
func (m *SessionManager) FromRequest(c *gin.Context) (*Claims, error) {
	token, err := c.Cookie(m.cookieName)
	if err != nil || token == "" {
		return nil, ErrInvalidSession
	}
	return m.Validate(token)
}
