// Package admin implements the authenticated endpoints: login/logout/me and
// the paper and weekly-read mutations behind the session guard.
package admin

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devfolio/portfolio-backend/internal/auth"
	"github.com/devfolio/portfolio-backend/internal/middleware"
)

// AuthHandlers serves the session lifecycle endpoints.
type AuthHandlers struct {
	authenticator *auth.Authenticator
	sessions      *auth.SessionManager
	loginLimiter  *middleware.LoginRateLimiter
	logger        *slog.Logger
}

// NewAuthHandlers creates the auth handlers. loginLimiter is the same
// limiter instance mounted on the login route; a successful login resets the
// caller's counter through it.
func NewAuthHandlers(authenticator *auth.Authenticator, sessions *auth.SessionManager, loginLimiter *middleware.LoginRateLimiter, logger *slog.Logger) *AuthHandlers {
	return &AuthHandlers{
		authenticator: authenticator,
		sessions:      sessions,
		loginLimiter:  loginLimiter,
		logger:        logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login. Every failure returns the same 401
// body regardless of cause.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Malformed bodies get the uniform failure too, not a 400 that would
		// reveal the request was parsed differently.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	subject, err := h.authenticator.Verify(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.Error("credential verification failed", "error", err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := h.sessions.Issue(subject)
	if err != nil {
		h.logger.Error("failed to issue session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	h.sessions.SetCookie(c, token)
	h.loginLimiter.Reset(middleware.ClientKey(c))

	h.logger.Info("admin login", "email", subject.Email)
	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":    subject.ID,
			"email": subject.Email,
		},
	})
}

// Logout handles POST /api/auth/logout. Always succeeds: clearing an absent
// cookie is a no-op.
func (h *AuthHandlers) Logout(c *gin.Context) {
	h.sessions.ClearCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me handles GET /api/auth/me behind the session guard, returning the
// current session's identity.
func (h *AuthHandlers) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":    c.GetString(middleware.ContextUserID),
			"email": c.GetString(middleware.ContextEmail),
		},
	})
}
