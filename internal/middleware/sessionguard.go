// sessionguard.go gates admin routes behind a valid session cookie.
package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/devfolio/portfolio-backend/internal/auth"
)

// Context keys set by the session guard for downstream handlers.
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
)

// SessionGuard rejects requests without a valid session. API callers get a
// 401 JSON body; browser navigations are redirected to the login page with
// the original path carried in callbackUrl so the flow resumes after login.
func SessionGuard(sessions *auth.SessionManager, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := sessions.FromRequest(c)
		if err != nil {
			if wantsJSON(c) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Authentication required",
				})
				return
			}

			target := loginPath + "?callbackUrl=" + url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Next()
	}
}

// wantsJSON reports whether the caller should get a JSON error instead of a
// redirect. API paths and XHR-style requests qualify; top-level browser
// navigations (Accept: text/html) do not.
func wantsJSON(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	accept := c.GetHeader("Accept")
	if strings.Contains(accept, "application/json") {
		return true
	}
	return c.Request.Method != http.MethodGet
}
