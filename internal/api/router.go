// Package api wires together all HTTP routes for the portfolio backend.
//
// Route grouping:
//   - /api/papers, /api/weekly-reads (GET), /api/contact, and the blog view
//     endpoints are public; the frontend calls them without credentials.
//   - Mutations on /api/papers and /api/weekly-reads, /api/auth/me, and
//     /admin/* require a valid session cookie and pass the CSRF origin check.
//   - /api/auth/login sits behind the per-IP login rate limiter.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devfolio/portfolio-backend/internal/api/admin"
	"github.com/devfolio/portfolio-backend/internal/api/site"
	"github.com/devfolio/portfolio-backend/internal/auth"
	"github.com/devfolio/portfolio-backend/internal/config"
	"github.com/devfolio/portfolio-backend/internal/content"
	"github.com/devfolio/portfolio-backend/internal/db"
	"github.com/devfolio/portfolio-backend/internal/db/repositories"
	"github.com/devfolio/portfolio-backend/internal/email"
	"github.com/devfolio/portfolio-backend/internal/middleware"
	"github.com/devfolio/portfolio-backend/internal/services"
)

// Version is the reported application version, overridable at build time
// with -ldflags "-X ...api.Version=v1.2.3".
var Version = "0.1.0"

// BackgroundServices holds resources that must be stopped during graceful
// shutdown. The caller (cmd/server) calls Shutdown after the HTTP server has
// drained.
type BackgroundServices struct {
	loginLimiter *middleware.LoginRateLimiter
	postIndex    *content.DirIndex
}

// Shutdown stops all background goroutines.
func (bg *BackgroundServices) Shutdown() {
	slog.Info("stopping background services")
	if bg.loginLimiter != nil {
		bg.loginLimiter.Stop()
	}
	if bg.postIndex != nil {
		if err := bg.postIndex.Close(); err != nil {
			slog.Warn("failed to close content index", "error", err)
		}
	}
	slog.Info("all background services stopped")
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg *config.Config, store db.Store, sender email.Sender, logger *slog.Logger) (*gin.Engine, *BackgroundServices) {
	router := gin.New()

	// Repositories
	paperRepo := repositories.NewPaperRepository(store)
	weeklyReadRepo := repositories.NewWeeklyReadRepository(store)
	adminUserRepo := repositories.NewAdminUserRepository(store)
	blogViewRepo := repositories.NewBlogViewRepository(store)
	contactLimitRepo := repositories.NewContactRateLimitRepository(store)

	// Domain services
	postIndex := content.NewDirIndex(cfg.Content.PostsDir, logger)
	authenticator := auth.NewAuthenticator(adminUserRepo)
	sessions := auth.NewSessionManager(
		cfg.Session.Secret,
		cfg.Session.Issuer,
		cfg.Session.TTL,
		cfg.Session.CookieName,
		cfg.Server.IsProduction(),
	)
	contactLimiter := services.NewContactLimiter(
		contactLimitRepo,
		cfg.Security.ContactRateLimit.MaxSubmissions,
		cfg.Security.ContactRateLimit.Window,
		logger,
	)
	loginLimiter := middleware.NewLoginRateLimiter(middleware.LoginRateLimitConfig{
		MaxAttempts:   cfg.Security.LoginRateLimit.MaxAttempts,
		Window:        cfg.Security.LoginRateLimit.Window,
		SweepInterval: cfg.Security.LoginRateLimit.SweepInterval,
	})

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware(
		middleware.DefaultSecurityHeadersConfig(cfg.Server.IsProduction())))
	router.Use(middleware.CSRFMiddleware(allowedHosts(cfg)...))

	// System endpoints
	router.GET("/health", healthCheckHandler(store))
	router.GET("/version", versionHandler())

	// Handlers
	sitePapers := site.NewPaperHandlers(paperRepo, logger)
	siteReads := site.NewWeeklyReadHandlers(weeklyReadRepo, logger)
	siteViews := site.NewViewHandlers(blogViewRepo, postIndex, logger)
	siteContact := site.NewContactHandlers(contactLimiter, sender, logger)

	authHandlers := admin.NewAuthHandlers(authenticator, sessions, loginLimiter, logger)
	adminPapers := admin.NewPaperHandlers(paperRepo, logger)
	adminReads := admin.NewWeeklyReadHandlers(weeklyReadRepo, logger)
	adminStats := admin.NewStatsHandlers(paperRepo, weeklyReadRepo, blogViewRepo, postIndex, logger)

	guard := middleware.SessionGuard(sessions, "/admin/login")

	// Public API
	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/papers", sitePapers.List)
		apiGroup.GET("/papers/:id", sitePapers.Get)
		apiGroup.GET("/weekly-reads", siteReads.List)
		apiGroup.GET("/weekly-reads/:id", siteReads.Get)
		apiGroup.POST("/contact", siteContact.Submit)
		apiGroup.GET("/blog/:slug/view", siteViews.Get)
		apiGroup.POST("/blog/:slug/view", siteViews.Record)

		// Session lifecycle
		apiGroup.POST("/auth/login",
			middleware.LoginRateLimitMiddleware(loginLimiter),
			authHandlers.Login)
		apiGroup.POST("/auth/logout", authHandlers.Logout)
		apiGroup.GET("/auth/me", guard, authHandlers.Me)

		// Content mutations require a session
		apiGroup.POST("/papers", guard, adminPapers.Create)
		apiGroup.PUT("/papers/:id", guard, adminPapers.Update)
		apiGroup.DELETE("/papers/:id", guard, adminPapers.Delete)

		apiGroup.POST("/weekly-reads", guard, adminReads.Create)
		apiGroup.PUT("/weekly-reads/:id", guard, adminReads.Update)
		apiGroup.DELETE("/weekly-reads/:id", guard, adminReads.Delete)
	}

	// Admin pages API
	adminGroup := router.Group("/admin")
	adminGroup.Use(guard)
	{
		adminGroup.GET("/dashboard", adminStats.Dashboard)
	}

	bg := &BackgroundServices{
		loginLimiter: loginLimiter,
		postIndex:    postIndex,
	}

	return router, bg
}

// allowedHosts lists hosts the CSRF check accepts in addition to the
// request's own Host header: the public URL's host (for proxies that rewrite
// Host) plus localhost for development.
func allowedHosts(cfg *config.Config) []string {
	hosts := []string{"localhost", "127.0.0.1"}
	if u, err := url.Parse(cfg.Server.GetPublicURL()); err == nil && u.Hostname() != "" {
		hosts = append(hosts, u.Hostname())
	}
	return hosts
}

// healthCheckHandler reports service health including database connectivity.
func healthCheckHandler(store db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var one int
		if err := store.QueryOne(c.Request.Context(), &one, "SELECT 1"); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"backend": store.Backend(),
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// versionHandler returns the application version.
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version": Version,
		})
	}
}

// LoggerMiddleware emits one structured slog record per request. The output
// format (text or JSON) follows the handler installed by telemetry.SetupLogger.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		requestID, _ := c.Get(middleware.RequestIDKey)
		slog.LogAttrs(
			c.Request.Context(),
			slog.LevelInfo,
			"http request",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.Int("status", c.Writer.Status()),
			slog.Int("size", c.Writer.Size()),
			slog.Duration("latency", time.Since(start)),
			slog.String("ip", c.ClientIP()),
			slog.String("request_id", fmt.Sprintf("%v", requestID)),
			slog.String("user_agent", c.Request.UserAgent()),
		)
	}
}
