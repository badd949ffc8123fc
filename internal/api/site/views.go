package site

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devfolio/portfolio-backend/internal/content"
	"github.com/devfolio/portfolio-backend/internal/db/repositories"
	"github.com/devfolio/portfolio-backend/internal/sanitize"
	"github.com/devfolio/portfolio-backend/internal/telemetry"
)

// ViewHandlers counts blog post views.
type ViewHandlers struct {
	views  *repositories.BlogViewRepository
	posts  content.Index
	logger *slog.Logger
}

// NewViewHandlers creates the blog view handlers.
func NewViewHandlers(views *repositories.BlogViewRepository, posts content.Index, logger *slog.Logger) *ViewHandlers {
	return &ViewHandlers{views: views, posts: posts, logger: logger}
}

// Record handles POST /api/blog/:slug/view. The slug is sanitized before
// use, and counting only happens for posts that actually exist on disk, so
// crawler probes against arbitrary paths never create rows.
func (h *ViewHandlers) Record(c *gin.Context) {
	slug, err := sanitize.Slug(c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid slug"})
		return
	}

	if !h.posts.Exists(slug) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	count, err := h.views.Increment(c.Request.Context(), slug)
	if err != nil {
		h.logger.Error("failed to record blog view", "slug", slug, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record view"})
		return
	}

	telemetry.BlogViewsTotal.WithLabelValues(slug).Inc()
	c.JSON(http.StatusOK, gin.H{
		"slug":      slug,
		"viewCount": count,
	})
}

// Get handles GET /api/blog/:slug/view, returning the current count without
// incrementing. Unknown but valid slugs read as zero.
func (h *ViewHandlers) Get(c *gin.Context) {
	slug, err := sanitize.Slug(c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid slug"})
		return
	}

	if !h.posts.Exists(slug) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	count, err := h.views.GetCount(c.Request.Context(), slug)
	if err != nil {
		h.logger.Error("failed to read blog view count", "slug", slug, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load view count"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"slug":      slug,
		"viewCount": count,
	})
}
