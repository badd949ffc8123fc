package admin

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devfolio/portfolio-backend/internal/content"
	"github.com/devfolio/portfolio-backend/internal/db/repositories"
)

// StatsHandlers serves the admin dashboard summary.
type StatsHandlers struct {
	papers *repositories.PaperRepository
	reads  *repositories.WeeklyReadRepository
	views  *repositories.BlogViewRepository
	posts  content.Index
	logger *slog.Logger
}

// NewStatsHandlers creates the dashboard handlers.
func NewStatsHandlers(
	papers *repositories.PaperRepository,
	reads *repositories.WeeklyReadRepository,
	views *repositories.BlogViewRepository,
	posts content.Index,
	logger *slog.Logger,
) *StatsHandlers {
	return &StatsHandlers{papers: papers, reads: reads, views: views, posts: posts, logger: logger}
}

// Dashboard handles GET /admin/dashboard behind the session guard. It
// returns content counts plus per-post view counts for every published post.
func (h *StatsHandlers) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	paperCount, err := h.papers.Count(ctx, "")
	if err != nil {
		h.logger.Error("failed to count papers for dashboard", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	readCount, err := h.reads.Count(ctx, "")
	if err != nil {
		h.logger.Error("failed to count weekly reads for dashboard", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	// View counts are best-effort: a failed read for one slug shows as zero
	// rather than failing the whole dashboard.
	views := gin.H{}
	if lister, ok := h.posts.(interface{ Slugs() []string }); ok {
		for _, slug := range lister.Slugs() {
			count, err := h.views.GetCount(ctx, slug)
			if err != nil {
				h.logger.Warn("failed to read view count", "slug", slug, "error", err)
				count = 0
			}
			views[slug] = count
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"papers":      paperCount,
		"weeklyReads": readCount,
		"blogViews":   views,
	})
}
