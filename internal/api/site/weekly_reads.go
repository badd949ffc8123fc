package site

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/devfolio/portfolio-backend/internal/db"
	"github.com/devfolio/portfolio-backend/internal/db/models"
	"github.com/devfolio/portfolio-backend/internal/db/repositories"
)

// WeeklyReadHandlers serves the public weekly-reads listing.
type WeeklyReadHandlers struct {
	reads  *repositories.WeeklyReadRepository
	logger *slog.Logger
}

// NewWeeklyReadHandlers creates the public weekly-read handlers.
func NewWeeklyReadHandlers(reads *repositories.WeeklyReadRepository, logger *slog.Logger) *WeeklyReadHandlers {
	return &WeeklyReadHandlers{reads: reads, logger: logger}
}

// List handles GET /api/weekly-reads. Optional query params: category,
// limit, offset.
func (h *WeeklyReadHandlers) List(c *gin.Context) {
	category := c.Query("category")
	if category != "" && !models.ValidWeeklyReadCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category filter"})
		return
	}

	limit, offset, err := pagination(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reads, err := h.reads.List(c.Request.Context(), category, limit, offset)
	if err != nil {
		h.logger.Error("failed to list weekly reads", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load weekly reads"})
		return
	}

	total, err := h.reads.Count(c.Request.Context(), category)
	if err != nil {
		h.logger.Error("failed to count weekly reads", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load weekly reads"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"weeklyReads": reads,
		"total":       total,
		"hasMore":     offset+len(reads) < total,
	})
}

// Get handles GET /api/weekly-reads/:id.
func (h *WeeklyReadHandlers) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	read, err := h.reads.GetByID(c.Request.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Weekly read not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to load weekly read", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load weekly read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"weeklyRead": read})
}
