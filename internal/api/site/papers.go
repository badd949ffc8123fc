// Package site implements the public, unauthenticated JSON endpoints: the
// paper and weekly-read listings, the contact form, and blog view counting.
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

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// PaperHandlers serves the public paper listing.
type PaperHandlers struct {
	papers *repositories.PaperRepository
	logger *slog.Logger
}

// NewPaperHandlers creates the public paper handlers.
func NewPaperHandlers(papers *repositories.PaperRepository, logger *slog.Logger) *PaperHandlers {
	return &PaperHandlers{papers: papers, logger: logger}
}

// List handles GET /api/papers. Optional query params: type (paper|blog),
// limit, offset. The response carries the page plus total and hasMore so the
// frontend can paginate without a second count request.
func (h *PaperHandlers) List(c *gin.Context) {
	typeFilter := c.Query("type")
	if typeFilter != "" && !models.ValidPaperType(typeFilter) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid type filter"})
		return
	}

	limit, offset, err := pagination(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	papers, err := h.papers.List(c.Request.Context(), typeFilter, limit, offset)
	if err != nil {
		h.logger.Error("failed to list papers", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load papers"})
		return
	}

	total, err := h.papers.Count(c.Request.Context(), typeFilter)
	if err != nil {
		h.logger.Error("failed to count papers", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load papers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"papers":  papers,
		"total":   total,
		"hasMore": offset+len(papers) < total,
	})
}

// pagination reads limit/offset query params. A limit that is not a positive
// integer or an offset that is not a non-negative integer is a client error;
// an over-large limit is clamped rather than rejected.
func pagination(c *gin.Context) (limit, offset int, err error) {
	limit = defaultPageSize
	if raw := c.Query("limit"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n <= 0 {
			return 0, 0, errors.New("limit must be a positive integer")
		}
		limit = n
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	if raw := c.Query("offset"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n < 0 {
			return 0, 0, errors.New("offset must be a non-negative integer")
		}
		offset = n
	}
	return limit, offset, nil
}

// Get handles GET /api/papers/:id.
func (h *PaperHandlers) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	paper, err := h.papers.GetByID(c.Request.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Paper not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to load paper", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load paper"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"paper": paper})
}
