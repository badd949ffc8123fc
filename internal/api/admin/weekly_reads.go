package admin

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/devfolio/portfolio-backend/internal/db"
	"github.com/devfolio/portfolio-backend/internal/db/models"
	"github.com/devfolio/portfolio-backend/internal/db/repositories"
	"github.com/devfolio/portfolio-backend/internal/sanitize"
	"github.com/devfolio/portfolio-backend/internal/validation"
)

// WeeklyReadHandlers serves the weekly-read mutations behind the session guard.
type WeeklyReadHandlers struct {
	reads  *repositories.WeeklyReadRepository
	logger *slog.Logger
}

// NewWeeklyReadHandlers creates the admin weekly-read handlers.
func NewWeeklyReadHandlers(reads *repositories.WeeklyReadRepository, logger *slog.Logger) *WeeklyReadHandlers {
	return &WeeklyReadHandlers{reads: reads, logger: logger}
}

type weeklyReadRequest struct {
	Title       string  `json:"title"`
	Authors     string  `json:"authors"`
	Source      *string `json:"source"`
	URL         string  `json:"url"`
	Description *string `json:"description"`
	Category    string  `json:"category"`
	ReadDate    string  `json:"readDate"`
}

func (r *weeklyReadRequest) toModel() (*models.WeeklyRead, validation.Errors) {
	if errs := validation.WeeklyReadInput(r.Title, r.Authors, r.URL, r.Category, r.ReadDate, r.Source, r.Description); !errs.Ok() {
		return nil, errs
	}

	cleanURL, err := sanitize.URL(r.URL)
	if err != nil {
		return nil, validation.Errors{"url": "must be an absolute http(s) URL"}
	}

	read := &models.WeeklyRead{
		Title:    sanitize.Text(r.Title),
		Authors:  sanitize.Text(r.Authors),
		URL:      cleanURL,
		Category: r.Category,
		ReadDate: strings.TrimSpace(r.ReadDate),
	}
	if r.Source != nil {
		src := sanitize.Text(*r.Source)
		read.Source = &src
	}
	if r.Description != nil {
		desc := sanitize.Description(*r.Description)
		read.Description = &desc
	}
	return read, nil
}

// Create handles POST /api/weekly-reads.
func (h *WeeklyReadHandlers) Create(c *gin.Context) {
	var req weeklyReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	read, errs := req.toModel()
	if errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": errs})
		return
	}

	created, err := h.reads.Create(c.Request.Context(), read)
	if err != nil {
		h.logger.Error("failed to create weekly read", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create weekly read"})
		return
	}

	h.logger.Info("weekly read created", "id", created.ID, "title", created.Title)
	c.JSON(http.StatusCreated, gin.H{"weeklyRead": created})
}

// Update handles PUT /api/weekly-reads/:id.
func (h *WeeklyReadHandlers) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	var req weeklyReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	read, errs := req.toModel()
	if errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": errs})
		return
	}
	read.ID = id

	updated, err := h.reads.Update(c.Request.Context(), read)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Weekly read not found"})
			return
		}
		h.logger.Error("failed to update weekly read", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update weekly read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"weeklyRead": updated})
}

// Delete handles DELETE /api/weekly-reads/:id.
func (h *WeeklyReadHandlers) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	deleted, err := h.reads.Delete(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete weekly read", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete weekly read"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Weekly read not found"})
		return
	}

	h.logger.Info("weekly read deleted", "id", id)
	c.JSON(http.StatusOK, gin.H{"message": "Weekly read deleted"})
}
