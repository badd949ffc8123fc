package admin

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/devfolio/portfolio-backend/internal/db"
	"github.com/devfolio/portfolio-backend/internal/db/models"
	"github.com/devfolio/portfolio-backend/internal/db/repositories"
	"github.com/devfolio/portfolio-backend/internal/sanitize"
	"github.com/devfolio/portfolio-backend/internal/validation"
)

// PaperHandlers serves the paper mutations behind the session guard.
type PaperHandlers struct {
	papers *repositories.PaperRepository
	logger *slog.Logger
}

// NewPaperHandlers creates the admin paper handlers.
func NewPaperHandlers(papers *repositories.PaperRepository, logger *slog.Logger) *PaperHandlers {
	return &PaperHandlers{papers: papers, logger: logger}
}

type paperRequest struct {
	Title       string  `json:"title"`
	Authors     string  `json:"authors"`
	Date        string  `json:"date"`
	URL         string  `json:"url"`
	Description *string `json:"description"`
	Type        string  `json:"type"`
}

// toModel validates and sanitizes the request, returning field errors when
// any value is unacceptable.
func (r *paperRequest) toModel() (*models.Paper, validation.Errors) {
	if errs := validation.PaperInput(r.Title, r.Authors, r.Date, r.URL, r.Type, r.Description); !errs.Ok() {
		return nil, errs
	}

	cleanURL, err := sanitize.URL(r.URL)
	if err != nil {
		return nil, validation.Errors{"url": "must be an absolute http(s) URL"}
	}

	paper := &models.Paper{
		Title:   sanitize.Text(r.Title),
		Authors: sanitize.Text(r.Authors),
		Date:    strings.TrimSpace(r.Date),
		URL:     cleanURL,
		Type:    r.Type,
	}
	if r.Description != nil {
		desc := sanitize.Description(*r.Description)
		paper.Description = &desc
	}
	return paper, nil
}

// Create handles POST /api/papers.
func (h *PaperHandlers) Create(c *gin.Context) {
	var req paperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	paper, errs := req.toModel()
	if errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": errs})
		return
	}

	created, err := h.papers.Create(c.Request.Context(), paper)
	if err != nil {
		h.logger.Error("failed to create paper", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create paper"})
		return
	}

	h.logger.Info("paper created", "id", created.ID, "title", created.Title)
	c.JSON(http.StatusCreated, gin.H{"paper": created})
}

// Update handles PUT /api/papers/:id.
func (h *PaperHandlers) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	var req paperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	paper, errs := req.toModel()
	if errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": errs})
		return
	}
	paper.ID = id

	updated, err := h.papers.Update(c.Request.Context(), paper)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Paper not found"})
			return
		}
		h.logger.Error("failed to update paper", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update paper"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"paper": updated})
}

// Delete handles DELETE /api/papers/:id.
func (h *PaperHandlers) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	deleted, err := h.papers.Delete(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete paper", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete paper"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Paper not found"})
		return
	}

	h.logger.Info("paper deleted", "id", id)
	c.JSON(http.StatusOK, gin.H{"message": "Paper deleted"})
}

func parseID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
