package site

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devfolio/portfolio-backend/internal/email"
	"github.com/devfolio/portfolio-backend/internal/sanitize"
	"github.com/devfolio/portfolio-backend/internal/services"
	"github.com/devfolio/portfolio-backend/internal/telemetry"
	"github.com/devfolio/portfolio-backend/internal/validation"
)

// ContactHandlers accepts contact form submissions and relays them by email.
type ContactHandlers struct {
	limiter *services.ContactLimiter
	sender  email.Sender
	logger  *slog.Logger
}

// NewContactHandlers creates the contact form handlers.
func NewContactHandlers(limiter *services.ContactLimiter, sender email.Sender, logger *slog.Logger) *ContactHandlers {
	return &ContactHandlers{limiter: limiter, sender: sender, logger: logger}
}

type contactRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Message       string `json:"message"`
	PreferredTime string `json:"preferredTime"`
}

// Submit handles POST /api/contact. Order matters: validate, check the
// quota, send, and only then record the submission against the window, so a
// failed dispatch never consumes quota.
func (h *ContactHandlers) Submit(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if errs := validation.ContactInput(req.Name, req.Email, req.Message, req.PreferredTime); !errs.Ok() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": errs,
		})
		return
	}

	addr := sanitize.Email(req.Email)
	name := sanitize.Text(req.Name)
	message := sanitize.Text(req.Message)
	preferredTime := sanitize.Text(req.PreferredTime)

	decision := h.limiter.Check(c.Request.Context(), addr)
	if !decision.Allowed {
		telemetry.ContactSubmissionsTotal.WithLabelValues("rate_limited").Inc()
		retryAfter := int(time.Until(decision.ResetAt).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":             "Rate limit exceeded",
			"message":           decision.Message,
			"resetAt":           decision.ResetAt.UTC().Format(time.RFC3339),
			"retryAfterSeconds": retryAfter,
		})
		return
	}

	body := fmt.Sprintf("From: %s <%s>\n", name, addr)
	if preferredTime != "" {
		body += fmt.Sprintf("Preferred time: %s\n", preferredTime)
	}
	body += "\n" + message

	err := h.sender.Send(email.Message{
		Name:    name,
		ReplyTo: addr,
		Subject: fmt.Sprintf("Portfolio contact from %s", name),
		Body:    body,
	})
	if err != nil {
		telemetry.ContactSubmissionsTotal.WithLabelValues("error").Inc()
		h.logger.Error("failed to dispatch contact email", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	h.limiter.Record(c.Request.Context(), addr)
	telemetry.ContactSubmissionsTotal.WithLabelValues("sent").Inc()

	c.JSON(http.StatusOK, gin.H{
		"message":   "Message sent",
		"remaining": decision.Remaining,
	})
}
