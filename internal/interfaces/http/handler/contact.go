package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	contactapp "github.com/sunroad/backend/internal/application/contact"
	"github.com/sunroad/backend/internal/domain/contact"
	"github.com/sunroad/backend/internal/infrastructure/logger"
)

// ContactHandler serves the public contact endpoint. Its wire format is
// fixed: success, rejection, throttling and delivery failure all return
// 200 {"ok":true}; the caller can never distinguish them.
type ContactHandler struct {
	BaseHandler
	submit    *contactapp.SubmitService
	ratelimit []gin.HandlerFunc
}

// NewContactHandler creates a new ContactHandler. The given middleware is
// applied to the public route only (per-IP request cap).
func NewContactHandler(submit *contactapp.SubmitService, ratelimit ...gin.HandlerFunc) *ContactHandler {
	return &ContactHandler{
		submit:    submit,
		ratelimit: ratelimit,
	}
}

// RegisterRoutes registers the public contact route
func (h *ContactHandler) RegisterRoutes(rg *gin.RouterGroup) {
	handlers := append([]gin.HandlerFunc{}, h.ratelimit...)
	handlers = append(handlers, h.Submit)
	rg.POST("/contact", handlers...)
}

// ContactRequest is the public contact submission payload
type ContactRequest struct {
	ArtistHandle   string `json:"artist_handle"`
	FromName       string `json:"from_name"`
	FromEmail      string `json:"from_email"`
	Subject        string `json:"subject"`
	Message        string `json:"message"`
	TurnstileToken string `json:"turnstile_token"`
}

// Submit handles POST /api/v1/contact
func (h *ContactHandler) Submit(c *gin.Context) {
	var req ContactRequest
	// A bind failure leaves the request zero-valued; field validation then
	// reports the first missing field, keeping the error code set closed.
	_ = c.ShouldBindJSON(&req)

	sub := contact.Submission{
		ArtistHandle:   req.ArtistHandle,
		FromName:       req.FromName,
		FromEmail:      req.FromEmail,
		Subject:        req.Subject,
		Message:        req.Message,
		TurnstileToken: req.TurnstileToken,
		RemoteIP:       c.ClientIP(),
		UserAgent:      c.Request.UserAgent(),
	}

	result, err := h.submit.Submit(c.Request.Context(), sub)
	if err != nil {
		logger.FromGinContext(c).Error("Contact submission failed internally", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	switch result.Status {
	case contactapp.ResultInvalid:
		c.JSON(http.StatusBadRequest, gin.H{"error": result.ErrorCode})
	case contactapp.ResultUnavailable:
		c.JSON(http.StatusNotFound, gin.H{"error": contact.CodeContactUnavailable})
	default:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
