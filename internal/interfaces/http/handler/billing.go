package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	billingapp "github.com/sunroad/backend/internal/application/billing"
	"github.com/sunroad/backend/internal/domain/artist"
	"github.com/sunroad/backend/internal/infrastructure/logger"
	"github.com/sunroad/backend/internal/interfaces/http/dto"
	"github.com/sunroad/backend/internal/interfaces/http/middleware"
)

// maxWebhookBody caps how much of a webhook payload is read. Stripe events
// are small; anything larger is not a legitimate delivery.
const maxWebhookBody = 1 << 20

// BillingHandler serves checkout session creation (authenticated) and the
// Stripe webhook endpoint (signature-verified, no bearer token).
type BillingHandler struct {
	BaseHandler
	checkout *billingapp.CheckoutService
	webhook  *billingapp.StripeWebhookService
	auth     gin.HandlerFunc
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(checkout *billingapp.CheckoutService, webhook *billingapp.StripeWebhookService, auth gin.HandlerFunc) *BillingHandler {
	return &BillingHandler{
		checkout: checkout,
		webhook:  webhook,
		auth:     auth,
	}
}

// RegisterRoutes registers the billing routes
func (h *BillingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/billing")
	group.POST("/checkout", h.auth, h.CreateCheckout)
	group.POST("/webhook", h.Webhook)
}

// CheckoutRequest asks for a checkout session moving the artist to a plan
type CheckoutRequest struct {
	Plan string `json:"plan" binding:"required"`
}

// CheckoutResponse carries the hosted checkout session the caller redirects to
type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// CreateCheckout handles POST /api/v1/billing/checkout
func (h *BillingHandler) CreateCheckout(c *gin.Context) {
	userID, ok := middleware.GetAuthUserID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	session, err := h.checkout.CreateCheckout(c.Request.Context(), userID, artist.Plan(req.Plan))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, CheckoutResponse{
		SessionID: session.SessionID,
		URL:       session.URL,
	})
}

// Webhook handles POST /api/v1/billing/webhook. Authentication is the
// Stripe-Signature header; processing errors return 500 so Stripe retries.
func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		h.BadRequest(c, "Failed to read request body")
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "Missing Stripe-Signature header")
		return
	}

	result, err := h.webhook.ProcessWebhook(c.Request.Context(), payload, signature)
	if err != nil {
		if result == nil {
			// Signature or payload problems are the caller's fault
			h.BadRequest(c, "Webhook verification failed")
			return
		}
		logger.FromGinContext(c).Error("Webhook processing failed",
			zap.String("event_id", result.EventID),
			zap.String("event_type", result.EventType),
			zap.Error(err))
		h.InternalError(c, "Webhook processing failed")
		return
	}

	h.Success(c, result)
}
