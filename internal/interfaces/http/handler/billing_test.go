package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	billingapp "github.com/sunroad/backend/internal/application/billing"
	"github.com/sunroad/backend/internal/domain/artist"
	infrabilling "github.com/sunroad/backend/internal/infrastructure/billing"
	"github.com/sunroad/backend/internal/infrastructure/cache"
	"github.com/sunroad/backend/internal/interfaces/http/dto"
)

// stubGateway is a stub implementation of billingapp.PaymentGateway
type stubGateway struct {
	customerID string
	session    *infrabilling.CheckoutSession
}

func (s *stubGateway) CreateCustomer(ctx context.Context, input infrabilling.CreateCustomerInput) (string, error) {
	return s.customerID, nil
}

func (s *stubGateway) CreateCheckoutSession(ctx context.Context, input infrabilling.CreateCheckoutSessionInput) (*infrabilling.CheckoutSession, error) {
	return s.session, nil
}

func setupBillingRouter(t *testing.T, owner *artist.Artist, gateway *stubGateway) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	artists := &stubArtistRepo{byAuth: map[uuid.UUID]*artist.Artist{owner.AuthUserID: owner}}
	checkout := billingapp.NewCheckoutService(artists, gateway, &stubDirectory{email: "mira@example.com"}, zap.NewNop())
	webhook := billingapp.NewStripeWebhookService(billingapp.StripeWebhookServiceConfig{
		Config: &infrabilling.StripeConfig{
			SecretKey:     "sk_test_123",
			WebhookSecret: "whsec_test_secret",
		},
		Artists:     artists,
		Idempotency: cache.NewInMemoryIdempotencyStore(),
		Logger:      zap.NewNop(),
	})

	router := gin.New()
	api := router.Group("/api/v1")
	NewBillingHandler(checkout, webhook, authAs(owner.AuthUserID)).RegisterRoutes(api)
	return router
}

func TestBillingHandler_CreateCheckout(t *testing.T) {
	owner := &artist.Artist{
		ID:               uuid.New(),
		AuthUserID:       uuid.New(),
		Handle:           "mira",
		DisplayName:      "Mira Voss",
		Plan:             artist.PlanFree,
		StripeCustomerID: "cus_existing",
	}
	gateway := &stubGateway{session: &infrabilling.CheckoutSession{
		SessionID: "cs_123",
		URL:       "https://checkout.stripe.com/pay/cs_123",
	}}
	router := setupBillingRouter(t, owner, gateway)

	payload, _ := json.Marshal(map[string]string{"plan": "standard"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/checkout", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_123", data["url"])
}

func TestBillingHandler_CreateCheckout_InvalidPlan(t *testing.T) {
	owner := &artist.Artist{ID: uuid.New(), AuthUserID: uuid.New(), Plan: artist.PlanFree}
	router := setupBillingRouter(t, owner, &stubGateway{})

	payload, _ := json.Marshal(map[string]string{"plan": "free"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/checkout", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInvalidInput, resp.Error.Code)
}

func TestBillingHandler_Webhook_MissingSignature(t *testing.T) {
	owner := &artist.Artist{ID: uuid.New(), AuthUserID: uuid.New(), Plan: artist.PlanFree}
	router := setupBillingRouter(t, owner, &stubGateway{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/webhook", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBillingHandler_Webhook_InvalidSignature(t *testing.T) {
	owner := &artist.Artist{ID: uuid.New(), AuthUserID: uuid.New(), Plan: artist.PlanFree}
	router := setupBillingRouter(t, owner, &stubGateway{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/webhook", bytes.NewReader([]byte(`{"type":"checkout.session.completed"}`)))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
