package billing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"

	"github.com/sunroad/backend/internal/domain/artist"
	"github.com/sunroad/backend/internal/domain/shared"
	infrabilling "github.com/sunroad/backend/internal/infrastructure/billing"
)

// StripeWebhookService handles Stripe webhook events that move artists
// between plans.
type StripeWebhookService struct {
	config      *infrabilling.StripeConfig
	artists     artist.Repository
	idempotency shared.IdempotencyStore
	logger      *zap.Logger
}

// StripeWebhookServiceConfig contains dependencies for StripeWebhookService
type StripeWebhookServiceConfig struct {
	Config      *infrabilling.StripeConfig
	Artists     artist.Repository
	Idempotency shared.IdempotencyStore
	Logger      *zap.Logger
}

// NewStripeWebhookService creates a new StripeWebhookService
func NewStripeWebhookService(cfg StripeWebhookServiceConfig) *StripeWebhookService {
	return &StripeWebhookService{
		config:      cfg.Config,
		artists:     cfg.Artists,
		idempotency: cfg.Idempotency,
		logger:      cfg.Logger,
	}
}

// WebhookResult contains the result of processing a webhook
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Processed bool   `json:"processed"`
	Message   string `json:"message,omitempty"`
}

// ProcessWebhook verifies, dedupes and dispatches a Stripe webhook event
func (s *StripeWebhookService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.config.WebhookSecret)
	if err != nil {
		s.logger.Error("Failed to verify webhook signature", zap.Error(err))
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	result := &WebhookResult{
		EventID:   event.ID,
		EventType: string(event.Type),
	}

	// Stripe redelivers events; only the first receipt is processed
	first, err := s.idempotency.MarkProcessed(ctx, event.ID, shared.DefaultIdempotencyTTL)
	if err != nil {
		return nil, fmt.Errorf("idempotency check failed: %w", err)
	}
	if !first {
		s.logger.Info("Skipping duplicate webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
		result.Message = "Duplicate event"
		return result, nil
	}

	s.logger.Info("Processing Stripe webhook event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))

	result.Processed = true

	switch event.Type {
	case "checkout.session.completed":
		err = s.handleCheckoutCompleted(ctx, event)
	case "customer.subscription.updated":
		err = s.handleSubscriptionUpdated(ctx, event)
	case "customer.subscription.deleted":
		err = s.handleSubscriptionDeleted(ctx, event)
	default:
		s.logger.Debug("Unhandled webhook event type",
			zap.String("event_type", string(event.Type)))
		result.Processed = false
		result.Message = "Event type not handled"
	}

	if err != nil {
		s.logger.Error("Failed to process webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		result.Processed = false
		result.Message = err.Error()
		return result, err
	}

	return result, nil
}

// handleCheckoutCompleted applies the purchased plan from session metadata
func (s *StripeWebhookService) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}

	target, err := s.findArtist(ctx, customerIDOf(session.Customer))
	if err != nil {
		return err
	}
	if target == nil {
		return nil
	}

	plan := artist.Plan(session.Metadata["plan"])
	if !plan.IsValid() {
		s.logger.Warn("Checkout session carries unknown plan, skipping",
			zap.String("session_id", session.ID),
			zap.String("plan", session.Metadata["plan"]))
		return nil
	}

	if customerID := customerIDOf(session.Customer); customerID != "" && target.StripeCustomerID != customerID {
		if err := s.artists.UpdateStripeCustomerID(ctx, target.ID, customerID); err != nil {
			return fmt.Errorf("failed to record stripe customer: %w", err)
		}
	}

	s.logger.Info("Applying plan from completed checkout",
		zap.String("artist_id", target.ID.String()),
		zap.String("plan", string(plan)))

	return s.artists.UpdatePlan(ctx, target.ID, plan)
}

// handleSubscriptionUpdated keeps the plan in sync with the subscription
func (s *StripeWebhookService) handleSubscriptionUpdated(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to unmarshal subscription: %w", err)
	}

	target, err := s.findArtist(ctx, customerIDOf(sub.Customer))
	if err != nil {
		return err
	}
	if target == nil {
		return nil
	}

	// A subscription that is no longer collectible drops to free
	switch sub.Status {
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusUnpaid, stripe.SubscriptionStatusIncompleteExpired:
		return s.artists.UpdatePlan(ctx, target.ID, artist.PlanFree)
	}

	plan := artist.Plan(sub.Metadata["plan"])
	if !plan.IsValid() {
		s.logger.Debug("Subscription update without a known plan, skipping",
			zap.String("subscription_id", sub.ID))
		return nil
	}
	return s.artists.UpdatePlan(ctx, target.ID, plan)
}

// handleSubscriptionDeleted returns the artist to the free plan
func (s *StripeWebhookService) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to unmarshal subscription: %w", err)
	}

	target, err := s.findArtist(ctx, customerIDOf(sub.Customer))
	if err != nil {
		return err
	}
	if target == nil {
		return nil
	}

	s.logger.Info("Subscription deleted, reverting to free plan",
		zap.String("artist_id", target.ID.String()))

	return s.artists.UpdatePlan(ctx, target.ID, artist.PlanFree)
}

// findArtist resolves the event's artist by Stripe customer ID. A nil
// artist with nil error means the event is not ours; receipt is
// acknowledged so Stripe stops retrying.
func (s *StripeWebhookService) findArtist(ctx context.Context, customerID string) (*artist.Artist, error) {
	if customerID == "" {
		s.logger.Warn("Webhook event has no customer ID, skipping")
		return nil, nil
	}

	target, err := s.artists.FindByStripeCustomerID(ctx, customerID)
	if err != nil {
		if err == shared.ErrNotFound {
			s.logger.Warn("No artist for Stripe customer, skipping",
				zap.String("customer_id", customerID))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find artist: %w", err)
	}
	return target, nil
}

func customerIDOf(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}
