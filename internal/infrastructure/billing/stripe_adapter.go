package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/customer"
	"go.uber.org/zap"
)

// StripeAdapter implements Stripe billing operations for plan upgrades
type StripeAdapter struct {
	config *StripeConfig
	logger *zap.Logger
}

// NewStripeAdapter creates a new Stripe adapter
func NewStripeAdapter(config *StripeConfig, logger *zap.Logger) (*StripeAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	config.InitStripeClient()

	return &StripeAdapter{
		config: config,
		logger: logger,
	}, nil
}

// CreateCustomerInput contains input for customer creation
type CreateCustomerInput struct {
	ArtistID uuid.UUID
	Email    string
	Name     string
}

// CreateCustomer creates a new customer in Stripe. The artist ID goes into
// metadata so webhook events can be traced back without a DB lookup.
func (a *StripeAdapter) CreateCustomer(ctx context.Context, input CreateCustomerInput) (string, error) {
	a.logger.Debug("Creating Stripe customer",
		zap.String("artist_id", input.ArtistID.String()))

	params := &stripe.CustomerParams{
		Email: stripe.String(input.Email),
		Name:  stripe.String(input.Name),
	}
	params.Metadata = map[string]string{
		"artist_id": input.ArtistID.String(),
	}

	cust, err := customer.New(params)
	if err != nil {
		a.logger.Error("Failed to create Stripe customer",
			zap.String("artist_id", input.ArtistID.String()),
			zap.Error(err))
		return "", fmt.Errorf("stripe: failed to create customer: %w", err)
	}

	a.logger.Info("Created Stripe customer",
		zap.String("artist_id", input.ArtistID.String()),
		zap.String("customer_id", cust.ID))

	return cust.ID, nil
}

// CreateCheckoutSessionInput contains input for checkout session creation
type CreateCheckoutSessionInput struct {
	ArtistID   uuid.UUID
	CustomerID string
	Plan       string
}

// CheckoutSession is the result of a created checkout session
type CheckoutSession struct {
	SessionID string
	URL       string
}

// CreateCheckoutSession creates a subscription checkout session for a plan
func (a *StripeAdapter) CreateCheckoutSession(ctx context.Context, input CreateCheckoutSessionInput) (*CheckoutSession, error) {
	priceID, err := a.config.GetPriceID(input.Plan)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("Creating Stripe checkout session",
		zap.String("artist_id", input.ArtistID.String()),
		zap.String("plan", input.Plan))

	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(input.CustomerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(a.config.SuccessURL),
		CancelURL:  stripe.String(a.config.CancelURL),
	}
	params.Params.Metadata = map[string]string{
		"artist_id": input.ArtistID.String(),
		"plan":      input.Plan,
	}
	params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
		Metadata: map[string]string{
			"artist_id": input.ArtistID.String(),
			"plan":      input.Plan,
		},
	}

	sess, err := session.New(params)
	if err != nil {
		a.logger.Error("Failed to create Stripe checkout session",
			zap.String("artist_id", input.ArtistID.String()),
			zap.String("plan", input.Plan),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}

	a.logger.Info("Created Stripe checkout session",
		zap.String("artist_id", input.ArtistID.String()),
		zap.String("session_id", sess.ID))

	return &CheckoutSession{
		SessionID: sess.ID,
		URL:       sess.URL,
	}, nil
}
