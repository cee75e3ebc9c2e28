package billing

import (
	"fmt"

	"github.com/stripe/stripe-go/v81"

	"github.com/sunroad/backend/internal/infrastructure/config"
)

// StripeConfig holds Stripe integration settings for artist plan upgrades
type StripeConfig struct {
	// SecretKey is the Stripe secret API key (sk_test_xxx or sk_live_xxx)
	SecretKey string

	// WebhookSecret is the secret for verifying webhook signatures
	WebhookSecret string

	// PriceIDs maps plan names to Stripe Price IDs
	PriceIDs map[string]string

	// SuccessURL is the URL to redirect after successful checkout
	SuccessURL string

	// CancelURL is the URL to redirect after cancelled checkout
	CancelURL string
}

// NewStripeConfig builds the adapter config from application configuration
func NewStripeConfig(cfg *config.StripeConfig) *StripeConfig {
	return &StripeConfig{
		SecretKey:     cfg.SecretKey,
		WebhookSecret: cfg.WebhookSecret,
		PriceIDs:      cfg.PriceIDs,
		SuccessURL:    cfg.SuccessURL,
		CancelURL:     cfg.CancelURL,
	}
}

// Validate validates the Stripe configuration. An empty secret key means
// billing is not configured and is allowed here; config validation requires
// the key in production.
func (c *StripeConfig) Validate() error {
	if c.SecretKey == "" {
		return nil
	}
	if c.SuccessURL == "" {
		return fmt.Errorf("stripe: success URL is required")
	}
	if c.CancelURL == "" {
		return fmt.Errorf("stripe: cancel URL is required")
	}
	return nil
}

// GetPriceID returns the Stripe Price ID for a given plan. The free plan has
// no price and is not purchasable.
func (c *StripeConfig) GetPriceID(plan string) (string, error) {
	priceID, exists := c.PriceIDs[plan]
	if !exists || priceID == "" {
		return "", fmt.Errorf("stripe: no price ID configured for plan: %s", plan)
	}
	return priceID, nil
}

// InitStripeClient initializes the Stripe client with the configured API key
func (c *StripeConfig) InitStripeClient() {
	stripe.Key = c.SecretKey
}
