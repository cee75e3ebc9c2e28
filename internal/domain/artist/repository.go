package artist

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for artists
type Repository interface {
	// FindByHandle finds an artist by their public handle
	FindByHandle(ctx context.Context, handle string) (*Artist, error)

	// FindByAuthUserID finds an artist by their auth user ID
	FindByAuthUserID(ctx context.Context, authUserID uuid.UUID) (*Artist, error)

	// FindByStripeCustomerID finds an artist by their Stripe customer ID
	FindByStripeCustomerID(ctx context.Context, customerID string) (*Artist, error)

	// UpdatePlan updates the artist's subscription plan
	UpdatePlan(ctx context.Context, id uuid.UUID, plan Plan) error

	// UpdateStripeCustomerID records the Stripe customer associated with the artist
	UpdateStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error
}
