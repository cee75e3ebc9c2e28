package billing

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sunroad/backend/internal/domain/artist"
	"github.com/sunroad/backend/internal/domain/shared"
	infrabilling "github.com/sunroad/backend/internal/infrastructure/billing"
)

// PaymentGateway abstracts the Stripe operations the checkout flow needs
type PaymentGateway interface {
	CreateCustomer(ctx context.Context, input infrabilling.CreateCustomerInput) (string, error)
	CreateCheckoutSession(ctx context.Context, input infrabilling.CreateCheckoutSessionInput) (*infrabilling.CheckoutSession, error)
}

// IdentityDirectory resolves an auth user ID to the account email
type IdentityDirectory interface {
	LookupEmail(ctx context.Context, authUserID uuid.UUID) (string, error)
}

// CheckoutService creates Stripe Checkout sessions for plan upgrades
type CheckoutService struct {
	artists   artist.Repository
	gateway   PaymentGateway
	directory IdentityDirectory
	logger    *zap.Logger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(artists artist.Repository, gateway PaymentGateway, directory IdentityDirectory, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		artists:   artists,
		gateway:   gateway,
		directory: directory,
		logger:    logger,
	}
}

// CreateCheckout creates a checkout session moving the artist to the given
// plan. A Stripe customer is created on first use and remembered.
func (s *CheckoutService) CreateCheckout(ctx context.Context, authUserID uuid.UUID, plan artist.Plan) (*infrabilling.CheckoutSession, error) {
	if !plan.IsValid() || plan == artist.PlanFree {
		return nil, shared.NewDomainError("INVALID_PLAN", "plan must be a purchasable plan")
	}

	owner, err := s.artists.FindByAuthUserID(ctx, authUserID)
	if err != nil {
		return nil, err
	}

	customerID := owner.StripeCustomerID
	if customerID == "" {
		accountEmail, err := s.directory.LookupEmail(ctx, owner.AuthUserID)
		if err != nil {
			return nil, err
		}

		customerID, err = s.gateway.CreateCustomer(ctx, infrabilling.CreateCustomerInput{
			ArtistID: owner.ID,
			Email:    accountEmail,
			Name:     owner.DisplayName,
		})
		if err != nil {
			return nil, err
		}

		if err := s.artists.UpdateStripeCustomerID(ctx, owner.ID, customerID); err != nil {
			return nil, err
		}
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, infrabilling.CreateCheckoutSessionInput{
		ArtistID:   owner.ID,
		CustomerID: customerID,
		Plan:       string(plan),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Checkout session created",
		zap.String("artist_id", owner.ID.String()),
		zap.String("plan", string(plan)))

	return session, nil
}
