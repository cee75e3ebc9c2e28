package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/sunroad/backend/internal/domain/artist"
	infrabilling "github.com/sunroad/backend/internal/infrastructure/billing"
)

// MockArtistRepository is a mock implementation of artist.Repository
type MockArtistRepository struct {
	mock.Mock
}

func (m *MockArtistRepository) FindByHandle(ctx context.Context, handle string) (*artist.Artist, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*artist.Artist), args.Error(1)
}

func (m *MockArtistRepository) FindByAuthUserID(ctx context.Context, authUserID uuid.UUID) (*artist.Artist, error) {
	args := m.Called(ctx, authUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*artist.Artist), args.Error(1)
}

func (m *MockArtistRepository) FindByStripeCustomerID(ctx context.Context, customerID string) (*artist.Artist, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*artist.Artist), args.Error(1)
}

func (m *MockArtistRepository) UpdatePlan(ctx context.Context, id uuid.UUID, plan artist.Plan) error {
	args := m.Called(ctx, id, plan)
	return args.Error(0)
}

func (m *MockArtistRepository) UpdateStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	args := m.Called(ctx, id, customerID)
	return args.Error(0)
}

// MockPaymentGateway is a mock implementation of PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateCustomer(ctx context.Context, input infrabilling.CreateCustomerInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentGateway) CreateCheckoutSession(ctx context.Context, input infrabilling.CreateCheckoutSessionInput) (*infrabilling.CheckoutSession, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infrabilling.CheckoutSession), args.Error(1)
}

// MockIdentityDirectory is a mock implementation of IdentityDirectory
type MockIdentityDirectory struct {
	mock.Mock
}

func (m *MockIdentityDirectory) LookupEmail(ctx context.Context, authUserID uuid.UUID) (string, error) {
	args := m.Called(ctx, authUserID)
	return args.String(0), args.Error(1)
}
