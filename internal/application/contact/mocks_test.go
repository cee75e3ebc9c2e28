package contact

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/sunroad/backend/internal/domain/artist"
	"github.com/sunroad/backend/internal/domain/billing"
	"github.com/sunroad/backend/internal/domain/contact"
	"github.com/sunroad/backend/internal/infrastructure/email"
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

// MockMessageRepository is a mock implementation of contact.MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Insert(ctx context.Context, msg *contact.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageRepository) Update(ctx context.Context, msg *contact.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageRepository) CountByEmailHash(ctx context.Context, emailHash string, artistID *uuid.UUID, since time.Time) (int64, error) {
	args := m.Called(ctx, emailHash, artistID, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessageRepository) CountByIPHash(ctx context.Context, ipHash string, artistID *uuid.UUID, since time.Time) (int64, error) {
	args := m.Called(ctx, ipHash, artistID, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessageRepository) ListByArtist(ctx context.Context, artistID uuid.UUID, page, pageSize int) ([]contact.Message, int64, error) {
	args := m.Called(ctx, artistID, page, pageSize)
	return args.Get(0).([]contact.Message), args.Get(1).(int64), args.Error(2)
}

// MockBlocklistRepository is a mock implementation of contact.BlocklistRepository
type MockBlocklistRepository struct {
	mock.Mock
}

func (m *MockBlocklistRepository) IsBlocked(ctx context.Context, artistID uuid.UUID, identityHashes []string) (bool, error) {
	args := m.Called(ctx, artistID, identityHashes)
	return args.Bool(0), args.Error(1)
}

func (m *MockBlocklistRepository) Insert(ctx context.Context, entry *contact.BlocklistEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockBlocklistRepository) Delete(ctx context.Context, artistID, entryID uuid.UUID) error {
	args := m.Called(ctx, artistID, entryID)
	return args.Error(0)
}

func (m *MockBlocklistRepository) ListByArtist(ctx context.Context, artistID uuid.UUID) ([]contact.BlocklistEntry, error) {
	args := m.Called(ctx, artistID)
	return args.Get(0).([]contact.BlocklistEntry), args.Error(1)
}

// MockEntitlementRepository is a mock implementation of billing.EntitlementRepository
type MockEntitlementRepository struct {
	mock.Mock
}

func (m *MockEntitlementRepository) HasFeature(ctx context.Context, plan artist.Plan, feature billing.FeatureKey) (bool, error) {
	args := m.Called(ctx, plan, feature)
	return args.Bool(0), args.Error(1)
}

func (m *MockEntitlementRepository) FindByPlan(ctx context.Context, plan artist.Plan) ([]billing.PlanEntitlement, error) {
	args := m.Called(ctx, plan)
	return args.Get(0).([]billing.PlanEntitlement), args.Error(1)
}

// MockCaptchaVerifier is a mock implementation of CaptchaVerifier
type MockCaptchaVerifier struct {
	mock.Mock
}

func (m *MockCaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	args := m.Called(ctx, token, remoteIP)
	return args.Bool(0), args.Error(1)
}

// MockEmailSender is a mock implementation of EmailSender
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, msg email.OutboundMessage) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

// MockIdentityDirectory is a mock implementation of IdentityDirectory
type MockIdentityDirectory struct {
	mock.Mock
}

func (m *MockIdentityDirectory) LookupEmail(ctx context.Context, authUserID uuid.UUID) (string, error) {
	args := m.Called(ctx, authUserID)
	return args.String(0), args.Error(1)
}
