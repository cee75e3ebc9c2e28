package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sunroad/backend/internal/domain/artist"
	"github.com/sunroad/backend/internal/domain/shared"
	"github.com/sunroad/backend/internal/infrastructure/persistence/models"
)

// GormArtistRepository implements artist.Repository using GORM
type GormArtistRepository struct {
	db *gorm.DB
}

// NewGormArtistRepository creates a new GormArtistRepository
func NewGormArtistRepository(db *gorm.DB) *GormArtistRepository {
	return &GormArtistRepository{db: db}
}

// FindByHandle finds an artist by their public handle
func (r *GormArtistRepository) FindByHandle(ctx context.Context, handle string) (*artist.Artist, error) {
	var model models.ArtistModel
	if err := r.db.WithContext(ctx).
		Where("handle = ?", strings.ToLower(handle)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAuthUserID finds an artist by their auth user ID
func (r *GormArtistRepository) FindByAuthUserID(ctx context.Context, authUserID uuid.UUID) (*artist.Artist, error) {
	var model models.ArtistModel
	if err := r.db.WithContext(ctx).
		Where("auth_user_id = ?", authUserID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByStripeCustomerID finds an artist by their Stripe customer ID
func (r *GormArtistRepository) FindByStripeCustomerID(ctx context.Context, customerID string) (*artist.Artist, error) {
	if customerID == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_ID", "Stripe customer ID cannot be empty")
	}
	var model models.ArtistModel
	if err := r.db.WithContext(ctx).
		Where("stripe_customer_id = ?", customerID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// UpdatePlan updates the artist's subscription plan
func (r *GormArtistRepository) UpdatePlan(ctx context.Context, id uuid.UUID, plan artist.Plan) error {
	result := r.db.WithContext(ctx).
		Model(&models.ArtistModel{}).
		Where("id = ?", id).
		Update("plan", plan)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdateStripeCustomerID records the Stripe customer associated with the artist
func (r *GormArtistRepository) UpdateStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.ArtistModel{}).
		Where("id = ?", id).
		Update("stripe_customer_id", customerID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormArtistRepository implements artist.Repository
var _ artist.Repository = (*GormArtistRepository)(nil)
