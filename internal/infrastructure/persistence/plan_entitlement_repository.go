package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sunroad/backend/internal/domain/artist"
	"github.com/sunroad/backend/internal/domain/billing"
	"github.com/sunroad/backend/internal/infrastructure/persistence/models"
)

// GormPlanEntitlementRepository implements billing.EntitlementRepository using GORM
type GormPlanEntitlementRepository struct {
	db *gorm.DB
}

// NewGormPlanEntitlementRepository creates a new GormPlanEntitlementRepository
func NewGormPlanEntitlementRepository(db *gorm.DB) *GormPlanEntitlementRepository {
	return &GormPlanEntitlementRepository{db: db}
}

// HasFeature reports whether the plan has the feature enabled. An absent
// catalog row means the feature is off for that plan.
func (r *GormPlanEntitlementRepository) HasFeature(ctx context.Context, plan artist.Plan, feature billing.FeatureKey) (bool, error) {
	var model models.PlanEntitlementModel
	if err := r.db.WithContext(ctx).
		Where("plan = ? AND feature_key = ?", plan, feature).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return model.Enabled, nil
}

// FindByPlan returns all entitlements configured for a plan
func (r *GormPlanEntitlementRepository) FindByPlan(ctx context.Context, plan artist.Plan) ([]billing.PlanEntitlement, error) {
	var entitlementModels []models.PlanEntitlementModel
	if err := r.db.WithContext(ctx).
		Where("plan = ?", plan).
		Order("feature_key ASC").
		Find(&entitlementModels).Error; err != nil {
		return nil, err
	}

	entitlements := make([]billing.PlanEntitlement, len(entitlementModels))
	for i, model := range entitlementModels {
		entitlements[i] = *model.ToDomain()
	}
	return entitlements, nil
}

// Ensure GormPlanEntitlementRepository implements billing.EntitlementRepository
var _ billing.EntitlementRepository = (*GormPlanEntitlementRepository)(nil)
