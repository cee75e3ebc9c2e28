package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sunroad/backend/internal/domain/artist"
)

// FeatureKey identifies a plan-gated feature
type FeatureKey string

const (
	// FeatureInboundContact gates whether an artist's plan allows receiving
	// messages through the public contact form.
	FeatureInboundContact FeatureKey = "inbound_contact"
	// FeatureCustomDomain gates serving the profile on a custom domain
	FeatureCustomDomain FeatureKey = "custom_domain"
	// FeatureAnalytics gates the profile analytics dashboard
	FeatureAnalytics FeatureKey = "analytics"
)

// PlanEntitlement maps one feature to one plan
type PlanEntitlement struct {
	ID           uuid.UUID
	Plan         artist.Plan
	FeatureKey   FeatureKey
	Enabled      bool
	MonthlyPrice decimal.Decimal
}

// EntitlementRepository reads the plan catalog
type EntitlementRepository interface {
	// HasFeature reports whether the plan has the feature enabled
	HasFeature(ctx context.Context, plan artist.Plan, feature FeatureKey) (bool, error)

	// FindByPlan returns all entitlements configured for a plan
	FindByPlan(ctx context.Context, plan artist.Plan) ([]PlanEntitlement, error)
}
