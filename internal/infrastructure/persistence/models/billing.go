package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sunroad/backend/internal/domain/artist"
	"github.com/sunroad/backend/internal/domain/billing"
)

// PlanEntitlementModel is the persistence model for the plan feature catalog.
type PlanEntitlementModel struct {
	ID           uuid.UUID          `gorm:"type:uuid;primary_key"`
	Plan         artist.Plan        `gorm:"type:varchar(20);not null;uniqueIndex:idx_plan_entitlements_plan_feature,priority:1"`
	FeatureKey   billing.FeatureKey `gorm:"type:varchar(50);not null;uniqueIndex:idx_plan_entitlements_plan_feature,priority:2"`
	Enabled      bool               `gorm:"not null;default:false"`
	MonthlyPrice decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (PlanEntitlementModel) TableName() string {
	return "plan_entitlements"
}

// ToDomain converts the persistence model to a domain PlanEntitlement.
func (m *PlanEntitlementModel) ToDomain() *billing.PlanEntitlement {
	return &billing.PlanEntitlement{
		ID:           m.ID,
		Plan:         m.Plan,
		FeatureKey:   m.FeatureKey,
		Enabled:      m.Enabled,
		MonthlyPrice: m.MonthlyPrice,
	}
}

// WebhookEventModel records processed Stripe event IDs for deduplication when
// Redis is not configured.
type WebhookEventModel struct {
	EventID     string    `gorm:"type:varchar(100);primary_key"`
	ProcessedAt time.Time `gorm:"not null"`
	ExpiresAt   time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (WebhookEventModel) TableName() string {
	return "webhook_events"
}
