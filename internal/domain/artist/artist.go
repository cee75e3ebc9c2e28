package artist

import (
	"time"

	"github.com/google/uuid"
)

// Plan represents an artist's subscription plan
type Plan string

const (
	PlanFree     Plan = "free"
	PlanStandard Plan = "standard"
	PlanPro      Plan = "pro"
)

// IsValid reports whether the plan is one of the known plans
func (p Plan) IsValid() bool {
	switch p {
	case PlanFree, PlanStandard, PlanPro:
		return true
	}
	return false
}

// Artist represents a public artist profile. The profile itself is owned by
// the rest of the application; the contact pipeline reads it to resolve a
// handle to a recipient and to decide whether inbound contact is allowed.
type Artist struct {
	ID               uuid.UUID
	AuthUserID       uuid.UUID
	Handle           string
	DisplayName      string
	Plan             Plan
	ContactEnabled   bool
	StripeCustomerID string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AcceptsContact reports whether the artist has inbound contact switched on.
// Plan-level entitlement is checked separately against the plan catalog.
func (a *Artist) AcceptsContact() bool {
	return a.ContactEnabled
}

// ChangePlan moves the artist to a new plan
func (a *Artist) ChangePlan(plan Plan) {
	a.Plan = plan
	a.UpdatedAt = time.Now()
}
