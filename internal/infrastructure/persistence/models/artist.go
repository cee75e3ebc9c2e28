package models

import (
	"github.com/google/uuid"

	"github.com/sunroad/backend/internal/domain/artist"
)

// ArtistModel is the persistence model for the Artist domain entity.
type ArtistModel struct {
	BaseModel
	AuthUserID       uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex"`
	Handle           string      `gorm:"type:varchar(64);not null;uniqueIndex"`
	DisplayName      string      `gorm:"type:varchar(200);not null"`
	Plan             artist.Plan `gorm:"type:varchar(20);not null;default:'free'"`
	ContactEnabled   bool        `gorm:"not null;default:false"`
	StripeCustomerID string      `gorm:"type:varchar(64);index"`
}

// TableName returns the table name for GORM
func (ArtistModel) TableName() string {
	return "artists"
}

// ToDomain converts the persistence model to a domain Artist entity.
func (m *ArtistModel) ToDomain() *artist.Artist {
	return &artist.Artist{
		ID:               m.ID,
		AuthUserID:       m.AuthUserID,
		Handle:           m.Handle,
		DisplayName:      m.DisplayName,
		Plan:             m.Plan,
		ContactEnabled:   m.ContactEnabled,
		StripeCustomerID: m.StripeCustomerID,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// ArtistModelFromDomain creates a persistence model from a domain Artist entity.
func ArtistModelFromDomain(a *artist.Artist) *ArtistModel {
	m := &ArtistModel{
		AuthUserID:       a.AuthUserID,
		Handle:           a.Handle,
		DisplayName:      a.DisplayName,
		Plan:             a.Plan,
		ContactEnabled:   a.ContactEnabled,
		StripeCustomerID: a.StripeCustomerID,
	}
	m.ID = a.ID
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
	return m
}
