package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sunroad/backend/internal/domain/contact"
)

// ContactMessageModel is the persistence model for contact audit rows.
// One row is written per submission attempt that reaches the gate, including
// rejected and throttled attempts.
type ContactMessageModel struct {
	BaseModel
	ArtistID         uuid.UUID             `gorm:"type:uuid;not null;index:idx_contact_messages_artist_created,priority:1"`
	ArtistAuthUserID uuid.UUID             `gorm:"type:uuid;not null"`
	FromName         string                `gorm:"type:varchar(120);not null"`
	FromEmail        string                `gorm:"type:varchar(320);not null"`
	FromEmailHash    string                `gorm:"type:char(64);not null;index"`
	Subject          string                `gorm:"type:varchar(160);not null"`
	Body             string                `gorm:"type:text;not null"`
	IPHash           string                `gorm:"type:char(64);not null;index"`
	UserAgent        string                `gorm:"type:varchar(512)"`
	TurnstileOK      bool                  `gorm:"not null;default:false"`
	Status           contact.MessageStatus `gorm:"type:varchar(20);not null;index"`
	ErrorCode        string                `gorm:"type:varchar(50)"`
	ResendID         string                `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (ContactMessageModel) TableName() string {
	return "contact_messages"
}

// ToDomain converts the persistence model to a domain Message.
func (m *ContactMessageModel) ToDomain() *contact.Message {
	return &contact.Message{
		ID:               m.ID,
		ArtistID:         m.ArtistID,
		ArtistAuthUserID: m.ArtistAuthUserID,
		FromName:         m.FromName,
		FromEmail:        m.FromEmail,
		FromEmailHash:    m.FromEmailHash,
		Subject:          m.Subject,
		Body:             m.Body,
		IPHash:           m.IPHash,
		UserAgent:        m.UserAgent,
		TurnstileOK:      m.TurnstileOK,
		Status:           m.Status,
		ErrorCode:        m.ErrorCode,
		ResendID:         m.ResendID,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// ContactMessageModelFromDomain creates a persistence model from a domain Message.
func ContactMessageModelFromDomain(msg *contact.Message) *ContactMessageModel {
	m := &ContactMessageModel{
		ArtistID:         msg.ArtistID,
		ArtistAuthUserID: msg.ArtistAuthUserID,
		FromName:         msg.FromName,
		FromEmail:        msg.FromEmail,
		FromEmailHash:    msg.FromEmailHash,
		Subject:          msg.Subject,
		Body:             msg.Body,
		IPHash:           msg.IPHash,
		UserAgent:        msg.UserAgent,
		TurnstileOK:      msg.TurnstileOK,
		Status:           msg.Status,
		ErrorCode:        msg.ErrorCode,
		ResendID:         msg.ResendID,
	}
	m.ID = msg.ID
	m.CreatedAt = msg.CreatedAt
	m.UpdatedAt = msg.UpdatedAt
	return m
}

// ContactBlocklistModel is the persistence model for blocklist entries.
// ArtistID is nullable; a NULL artist means the entry applies globally.
type ContactBlocklistModel struct {
	ID           uuid.UUID             `gorm:"type:uuid;primary_key"`
	ArtistID     *uuid.UUID            `gorm:"type:uuid;index"`
	IdentityHash string                `gorm:"type:char(64);not null;index"`
	Kind         contact.BlocklistKind `gorm:"type:varchar(10);not null"`
	Reason       string                `gorm:"type:varchar(200)"`
	CreatedAt    time.Time             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ContactBlocklistModel) TableName() string {
	return "contact_blocklist"
}

// ToDomain converts the persistence model to a domain BlocklistEntry.
func (m *ContactBlocklistModel) ToDomain() *contact.BlocklistEntry {
	return &contact.BlocklistEntry{
		ID:           m.ID,
		ArtistID:     m.ArtistID,
		IdentityHash: m.IdentityHash,
		Kind:         m.Kind,
		Reason:       m.Reason,
		CreatedAt:    m.CreatedAt,
	}
}

// ContactBlocklistModelFromDomain creates a persistence model from a domain BlocklistEntry.
func ContactBlocklistModelFromDomain(e *contact.BlocklistEntry) *ContactBlocklistModel {
	return &ContactBlocklistModel{
		ID:           e.ID,
		ArtistID:     e.ArtistID,
		IdentityHash: e.IdentityHash,
		Kind:         e.Kind,
		Reason:       e.Reason,
		CreatedAt:    e.CreatedAt,
	}
}
