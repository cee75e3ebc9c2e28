package contact

import (
	"time"

	"github.com/google/uuid"

	"github.com/sunroad/backend/internal/domain/shared"
)

// MessageStatus represents the delivery state of a contact message
type MessageStatus string

const (
	// StatusAccepted means the message passed all gates and is awaiting delivery
	StatusAccepted MessageStatus = "accepted"
	// StatusSent means the email provider accepted the message
	StatusSent MessageStatus = "sent"
	// StatusFailed means the email provider rejected the message
	StatusFailed MessageStatus = "failed"
	// StatusRejected means the sender was blocklisted or the artist is not contactable
	StatusRejected MessageStatus = "rejected"
	// StatusThrottled means a rate-limit threshold was exceeded
	StatusThrottled MessageStatus = "throttled"
)

// IsTerminal reports whether no further transition is allowed from the status.
// Only accepted messages ever transition again.
func (s MessageStatus) IsTerminal() bool {
	return s != StatusAccepted
}

// Message is one audit row per submission attempt. Rows are written for
// blocked and throttled attempts too, and are never deleted by this pipeline.
type Message struct {
	ID               uuid.UUID
	ArtistID         uuid.UUID
	ArtistAuthUserID uuid.UUID
	FromName         string
	FromEmail        string
	FromEmailHash    string
	Subject          string
	Body             string
	IPHash           string
	UserAgent        string
	TurnstileOK      bool
	Status           MessageStatus
	ErrorCode        string
	ResendID         string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewMessage creates an audit row for a submission attempt in the given
// initial status. Gate outcomes (rejected, throttled) are created directly in
// their terminal status; deliverable messages start as accepted.
func NewMessage(artistID, artistAuthUserID uuid.UUID, sub Submission, emailHash, ipHash string, status MessageStatus, errorCode string) *Message {
	now := time.Now()
	return &Message{
		ID:               uuid.New(),
		ArtistID:         artistID,
		ArtistAuthUserID: artistAuthUserID,
		FromName:         sub.FromName,
		FromEmail:        sub.FromEmail,
		FromEmailHash:    emailHash,
		Subject:          sub.Subject,
		Body:             sub.Message,
		IPHash:           ipHash,
		UserAgent:        sub.UserAgent,
		TurnstileOK:      true,
		Status:           status,
		ErrorCode:        errorCode,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// MarkSent transitions accepted -> sent and records the provider message ID
func (m *Message) MarkSent(providerID string) error {
	if m.Status != StatusAccepted {
		return shared.ErrInvalidState
	}
	m.Status = StatusSent
	m.ResendID = providerID
	m.ErrorCode = ""
	m.UpdatedAt = time.Now()
	return nil
}

// MarkFailed transitions accepted -> failed with a non-empty error code
func (m *Message) MarkFailed(errorCode string) error {
	if m.Status != StatusAccepted {
		return shared.ErrInvalidState
	}
	if errorCode == "" {
		errorCode = "send_failed"
	}
	m.Status = StatusFailed
	m.ErrorCode = errorCode
	m.UpdatedAt = time.Now()
	return nil
}
