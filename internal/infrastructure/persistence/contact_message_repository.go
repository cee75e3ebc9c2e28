package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sunroad/backend/internal/domain/contact"
	"github.com/sunroad/backend/internal/infrastructure/persistence/models"
)

// GormContactMessageRepository implements contact.MessageRepository using GORM
type GormContactMessageRepository struct {
	db *gorm.DB
}

// NewGormContactMessageRepository creates a new GormContactMessageRepository
func NewGormContactMessageRepository(db *gorm.DB) *GormContactMessageRepository {
	return &GormContactMessageRepository{db: db}
}

// Insert writes a new audit row
func (r *GormContactMessageRepository) Insert(ctx context.Context, msg *contact.Message) error {
	model := models.ContactMessageModelFromDomain(msg)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update persists status, error code and provider ID after delivery
func (r *GormContactMessageRepository) Update(ctx context.Context, msg *contact.Message) error {
	model := models.ContactMessageModelFromDomain(msg)
	return r.db.WithContext(ctx).
		Model(&models.ContactMessageModel{}).
		Where("id = ?", msg.ID).
		Updates(map[string]interface{}{
			"status":     model.Status,
			"error_code": model.ErrorCode,
			"resend_id":  model.ResendID,
			"updated_at": model.UpdatedAt,
		}).Error
}

// CountByEmailHash counts counted-status rows for an email hash since the
// given time, optionally scoped to one artist.
func (r *GormContactMessageRepository) CountByEmailHash(ctx context.Context, emailHash string, artistID *uuid.UUID, since time.Time) (int64, error) {
	return r.countByHash(ctx, "from_email_hash", emailHash, artistID, since)
}

// CountByIPHash counts counted-status rows for an IP hash since the given
// time, optionally scoped to one artist.
func (r *GormContactMessageRepository) CountByIPHash(ctx context.Context, ipHash string, artistID *uuid.UUID, since time.Time) (int64, error) {
	return r.countByHash(ctx, "ip_hash", ipHash, artistID, since)
}

func (r *GormContactMessageRepository) countByHash(ctx context.Context, column, hash string, artistID *uuid.UUID, since time.Time) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.ContactMessageModel{}).
		Where(column+" = ?", hash).
		Where("status IN ?", contact.CountedStatuses()).
		Where("created_at >= ?", since)
	if artistID != nil {
		query = query.Where("artist_id = ?", *artistID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListByArtist returns the artist's received messages, newest first
func (r *GormContactMessageRepository) ListByArtist(ctx context.Context, artistID uuid.UUID, page, pageSize int) ([]contact.Message, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.ContactMessageModel{}).
		Where("artist_id = ?", artistID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var messageModels []models.ContactMessageModel
	if err := r.db.WithContext(ctx).
		Where("artist_id = ?", artistID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&messageModels).Error; err != nil {
		return nil, 0, err
	}

	messages := make([]contact.Message, len(messageModels))
	for i, model := range messageModels {
		messages[i] = *model.ToDomain()
	}
	return messages, total, nil
}

// Ensure GormContactMessageRepository implements contact.MessageRepository
var _ contact.MessageRepository = (*GormContactMessageRepository)(nil)
