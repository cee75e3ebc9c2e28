package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sunroad/backend/internal/domain/contact"
	"github.com/sunroad/backend/internal/domain/shared"
	"github.com/sunroad/backend/internal/infrastructure/persistence/models"
)

// GormBlocklistRepository implements contact.BlocklistRepository using GORM
type GormBlocklistRepository struct {
	db *gorm.DB
}

// NewGormBlocklistRepository creates a new GormBlocklistRepository
func NewGormBlocklistRepository(db *gorm.DB) *GormBlocklistRepository {
	return &GormBlocklistRepository{db: db}
}

// IsBlocked reports whether any of the hashes matches an entry scoped to the
// artist or a global entry (NULL artist_id).
func (r *GormBlocklistRepository) IsBlocked(ctx context.Context, artistID uuid.UUID, identityHashes []string) (bool, error) {
	if len(identityHashes) == 0 {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ContactBlocklistModel{}).
		Where("identity_hash IN ?", identityHashes).
		Where("artist_id = ? OR artist_id IS NULL", artistID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Insert adds a blocklist entry. The table is unique per identity and scope,
// so re-blocking an already blocked identity is a no-op.
func (r *GormBlocklistRepository) Insert(ctx context.Context, entry *contact.BlocklistEntry) error {
	model := models.ContactBlocklistModelFromDomain(entry)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model).Error
}

// Delete removes an artist-scoped entry by ID. Global entries cannot be
// removed through this path.
func (r *GormBlocklistRepository) Delete(ctx context.Context, artistID, entryID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&models.ContactBlocklistModel{}, "id = ? AND artist_id = ?", entryID, artistID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListByArtist returns the artist's own blocklist entries, newest first
func (r *GormBlocklistRepository) ListByArtist(ctx context.Context, artistID uuid.UUID) ([]contact.BlocklistEntry, error) {
	var entryModels []models.ContactBlocklistModel
	if err := r.db.WithContext(ctx).
		Where("artist_id = ?", artistID).
		Order("created_at DESC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]contact.BlocklistEntry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}

// Ensure GormBlocklistRepository implements contact.BlocklistRepository
var _ contact.BlocklistRepository = (*GormBlocklistRepository)(nil)
