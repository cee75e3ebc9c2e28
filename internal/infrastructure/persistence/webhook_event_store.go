package persistence

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sunroad/backend/internal/domain/shared"
	"github.com/sunroad/backend/internal/infrastructure/persistence/models"
)

// pruneInterval is how often expired webhook_events rows are swept
const pruneInterval = time.Hour

// GormWebhookEventStore implements shared.IdempotencyStore on the
// webhook_events table. It is the dedup backend when Redis is not configured;
// rows survive restarts, which in-process memory does not.
type GormWebhookEventStore struct {
	db       *gorm.DB
	stop     chan struct{}
	stopOnce sync.Once
}

// NewGormWebhookEventStore creates a new GormWebhookEventStore and starts a
// background sweep of expired rows, stopped by Close.
func NewGormWebhookEventStore(db *gorm.DB) *GormWebhookEventStore {
	s := &GormWebhookEventStore{db: db, stop: make(chan struct{})}
	go s.pruneLoop()
	return s
}

// pruneLoop removes expired records periodically
func (s *GormWebhookEventStore) pruneLoop() {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = s.PruneExpired(context.Background())
		case <-s.stop:
			return
		}
	}
}

// MarkProcessed records the event ID if it has no unexpired record.
// Returns true if this call was the first to record it. An existing row past
// its expiry is superseded in place, so a redelivery after the TTL counts as
// first again.
func (s *GormWebhookEventStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	now := time.Now()
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "event_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"processed_at": now,
				"expires_at":   now.Add(ttl),
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Lte{Column: clause.Column{Table: "webhook_events", Name: "expires_at"}, Value: now},
			}},
		}).
		Create(&models.WebhookEventModel{
			EventID:     eventID,
			ProcessedAt: now,
			ExpiresAt:   now.Add(ttl),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IsProcessed reports whether the event ID has an unexpired record
func (s *GormWebhookEventStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.WebhookEventModel{}).
		Where("event_id = ? AND expires_at > ?", eventID, time.Now()).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// PruneExpired deletes records past their expiry and returns how many were removed
func (s *GormWebhookEventStore) PruneExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Delete(&models.WebhookEventModel{}, "expires_at <= ?", time.Now())
	return result.RowsAffected, result.Error
}

// Close stops the prune loop; the underlying connection is owned by Database
func (s *GormWebhookEventStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

// Ensure GormWebhookEventStore implements shared.IdempotencyStore
var _ shared.IdempotencyStore = (*GormWebhookEventStore)(nil)
