package cache

import (
	"context"
	"sync"
	"time"

	"github.com/sunroad/backend/internal/domain/shared"
)

// pruneEvery controls how often the in-memory store sweeps expired entries.
// The sweep runs inline on every Nth insert, so no background goroutine is needed.
const pruneEvery = 256

// InMemoryIdempotencyStore implements shared.IdempotencyStore with a local
// map. Suitable for tests and single-instance deployments; state is lost on
// restart, which is why production uses Redis or the webhook_events table.
type InMemoryIdempotencyStore struct {
	mu      sync.RWMutex
	expires map[string]time.Time
	inserts int
}

// NewInMemoryIdempotencyStore creates a new in-memory idempotency store
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{
		expires: make(map[string]time.Time),
	}
}

// MarkProcessed marks an event as processed with a TTL.
// Returns true if the event was newly marked, false if already processed.
func (s *InMemoryIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if expiry, exists := s.expires[eventID]; exists && now.Before(expiry) {
		return false, nil
	}

	s.expires[eventID] = now.Add(ttl)

	s.inserts++
	if s.inserts%pruneEvery == 0 {
		for id, expiry := range s.expires {
			if now.After(expiry) {
				delete(s.expires, id)
			}
		}
	}

	return true, nil
}

// IsProcessed checks if an event has an unexpired mark
func (s *InMemoryIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expiry, exists := s.expires[eventID]
	return exists && time.Now().Before(expiry), nil
}

// Close releases resources. Safe to call multiple times.
func (s *InMemoryIdempotencyStore) Close() error {
	return nil
}

// Size returns the number of entries in the store (for testing/monitoring)
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.expires)
}

// Ensure InMemoryIdempotencyStore implements IdempotencyStore
var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
