package shared

import (
	"context"
	"time"
)

// IdempotencyStore stores processed event IDs to prevent duplicate processing
// of webhook deliveries that providers may retry.
type IdempotencyStore interface {
	// MarkProcessed marks an event as processed with a TTL.
	// Returns true if the event was newly marked, false if it was already processed.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed checks if an event has already been processed
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}

// DefaultIdempotencyTTL is how long a processed event ID is remembered.
// Stripe retries webhooks for up to three days; 72h keeps the full retry
// window covered.
const DefaultIdempotencyTTL = 72 * time.Hour
