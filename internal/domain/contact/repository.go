package contact

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// countedStatuses are the statuses that count against rate limits. Rejected
// and throttled attempts are excluded so a blocked sender cannot inflate
// their own throttle by resubmitting.
var countedStatuses = []MessageStatus{StatusAccepted, StatusSent, StatusFailed}

// CountedStatuses returns the statuses included in rate-limit counting
func CountedStatuses() []MessageStatus {
	out := make([]MessageStatus, len(countedStatuses))
	copy(out, countedStatuses)
	return out
}

// MessageRepository defines persistence operations for contact messages
type MessageRepository interface {
	// Insert writes a new audit row
	Insert(ctx context.Context, msg *Message) error

	// Update persists status, error code and provider ID after delivery
	Update(ctx context.Context, msg *Message) error

	// CountByEmailHash counts counted-status rows for an email hash since the
	// given time, optionally scoped to one artist.
	CountByEmailHash(ctx context.Context, emailHash string, artistID *uuid.UUID, since time.Time) (int64, error)

	// CountByIPHash counts counted-status rows for an IP hash since the given
	// time, optionally scoped to one artist.
	CountByIPHash(ctx context.Context, ipHash string, artistID *uuid.UUID, since time.Time) (int64, error)

	// ListByArtist returns the artist's received messages, newest first
	ListByArtist(ctx context.Context, artistID uuid.UUID, page, pageSize int) ([]Message, int64, error)
}

// BlocklistRepository defines read/write operations on the blocklist
type BlocklistRepository interface {
	// IsBlocked reports whether any of the hashes matches an entry scoped to
	// the artist or a global entry.
	IsBlocked(ctx context.Context, artistID uuid.UUID, identityHashes []string) (bool, error)

	// Insert adds a blocklist entry
	Insert(ctx context.Context, entry *BlocklistEntry) error

	// Delete removes an artist-scoped entry by ID
	Delete(ctx context.Context, artistID, entryID uuid.UUID) error

	// ListByArtist returns the artist's own blocklist entries
	ListByArtist(ctx context.Context, artistID uuid.UUID) ([]BlocklistEntry, error)
}
