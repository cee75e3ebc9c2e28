package contact

import (
	"time"

	"github.com/google/uuid"
)

// BlocklistKind distinguishes what identity a blocklist hash was derived from
type BlocklistKind string

const (
	BlocklistKindEmail BlocklistKind = "email"
	BlocklistKindIP    BlocklistKind = "ip"
)

// IsValid reports whether the kind is known
func (k BlocklistKind) IsValid() bool {
	return k == BlocklistKindEmail || k == BlocklistKindIP
}

// BlocklistEntry denies a hashed identity from contacting one artist
// (ArtistID set) or every artist (ArtistID nil). The pipeline only ever reads
// these; writes come from the artist-facing management endpoints.
type BlocklistEntry struct {
	ID           uuid.UUID
	ArtistID     *uuid.UUID
	IdentityHash string
	Kind         BlocklistKind
	Reason       string
	CreatedAt    time.Time
}

// NewBlocklistEntry creates an artist-scoped blocklist entry
func NewBlocklistEntry(artistID uuid.UUID, identityHash string, kind BlocklistKind, reason string) *BlocklistEntry {
	return &BlocklistEntry{
		ID:           uuid.New(),
		ArtistID:     &artistID,
		IdentityHash: identityHash,
		Kind:         kind,
		Reason:       reason,
		CreatedAt:    time.Now(),
	}
}
