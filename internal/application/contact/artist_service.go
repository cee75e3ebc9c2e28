package contact

import (
	"context"
	"net"
	"strings"

	"github.com/google/uuid"

	"github.com/sunroad/backend/internal/domain/artist"
	"github.com/sunroad/backend/internal/domain/contact"
	"github.com/sunroad/backend/internal/domain/shared"
)

// ArtistInboxService exposes an artist's own received messages and their
// blocklist. All operations resolve the artist from the authenticated user.
type ArtistInboxService struct {
	artists   artist.Repository
	messages  contact.MessageRepository
	blocklist contact.BlocklistRepository
	hasher    *contact.IdentityHasher
}

// NewArtistInboxService creates a new ArtistInboxService
func NewArtistInboxService(artists artist.Repository, messages contact.MessageRepository, blocklist contact.BlocklistRepository, hasher *contact.IdentityHasher) *ArtistInboxService {
	return &ArtistInboxService{
		artists:   artists,
		messages:  messages,
		blocklist: blocklist,
		hasher:    hasher,
	}
}

// ListMessages returns the artist's received messages, newest first
func (s *ArtistInboxService) ListMessages(ctx context.Context, authUserID uuid.UUID, page, pageSize int) ([]contact.Message, int64, error) {
	owner, err := s.artists.FindByAuthUserID(ctx, authUserID)
	if err != nil {
		return nil, 0, err
	}
	return s.messages.ListByArtist(ctx, owner.ID, page, pageSize)
}

// BlockInput describes one identity to blocklist. Value is the raw email or
// IP; it is hashed before storage and never persisted.
type BlockInput struct {
	Kind   contact.BlocklistKind
	Value  string
	Reason string
}

// Block adds an artist-scoped blocklist entry for the given identity
func (s *ArtistInboxService) Block(ctx context.Context, authUserID uuid.UUID, input BlockInput) (*contact.BlocklistEntry, error) {
	if !input.Kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "blocklist kind must be email or ip")
	}

	value := strings.TrimSpace(input.Value)
	var identityHash string
	switch input.Kind {
	case contact.BlocklistKindEmail:
		if value == "" || !strings.Contains(value, "@") {
			return nil, shared.NewDomainError("INVALID_VALUE", "a valid email address is required")
		}
		identityHash = s.hasher.HashEmail(value)
	case contact.BlocklistKindIP:
		if net.ParseIP(value) == nil {
			return nil, shared.NewDomainError("INVALID_VALUE", "a valid IP address is required")
		}
		identityHash = s.hasher.HashIP(value)
	}

	owner, err := s.artists.FindByAuthUserID(ctx, authUserID)
	if err != nil {
		return nil, err
	}

	entry := contact.NewBlocklistEntry(owner.ID, identityHash, input.Kind, input.Reason)
	if err := s.blocklist.Insert(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Unblock removes one of the artist's own blocklist entries
func (s *ArtistInboxService) Unblock(ctx context.Context, authUserID, entryID uuid.UUID) error {
	owner, err := s.artists.FindByAuthUserID(ctx, authUserID)
	if err != nil {
		return err
	}
	return s.blocklist.Delete(ctx, owner.ID, entryID)
}

// ListBlocklist returns the artist's own blocklist entries
func (s *ArtistInboxService) ListBlocklist(ctx context.Context, authUserID uuid.UUID) ([]contact.BlocklistEntry, error) {
	owner, err := s.artists.FindByAuthUserID(ctx, authUserID)
	if err != nil {
		return nil, err
	}
	return s.blocklist.ListByArtist(ctx, owner.ID)
}
