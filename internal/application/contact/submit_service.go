package contact

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sunroad/backend/internal/domain/artist"
	"github.com/sunroad/backend/internal/domain/billing"
	"github.com/sunroad/backend/internal/domain/contact"
	"github.com/sunroad/backend/internal/domain/shared"
	"github.com/sunroad/backend/internal/infrastructure/config"
	"github.com/sunroad/backend/internal/infrastructure/email"
)

// CaptchaVerifier verifies a submitted challenge token
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

// EmailSender delivers one transactional email and returns the provider ID
type EmailSender interface {
	Send(ctx context.Context, msg email.OutboundMessage) (string, error)
}

// IdentityDirectory resolves an auth user ID to the account email
type IdentityDirectory interface {
	LookupEmail(ctx context.Context, authUserID uuid.UUID) (string, error)
}

// RateLimits holds the 24h thresholds counted against the audit table
type RateLimits struct {
	Window            time.Duration
	MaxPerEmail       int
	MaxPerEmailArtist int
	MaxPerIP          int
	MaxPerIPArtist    int
}

// RateLimitsFromConfig builds RateLimits from application configuration
func RateLimitsFromConfig(cfg *config.ContactConfig) RateLimits {
	return RateLimits{
		Window:            cfg.Window,
		MaxPerEmail:       cfg.MaxPerEmail,
		MaxPerEmailArtist: cfg.MaxPerEmailArtist,
		MaxPerIP:          cfg.MaxPerIP,
		MaxPerIPArtist:    cfg.MaxPerIPArtist,
	}
}

// ResultStatus classifies the response the caller should receive
type ResultStatus int

const (
	// ResultOK means respond 200 {"ok":true}. Covers sent, failed, rejected
	// and throttled outcomes alike; the caller cannot tell them apart.
	ResultOK ResultStatus = iota
	// ResultInvalid means respond 400 with the error code
	ResultInvalid
	// ResultUnavailable means respond 404 contact_unavailable
	ResultUnavailable
)

// SubmitResult is the outward outcome of one submission attempt
type SubmitResult struct {
	Status    ResultStatus
	ErrorCode string
}

// Audit error codes recorded on rejected/throttled/failed rows. Never
// revealed to the caller.
const (
	auditCodeBlocked         = "blocked"
	auditCodeLimitEmail      = "limit_email"
	auditCodeLimitEmailArt   = "limit_email_artist"
	auditCodeLimitIP         = "limit_ip"
	auditCodeLimitIPArt      = "limit_ip_artist"
	auditCodeRecipientLookup = "recipient_lookup_failed"
	auditCodeSendFailed      = "send_failed"
)

// SubmitService runs the contact pipeline: validation, captcha, blocklist,
// entitlement, rate limits, audit and delivery.
type SubmitService struct {
	artists      artist.Repository
	messages     contact.MessageRepository
	blocklist    contact.BlocklistRepository
	entitlements billing.EntitlementRepository
	captcha      CaptchaVerifier
	sender       EmailSender
	directory    IdentityDirectory
	hasher       *contact.IdentityHasher
	limits       RateLimits
	logger       *zap.Logger
}

// SubmitServiceConfig contains dependencies for SubmitService
type SubmitServiceConfig struct {
	Artists      artist.Repository
	Messages     contact.MessageRepository
	Blocklist    contact.BlocklistRepository
	Entitlements billing.EntitlementRepository
	Captcha      CaptchaVerifier
	Sender       EmailSender
	Directory    IdentityDirectory
	Hasher       *contact.IdentityHasher
	Limits       RateLimits
	Logger       *zap.Logger
}

// NewSubmitService creates a new SubmitService
func NewSubmitService(cfg SubmitServiceConfig) *SubmitService {
	return &SubmitService{
		artists:      cfg.Artists,
		messages:     cfg.Messages,
		blocklist:    cfg.Blocklist,
		entitlements: cfg.Entitlements,
		captcha:      cfg.Captcha,
		sender:       cfg.Sender,
		directory:    cfg.Directory,
		hasher:       cfg.Hasher,
		limits:       cfg.Limits,
		logger:       cfg.Logger,
	}
}

// Submit processes one contact submission end to end. A non-nil error means
// an internal failure before any audit row was written; everything after the
// accepted insert is absorbed into a ResultOK.
func (s *SubmitService) Submit(ctx context.Context, sub contact.Submission) (*SubmitResult, error) {
	// Gate 1: field validation, before any side effect
	if verr := sub.Validate(); verr != nil {
		return &SubmitResult{Status: ResultInvalid, ErrorCode: verr.Code}, nil
	}

	// Gate 2: captcha. A verification outage fails closed.
	ok, err := s.captcha.Verify(ctx, sub.TurnstileToken, sub.RemoteIP)
	if err != nil {
		s.logger.Warn("Captcha verification unavailable", zap.Error(err))
	}
	if err != nil || !ok {
		return &SubmitResult{Status: ResultInvalid, ErrorCode: contact.CodeCaptchaFailed}, nil
	}

	// Gate 3: artist lookup. Unknown handles get the same response as
	// artists who disallow contact.
	target, err := s.artists.FindByHandle(ctx, sub.ArtistHandle)
	if err != nil {
		if err == shared.ErrNotFound {
			return &SubmitResult{Status: ResultUnavailable, ErrorCode: contact.CodeContactUnavailable}, nil
		}
		return nil, err
	}

	emailHash := s.hasher.HashEmail(sub.FromEmail)
	ipHash := s.hasher.HashIP(sub.RemoteIP)

	// Gate 4: blocklist. Matches are masked as success.
	blocked, err := s.blocklist.IsBlocked(ctx, target.ID, []string{emailHash, ipHash})
	if err != nil {
		return nil, err
	}
	if blocked {
		if err := s.audit(ctx, target, sub, emailHash, ipHash, contact.StatusRejected, auditCodeBlocked); err != nil {
			return nil, err
		}
		return &SubmitResult{Status: ResultOK}, nil
	}

	// Gate 5: entitlement. Plan must allow inbound contact and the artist
	// must have it switched on.
	allowed, err := s.entitlements.HasFeature(ctx, target.Plan, billing.FeatureInboundContact)
	if err != nil {
		return nil, err
	}
	if !allowed || !target.AcceptsContact() {
		if err := s.audit(ctx, target, sub, emailHash, ipHash, contact.StatusRejected, contact.CodeContactUnavailable); err != nil {
			return nil, err
		}
		return &SubmitResult{Status: ResultUnavailable, ErrorCode: contact.CodeContactUnavailable}, nil
	}

	// Gate 6: rate limits counted against prior audit rows. The count and
	// the subsequent insert are not atomic; the limit is soft under
	// concurrent submissions.
	limitCode, err := s.exceededLimit(ctx, target.ID, emailHash, ipHash)
	if err != nil {
		return nil, err
	}
	if limitCode != "" {
		if err := s.audit(ctx, target, sub, emailHash, ipHash, contact.StatusThrottled, limitCode); err != nil {
			return nil, err
		}
		return &SubmitResult{Status: ResultOK}, nil
	}

	// Accept and deliver. Failures past this insert are recorded on the
	// audit row and masked from the caller.
	msg := contact.NewMessage(target.ID, target.AuthUserID, sub, emailHash, ipHash, contact.StatusAccepted, "")
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, err
	}

	s.deliver(ctx, target, sub, msg)
	return &SubmitResult{Status: ResultOK}, nil
}

// exceededLimit returns the audit code of the first threshold hit, or ""
func (s *SubmitService) exceededLimit(ctx context.Context, artistID uuid.UUID, emailHash, ipHash string) (string, error) {
	since := time.Now().Add(-s.limits.Window)

	checks := []struct {
		count func() (int64, error)
		max   int
		code  string
	}{
		{func() (int64, error) { return s.messages.CountByEmailHash(ctx, emailHash, nil, since) },
			s.limits.MaxPerEmail, auditCodeLimitEmail},
		{func() (int64, error) { return s.messages.CountByEmailHash(ctx, emailHash, &artistID, since) },
			s.limits.MaxPerEmailArtist, auditCodeLimitEmailArt},
		{func() (int64, error) { return s.messages.CountByIPHash(ctx, ipHash, nil, since) },
			s.limits.MaxPerIP, auditCodeLimitIP},
		{func() (int64, error) { return s.messages.CountByIPHash(ctx, ipHash, &artistID, since) },
			s.limits.MaxPerIPArtist, auditCodeLimitIPArt},
	}

	for _, check := range checks {
		count, err := check.count()
		if err != nil {
			return "", err
		}
		if count >= int64(check.max) {
			return check.code, nil
		}
	}
	return "", nil
}

// audit writes a terminal-status row for a gated attempt
func (s *SubmitService) audit(ctx context.Context, target *artist.Artist, sub contact.Submission, emailHash, ipHash string, status contact.MessageStatus, code string) error {
	msg := contact.NewMessage(target.ID, target.AuthUserID, sub, emailHash, ipHash, status, code)
	return s.messages.Insert(ctx, msg)
}

// deliver looks up the recipient, sends the email and records the outcome.
// Nothing here surfaces to the caller; no retries either way.
func (s *SubmitService) deliver(ctx context.Context, target *artist.Artist, sub contact.Submission, msg *contact.Message) {
	recipient, err := s.directory.LookupEmail(ctx, target.AuthUserID)
	if err != nil {
		s.logger.Error("Recipient lookup failed",
			zap.String("message_id", msg.ID.String()),
			zap.String("artist_id", target.ID.String()),
			zap.Error(err))
		s.finalize(ctx, msg, "", auditCodeRecipientLookup)
		return
	}

	out := ComposeNotification(target.DisplayName, recipient, sub)
	providerID, err := s.sender.Send(ctx, out)
	if err != nil {
		s.logger.Error("Email delivery failed",
			zap.String("message_id", msg.ID.String()),
			zap.String("artist_id", target.ID.String()),
			zap.Error(err))
		s.finalize(ctx, msg, "", auditCodeSendFailed)
		return
	}

	s.finalize(ctx, msg, providerID, "")
}

// finalize transitions the accepted row to sent or failed and persists it
func (s *SubmitService) finalize(ctx context.Context, msg *contact.Message, providerID, failCode string) {
	var err error
	if failCode == "" {
		err = msg.MarkSent(providerID)
	} else {
		err = msg.MarkFailed(failCode)
	}
	if err != nil {
		s.logger.Error("Invalid status transition",
			zap.String("message_id", msg.ID.String()),
			zap.Error(err))
		return
	}
	if err := s.messages.Update(ctx, msg); err != nil {
		s.logger.Error("Failed to persist delivery outcome",
			zap.String("message_id", msg.ID.String()),
			zap.Error(err))
	}
}
