package contact

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sunroad/backend/internal/domain/artist"
	"github.com/sunroad/backend/internal/domain/billing"
	"github.com/sunroad/backend/internal/domain/contact"
	"github.com/sunroad/backend/internal/domain/shared"
	"github.com/sunroad/backend/internal/infrastructure/email"
)

type submitFixture struct {
	artists      *MockArtistRepository
	messages     *MockMessageRepository
	blocklist    *MockBlocklistRepository
	entitlements *MockEntitlementRepository
	captcha      *MockCaptchaVerifier
	sender       *MockEmailSender
	directory    *MockIdentityDirectory
	service      *SubmitService
}

func newSubmitFixture() *submitFixture {
	f := &submitFixture{
		artists:      new(MockArtistRepository),
		messages:     new(MockMessageRepository),
		blocklist:    new(MockBlocklistRepository),
		entitlements: new(MockEntitlementRepository),
		captcha:      new(MockCaptchaVerifier),
		sender:       new(MockEmailSender),
		directory:    new(MockIdentityDirectory),
	}
	f.service = NewSubmitService(SubmitServiceConfig{
		Artists:      f.artists,
		Messages:     f.messages,
		Blocklist:    f.blocklist,
		Entitlements: f.entitlements,
		Captcha:      f.captcha,
		Sender:       f.sender,
		Directory:    f.directory,
		Hasher:       contact.NewIdentityHasher("test-pepper"),
		Limits: RateLimits{
			Window:            24 * time.Hour,
			MaxPerEmail:       5,
			MaxPerEmailArtist: 2,
			MaxPerIP:          10,
			MaxPerIPArtist:    3,
		},
		Logger: zap.NewNop(),
	})
	return f
}

func validSubmission() contact.Submission {
	return contact.Submission{
		ArtistHandle:   "luna",
		FromName:       "A Fan",
		FromEmail:      "fan@example.com",
		Subject:        "Booking inquiry",
		Message:        "Would love to book you for a private event next month.",
		TurnstileToken: "tok-valid",
		RemoteIP:       "203.0.113.9",
		UserAgent:      "test-agent",
	}
}

func contactableArtist() *artist.Artist {
	return &artist.Artist{
		ID:             uuid.New(),
		AuthUserID:     uuid.New(),
		Handle:         "luna",
		DisplayName:    "Luna Waves",
		Plan:           artist.PlanStandard,
		ContactEnabled: true,
	}
}

// allowCounts stubs every rate-limit count with zero
func (f *submitFixture) allowCounts() {
	f.messages.On("CountByEmailHash", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)
	f.messages.On("CountByIPHash", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)
}

func TestSubmitService_Validation(t *testing.T) {
	cases := []struct {
		name     string
		mutate   func(*contact.Submission)
		wantCode string
	}{
		{"empty handle", func(s *contact.Submission) { s.ArtistHandle = "" }, "invalid_handle"},
		{"bad email", func(s *contact.Submission) { s.FromEmail = "not-an-email" }, "invalid_email"},
		{"short message", func(s *contact.Submission) { s.Message = "short" }, "invalid_message"},
		{"missing token", func(s *contact.Submission) { s.TurnstileToken = "" }, "captcha_required"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newSubmitFixture()
			sub := validSubmission()
			tc.mutate(&sub)

			result, err := f.service.Submit(context.Background(), sub)

			require.NoError(t, err)
			assert.Equal(t, ResultInvalid, result.Status)
			assert.Equal(t, tc.wantCode, result.ErrorCode)

			// No side effects before validation passes
			f.captcha.AssertNotCalled(t, "Verify")
			f.artists.AssertNotCalled(t, "FindByHandle")
			f.messages.AssertNotCalled(t, "Insert")
		})
	}
}

func TestSubmitService_Validation_CountsCharactersNotBytes(t *testing.T) {
	// A 100-rune accented name and a 1500-rune CJK message are both well
	// under the character limits even though their byte lengths exceed them.
	f := newSubmitFixture()
	f.captcha.On("Verify", mock.Anything, "tok-valid", "203.0.113.9").Return(false, nil)

	sub := validSubmission()
	sub.FromName = strings.Repeat("é", 100)
	sub.Message = strings.Repeat("歌", 1500)

	result, err := f.service.Submit(context.Background(), sub)

	require.NoError(t, err)
	assert.Equal(t, ResultInvalid, result.Status)
	// Validation passed; the pipeline stopped at the rejected captcha token.
	assert.Equal(t, "captcha_failed", result.ErrorCode)

	t.Run("rune count over the limit still rejects", func(t *testing.T) {
		f := newSubmitFixture()
		sub := validSubmission()
		sub.FromName = strings.Repeat("é", 121)

		result, err := f.service.Submit(context.Background(), sub)

		require.NoError(t, err)
		assert.Equal(t, ResultInvalid, result.Status)
		assert.Equal(t, "invalid_name", result.ErrorCode)
	})
}

func TestSubmitService_Captcha(t *testing.T) {
	t.Run("rejected token stops the pipeline", func(t *testing.T) {
		f := newSubmitFixture()
		f.captcha.On("Verify", mock.Anything, "tok-valid", "203.0.113.9").Return(false, nil)

		result, err := f.service.Submit(context.Background(), validSubmission())

		require.NoError(t, err)
		assert.Equal(t, ResultInvalid, result.Status)
		assert.Equal(t, "captcha_failed", result.ErrorCode)
		f.artists.AssertNotCalled(t, "FindByHandle")
		f.messages.AssertNotCalled(t, "Insert")
	})

	t.Run("verification outage fails closed", func(t *testing.T) {
		f := newSubmitFixture()
		f.captcha.On("Verify", mock.Anything, mock.Anything, mock.Anything).
			Return(false, errors.New("siteverify timeout"))

		result, err := f.service.Submit(context.Background(), validSubmission())

		require.NoError(t, err)
		assert.Equal(t, ResultInvalid, result.Status)
		assert.Equal(t, "captcha_failed", result.ErrorCode)
	})
}

func TestSubmitService_ArtistUnavailable(t *testing.T) {
	t.Run("unknown handle", func(t *testing.T) {
		f := newSubmitFixture()
		f.captcha.On("Verify", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
		f.artists.On("FindByHandle", mock.Anything, "luna").Return(nil, shared.ErrNotFound)

		result, err := f.service.Submit(context.Background(), validSubmission())

		require.NoError(t, err)
		assert.Equal(t, ResultUnavailable, result.Status)
		assert.Equal(t, "contact_unavailable", result.ErrorCode)
		f.messages.AssertNotCalled(t, "Insert")
	})

	t.Run("plan without inbound contact gets the identical response", func(t *testing.T) {
		f := newSubmitFixture()
		target := contactableArtist()
		target.Plan = artist.PlanFree

		f.captcha.On("Verify", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
		f.artists.On("FindByHandle", mock.Anything, "luna").Return(target, nil)
		f.blocklist.On("IsBlocked", mock.Anything, target.ID, mock.Anything).Return(false, nil)
		f.entitlements.On("HasFeature", mock.Anything, artist.PlanFree, billing.FeatureInboundContact).Return(false, nil)
		f.messages.On("Insert", mock.Anything, mock.MatchedBy(func(m *contact.Message) bool {
			return m.Status == contact.StatusRejected && m.ErrorCode == "contact_unavailable"
		})).Return(nil)

		result, err := f.service.Submit(context.Background(), validSubmission())

		require.NoError(t, err)
		assert.Equal(t, ResultUnavailable, result.Status)
		assert.Equal(t, "contact_unavailable", result.ErrorCode)
		f.messages.AssertExpectations(t)
		f.sender.AssertNotCalled(t, "Send")
	})

	t.Run("contact switched off gets the identical response", func(t *testing.T) {
		f := newSubmitFixture()
		target := contactableArtist()
		target.ContactEnabled = false

		f.captcha.On("Verify", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
		f.artists.On("FindByHandle", mock.Anything, "luna").Return(target, nil)
		f.blocklist.On("IsBlocked", mock.Anything, target.ID, mock.Anything).Return(false, nil)
		f.entitlements.On("HasFeature", mock.Anything, artist.PlanStandard, billing.FeatureInboundContact).Return(true, nil)
		f.messages.On("Insert", mock.Anything, mock.Anything).Return(nil)

		result, err := f.service.Submit(context.Background(), validSubmission())

		require.NoError(t, err)
		assert.Equal(t, ResultUnavailable, result.Status)
		assert.Equal(t, "contact_unavailable", result.ErrorCode)
	})
}

func TestSubmitService_Blocklist(t *testing.T) {
	t.Run("blocked sender is masked as success", func(t *testing.T) {
		f := newSubmitFixture()
		target := contactableArtist()

		f.captcha.On("Verify", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
		f.artists.On("FindByHandle", mock.Anything, "luna").Return(target, nil)
		f.blocklist.On("IsBlocked", mock.Anything, target.ID, mock.MatchedBy(func(hashes []string) bool {
			return len(hashes) == 2
		})).Return(true, nil)
		f.messages.On("Insert", mock.Anything, mock.MatchedBy(func(m *contact.Message) bool {
			return m.Status == contact.StatusRejected && m.ErrorCode == "blocked"
		})).Return(nil)

		result, err := f.service.Submit(context.Background(), validSubmission())

		require.NoError(t, err)
		assert.Equal(t, ResultOK, result.Status)
		f.messages.AssertExpectations(t)
		f.entitlements.AssertNotCalled(t, "HasFeature")
		f.sender.AssertNotCalled(t, "Send")
	})
}

func TestSubmitService_RateLimits(t *testing.T) {
	t.Run("per-email-per-artist threshold writes a throttled row", func(t *testing.T) {
		f := newSubmitFixture()
		target := contactableArtist()

		f.captcha.On("Verify", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
		f.artists.On("FindByHandle", mock.Anything, "luna").Return(target, nil)
		f.blocklist.On("IsBlocked", mock.Anything, target.ID, mock.Anything).Return(false, nil)
		f.entitlements.On("HasFeature", mock.Anything, artist.PlanStandard, billing.FeatureInboundContact).Return(true, nil)

		// Global email count under threshold, artist-scoped count at it
		f.messages.On("CountByEmailHash", mock.Anything, mock.Anything, (*uuid.UUID)(nil), mock.Anything).
			Return(int64(3), nil)
		f.messages.On("CountByEmailHash", mock.Anything, mock.Anything, &target.ID, mock.Anything).
			Return(int64(2), nil)
		f.messages.On("Insert", mock.Anything, mock.MatchedBy(func(m *contact.Message) bool {
			return m.Status == contact.StatusThrottled && m.ErrorCode == "limit_email_artist"
		})).Return(nil)

		result, err := f.service.Submit(context.Background(), validSubmission())

		require.NoError(t, err)
		assert.Equal(t, ResultOK, result.Status)
		f.messages.AssertExpectations(t)
		f.sender.AssertNotCalled(t, "Send")
	})

	t.Run("counts under every threshold proceed to delivery", func(t *testing.T) {
		f := newSubmitFixture()
		target := contactableArtist()

		f.captcha.On("Verify", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
		f.artists.On("FindByHandle", mock.Anything, "luna").Return(target, nil)
		f.blocklist.On("IsBlocked", mock.Anything, target.ID, mock.Anything).Return(false, nil)
		f.entitlements.On("HasFeature", mock.Anything, artist.PlanStandard, billing.FeatureInboundContact).Return(true, nil)
		f.messages.On("CountByEmailHash", mock.Anything, mock.Anything, (*uuid.UUID)(nil), mock.Anything).Return(int64(4), nil)
		f.messages.On("CountByEmailHash", mock.Anything, mock.Anything, &target.ID, mock.Anything).Return(int64(1), nil)
		f.messages.On("CountByIPHash", mock.Anything, mock.Anything, (*uuid.UUID)(nil), mock.Anything).Return(int64(9), nil)
		f.messages.On("CountByIPHash", mock.Anything, mock.Anything, &target.ID, mock.Anything).Return(int64(2), nil)
		f.messages.On("Insert", mock.Anything, mock.MatchedBy(func(m *contact.Message) bool {
			return m.Status == contact.StatusAccepted
		})).Return(nil)
		f.directory.On("LookupEmail", mock.Anything, target.AuthUserID).Return("luna@example.com", nil)
		f.sender.On("Send", mock.Anything, mock.Anything).Return("re_123", nil)
		f.messages.On("Update", mock.Anything, mock.MatchedBy(func(m *contact.Message) bool {
			return m.Status == contact.StatusSent && m.ResendID == "re_123"
		})).Return(nil)

		result, err := f.service.Submit(context.Background(), validSubmission())

		require.NoError(t, err)
		assert.Equal(t, ResultOK, result.Status)
		f.messages.AssertExpectations(t)
	})
}

func TestSubmitService_Delivery(t *testing.T) {
	setupDeliverable := func(f *submitFixture, target *artist.Artist) {
		f.captcha.On("Verify", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
		f.artists.On("FindByHandle", mock.Anything, "luna").Return(target, nil)
		f.blocklist.On("IsBlocked", mock.Anything, target.ID, mock.Anything).Return(false, nil)
		f.entitlements.On("HasFeature", mock.Anything, artist.PlanStandard, billing.FeatureInboundContact).Return(true, nil)
		f.allowCounts()
	}

	t.Run("successful send updates the row to sent", func(t *testing.T) {
		f := newSubmitFixture()
		target := contactableArtist()
		setupDeliverable(f, target)

		f.messages.On("Insert", mock.Anything, mock.Anything).Return(nil)
		f.directory.On("LookupEmail", mock.Anything, target.AuthUserID).Return("luna@example.com", nil)
		f.sender.On("Send", mock.Anything, mock.MatchedBy(func(out email.OutboundMessage) bool {
			return out.To == "luna@example.com" && out.ReplyTo == "fan@example.com"
		})).Return("re_abc", nil)
		f.messages.On("Update", mock.Anything, mock.MatchedBy(func(m *contact.Message) bool {
			return m.Status == contact.StatusSent && m.ResendID == "re_abc"
		})).Return(nil)

		result, err := f.service.Submit(context.Background(), validSubmission())

		require.NoError(t, err)
		assert.Equal(t, ResultOK, result.Status)
		f.messages.AssertExpectations(t)
	})

	t.Run("send failure is audited and masked", func(t *testing.T) {
		f := newSubmitFixture()
		target := contactableArtist()
		setupDeliverable(f, target)

		f.messages.On("Insert", mock.Anything, mock.Anything).Return(nil)
		f.directory.On("LookupEmail", mock.Anything, target.AuthUserID).Return("luna@example.com", nil)
		f.sender.On("Send", mock.Anything, mock.Anything).Return("", errors.New("provider down"))
		f.messages.On("Update", mock.Anything, mock.MatchedBy(func(m *contact.Message) bool {
			return m.Status == contact.StatusFailed && m.ErrorCode == "send_failed"
		})).Return(nil)

		result, err := f.service.Submit(context.Background(), validSubmission())

		require.NoError(t, err)
		assert.Equal(t, ResultOK, result.Status)
		f.messages.AssertExpectations(t)
	})

	t.Run("recipient lookup failure is audited and masked", func(t *testing.T) {
		f := newSubmitFixture()
		target := contactableArtist()
		setupDeliverable(f, target)

		f.messages.On("Insert", mock.Anything, mock.Anything).Return(nil)
		f.directory.On("LookupEmail", mock.Anything, target.AuthUserID).Return("", errors.New("directory down"))
		f.messages.On("Update", mock.Anything, mock.MatchedBy(func(m *contact.Message) bool {
			return m.Status == contact.StatusFailed && m.ErrorCode == "recipient_lookup_failed"
		})).Return(nil)

		result, err := f.service.Submit(context.Background(), validSubmission())

		require.NoError(t, err)
		assert.Equal(t, ResultOK, result.Status)
		f.sender.AssertNotCalled(t, "Send")
		f.messages.AssertExpectations(t)
	})
}

func TestSubmitService_InternalFailures(t *testing.T) {
	t.Run("artist lookup error surfaces", func(t *testing.T) {
		f := newSubmitFixture()
		f.captcha.On("Verify", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
		f.artists.On("FindByHandle", mock.Anything, "luna").Return(nil, errors.New("db down"))

		result, err := f.service.Submit(context.Background(), validSubmission())

		assert.Nil(t, result)
		assert.Error(t, err)
	})

	t.Run("accepted insert error surfaces", func(t *testing.T) {
		f := newSubmitFixture()
		target := contactableArtist()
		f.captcha.On("Verify", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
		f.artists.On("FindByHandle", mock.Anything, "luna").Return(target, nil)
		f.blocklist.On("IsBlocked", mock.Anything, target.ID, mock.Anything).Return(false, nil)
		f.entitlements.On("HasFeature", mock.Anything, artist.PlanStandard, billing.FeatureInboundContact).Return(true, nil)
		f.allowCounts()
		f.messages.On("Insert", mock.Anything, mock.Anything).Return(errors.New("db down"))

		result, err := f.service.Submit(context.Background(), validSubmission())

		assert.Nil(t, result)
		assert.Error(t, err)
		f.sender.AssertNotCalled(t, "Send")
	})
}
