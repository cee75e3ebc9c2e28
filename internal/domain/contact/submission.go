package contact

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sunroad/backend/internal/domain/shared"
)

// Validation error codes returned verbatim to the caller in 400 responses
const (
	CodeInvalidHandle   = "invalid_handle"
	CodeInvalidName     = "invalid_name"
	CodeInvalidEmail    = "invalid_email"
	CodeInvalidSubject  = "invalid_subject"
	CodeInvalidMessage  = "invalid_message"
	CodeCaptchaRequired = "captcha_required"
	CodeCaptchaFailed   = "captcha_failed"
)

// CodeContactUnavailable covers both "no such artist" and "artist exists but
// contact disallowed" so callers cannot enumerate handles.
const CodeContactUnavailable = "contact_unavailable"

// Field limits for a contact submission
const (
	maxHandleLen  = 64
	maxNameLen    = 120
	maxEmailLen   = 320
	maxSubjectLen = 160
	minMessageLen = 10
	maxMessageLen = 4000
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Submission carries the raw, caller-supplied fields of one contact attempt
type Submission struct {
	ArtistHandle   string
	FromName       string
	FromEmail      string
	Subject        string
	Message        string
	TurnstileToken string
	RemoteIP       string
	UserAgent      string
}

// Validate checks every field rule before any side effect occurs. The first
// failing rule wins and its code is safe to reveal to the caller. Length
// limits count characters, not bytes, so multibyte input is not penalized.
func (s *Submission) Validate() *shared.DomainError {
	if l := utf8.RuneCountInString(s.ArtistHandle); l < 1 || l > maxHandleLen {
		return shared.NewDomainError(CodeInvalidHandle, "artist handle must be 1-64 characters")
	}
	if l := utf8.RuneCountInString(s.FromName); l < 1 || l > maxNameLen || containsNewline(s.FromName) {
		return shared.NewDomainError(CodeInvalidName, "sender name must be 1-120 characters without line breaks")
	}
	if utf8.RuneCountInString(s.FromEmail) > maxEmailLen || !emailPattern.MatchString(s.FromEmail) {
		return shared.NewDomainError(CodeInvalidEmail, "sender email is not a valid address")
	}
	if l := utf8.RuneCountInString(s.Subject); l < 1 || l > maxSubjectLen || containsNewline(s.Subject) {
		return shared.NewDomainError(CodeInvalidSubject, "subject must be 1-160 characters without line breaks")
	}
	if l := utf8.RuneCountInString(strings.TrimSpace(s.Message)); l < minMessageLen || l > maxMessageLen {
		return shared.NewDomainError(CodeInvalidMessage, "message must be 10-4000 characters")
	}
	if s.TurnstileToken == "" {
		return shared.NewDomainError(CodeCaptchaRequired, "captcha token is required")
	}
	return nil
}

func containsNewline(s string) bool {
	return strings.ContainsAny(s, "\r\n")
}
