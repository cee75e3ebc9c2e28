package contact

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// IdentityHasher produces peppered hashes of sender identities. Raw emails
// and IPs are never persisted for blocklist or rate-limit purposes; only the
// HMAC-SHA-256 of the identity keyed with a server-side pepper is stored, so
// hashes cannot be reversed or correlated without the pepper.
type IdentityHasher struct {
	pepper []byte
}

// NewIdentityHasher creates a hasher with the given server-side pepper
func NewIdentityHasher(pepper string) *IdentityHasher {
	return &IdentityHasher{pepper: []byte(pepper)}
}

// HashEmail hashes a sender email. Addresses are lowercased and trimmed first
// so the same mailbox always maps to the same hash.
func (h *IdentityHasher) HashEmail(email string) string {
	return h.hash("email:" + strings.ToLower(strings.TrimSpace(email)))
}

// HashIP hashes a sender IP address
func (h *IdentityHasher) HashIP(ip string) string {
	return h.hash("ip:" + strings.TrimSpace(ip))
}

func (h *IdentityHasher) hash(value string) string {
	mac := hmac.New(sha256.New, h.pepper)
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}
