package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// credentialSeparator joins identity and plaintext into a single HMAC message.
const credentialSeparator = "."

// CredentialHasher derives the storable credential from an identity and a
// plaintext password. The transform is a keyed HMAC-SHA256 digest and is
// deterministic: login re-derives the digest and matches it against the store
// in a single query, so the same inputs must always yield the same output.
type CredentialHasher struct {
	secret []byte
}

// NewCredentialHasher wraps the process-wide hashing secret. The config layer
// guarantees the secret is present before this is ever constructed.
func NewCredentialHasher(secret string) *CredentialHasher {
	return &CredentialHasher{secret: []byte(secret)}
}

// Hash returns the hex digest of identity and plaintext under the secret key.
func (h *CredentialHasher) Hash(identity, plaintext string) string {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(identity + credentialSeparator + plaintext))

	return hex.EncodeToString(mac.Sum(nil))
}
