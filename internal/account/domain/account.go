package domain

import "time"

// Account is a verified account. Identity is the primary key, an email-shaped
// string unique across all verified accounts. CredentialHash is the keyed
// digest of (identity, password); the plaintext is never stored.
type Account struct {
	Identity       string
	Name           string
	CredentialHash string
	PetCount       int
	DeviceCount    int
}

// PendingAccount is a registered-but-not-yet-verified account. It carries the
// one-time verification token and exists only between registration and
// verification. Identity is not unique among pending accounts: two
// back-to-back registrations for the same identity both create a record, and
// only the conflict check against verified accounts gates registration.
type PendingAccount struct {
	Account
	VerificationToken string
	CreatedAt         time.Time
}

// Session is proof of ongoing authentication. Token is a 64-char hex bearer
// token. At most one active session exists per identity; a repeated login
// returns the existing session unchanged.
type Session struct {
	ID        string
	Identity  string
	Token     string
	CreatedAt time.Time
}

// RecoveryNonce authorizes exactly one password reset. Consuming it removes it
// from the store atomically with the lookup.
type RecoveryNonce struct {
	ID        string
	Identity  string
	Nonce     string
	CreatedAt time.Time
}
