package domain

import "context"

// AccountStore is the engine's view of durable account state: verified
// accounts, pending accounts and recovery nonces. Implementations must make
// every Consume* call a single atomic find-and-delete so that exactly one of
// two concurrent callers wins a given token or nonce.
type AccountStore interface {
	// GetAccount returns the verified account for identity, or nil if absent.
	GetAccount(ctx context.Context, identity string) (*Account, error)
	// GetAccountByCredentials matches identity and credential hash in one
	// query; nil means no account matches the pair.
	GetAccountByCredentials(ctx context.Context, identity, credentialHash string) (*Account, error)
	// CreatePending stores a new pending account.
	CreatePending(ctx context.Context, pending *PendingAccount) error
	// PromotePending atomically consumes the pending account holding the
	// verification token and creates the verified account. Nil means no
	// pending account held the token. Either both writes happen or neither.
	PromotePending(ctx context.Context, token string) (*Account, error)
	// CreateRecoveryNonce stores a new recovery nonce.
	CreateRecoveryNonce(ctx context.Context, nonce *RecoveryNonce) error
	// ConsumeRecoveryNonce atomically finds and deletes the nonce; nil means
	// no nonce matched.
	ConsumeRecoveryNonce(ctx context.Context, nonce string) (*RecoveryNonce, error)
	// UpdateCredential replaces the credential hash of a verified account.
	// Returns the updated account, or nil if the identity is unknown.
	UpdateCredential(ctx context.Context, identity, credentialHash string) (*Account, error)
}

// SessionStore is the engine's view of active sessions, keyed both by token
// and by owning identity.
type SessionStore interface {
	// GetSessionByIdentity returns the active session for identity, or nil.
	GetSessionByIdentity(ctx context.Context, identity string) (*Session, error)
	// CreateSession stores a new session. If a concurrent login already
	// created one for the same identity, the stored winner is returned
	// instead of the argument.
	CreateSession(ctx context.Context, session *Session) (*Session, error)
	// DeleteSession atomically finds and deletes the session holding the
	// token; nil means no session held it.
	DeleteSession(ctx context.Context, token string) (*Session, error)
}
