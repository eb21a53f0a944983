package service

//go:generate mockgen -destination=../../mocks/mock_stores.go -package=mocks github.com/PYROP3/pets-io/internal/account/domain AccountStore,SessionStore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PYROP3/pets-io/internal/account/domain"
	"github.com/PYROP3/pets-io/internal/account/dto"
	autherror "github.com/PYROP3/pets-io/internal/errors"
	"github.com/PYROP3/pets-io/pkg/constant"
	"github.com/google/uuid"
)

// AuthService orchestrates the account and session lifecycle: registration,
// verification, login, logout and password recovery. It is the sole writer of
// accounts, pending accounts, sessions and recovery nonces; the stores carry
// no business logic. All expected outcomes are reported as sentinel errors
// from internal/errors, store failures are wrapped and surface as unknown.
type AuthService struct {
	accounts domain.AccountStore
	sessions domain.SessionStore
	tokens   TokenGenerator
	hasher   *CredentialHasher
}

func NewAuthService(accounts domain.AccountStore, sessions domain.SessionStore, tokens TokenGenerator, hasher *CredentialHasher) *AuthService {
	return &AuthService{
		accounts: accounts,
		sessions: sessions,
		tokens:   tokens,
		hasher:   hasher,
	}
}

// Register creates a pending account for later verification. The conflict
// check runs against verified accounts only: a pending registration for the
// same identity does not block a second one, and the verification step
// resolves whichever token arrives first.
func (s *AuthService) Register(ctx context.Context, input dto.RegisterInput) (*domain.PendingAccount, error) {
	existing, err := s.accounts.GetAccount(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check identity %s: %w", input.Email, err)
	}
	if existing != nil {
		slog.Info("registration requested for identity already in use", slog.String("identity", input.Email))
		return nil, autherror.ErrIdentityInUse
	}

	pending := &domain.PendingAccount{
		Account: domain.Account{
			Identity:       input.Email,
			Name:           input.Name,
			CredentialHash: s.hasher.Hash(input.Email, input.Password),
			PetCount:       input.Pets,
			DeviceCount:    constant.DefaultDeviceCount,
		},
		VerificationToken: s.tokens.Generate(constant.VerificationTokenLength),
		CreatedAt:         time.Now(),
	}

	slog.Info("creating pending account", slog.String("identity", pending.Identity))
	if err := s.accounts.CreatePending(ctx, pending); err != nil {
		return nil, fmt.Errorf("failed to create pending account: %w", err)
	}

	return pending, nil
}

// VerifyAccount consumes a verification token and promotes the matching
// pending account into a verified one. The consume-and-promote is a single
// atomic move in the store, so a token is honored exactly once and a crash
// cannot lose the account between the two writes.
func (s *AuthService) VerifyAccount(ctx context.Context, token string) (*domain.Account, error) {
	if token == "" {
		return nil, autherror.ErrMalformedToken
	}

	account, err := s.accounts.PromotePending(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to promote pending account: %w", err)
	}
	if account == nil {
		return nil, autherror.ErrValidationFailed
	}

	slog.Info("verified account", slog.String("identity", account.Identity))

	return account, nil
}

// Authenticate verifies credentials and returns the account together with its
// session. Identity and credential hash are matched in one store query, so an
// unknown identity and a wrong password are indistinguishable to the caller.
// Login is idempotent: an existing session is returned as is, with its
// original token and timestamp.
func (s *AuthService) Authenticate(ctx context.Context, input dto.LoginInput) (*domain.Account, *domain.Session, error) {
	account, err := s.accounts.GetAccountByCredentials(ctx, input.Email, s.hasher.Hash(input.Email, input.Password))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check credentials: %w", err)
	}
	if account == nil {
		return nil, nil, autherror.ErrInvalidCredentials
	}

	existing, err := s.sessions.GetSessionByIdentity(ctx, account.Identity)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check for active session: %w", err)
	}
	if existing != nil {
		slog.Debug("session already active", slog.String("identity", account.Identity))
		return account, existing, nil
	}

	session, err := s.sessions.CreateSession(ctx, &domain.Session{
		ID:        uuid.NewString(),
		Identity:  account.Identity,
		Token:     s.tokens.Generate(constant.AuthTokenLength),
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("created session", slog.String("identity", account.Identity))

	return account, session, nil
}

// Deauthenticate destroys the session presented in the Authorization header.
// A second call with the same token finds nothing and reports
// ErrSessionNotFound.
func (s *AuthService) Deauthenticate(ctx context.Context, authorization string) error {
	token, err := ParseAuthToken(authorization)
	if err != nil {
		return err
	}

	session, err := s.sessions.DeleteSession(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	if session == nil {
		return autherror.ErrSessionNotFound
	}

	slog.Info("destroyed session", slog.String("identity", session.Identity))

	return nil
}

// RequestPasswordRecovery issues a single-use nonce for a verified account.
// The account is returned alongside so the caller can compose the recovery
// message.
func (s *AuthService) RequestPasswordRecovery(ctx context.Context, identity string) (*domain.RecoveryNonce, *domain.Account, error) {
	account, err := s.accounts.GetAccount(ctx, identity)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up identity %s: %w", identity, err)
	}
	if account == nil {
		slog.Info("password recovery requested for unknown identity", slog.String("identity", identity))
		return nil, nil, autherror.ErrNoSuchIdentity
	}

	nonce := &domain.RecoveryNonce{
		ID:        uuid.NewString(),
		Identity:  account.Identity,
		Nonce:     s.tokens.Generate(constant.AuthTokenLength),
		CreatedAt: time.Now(),
	}

	if err := s.accounts.CreateRecoveryNonce(ctx, nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to create recovery nonce: %w", err)
	}

	slog.Info("created password recovery nonce", slog.String("identity", account.Identity))

	return nonce, account, nil
}

// ResetPassword consumes a recovery nonce and rewrites the owning account's
// credential. The new plaintext goes through the credential hash like any
// other write; the store never sees it raw. No session is created, the caller
// must authenticate again.
func (s *AuthService) ResetPassword(ctx context.Context, nonce, newPassword string) error {
	consumed, err := s.accounts.ConsumeRecoveryNonce(ctx, nonce)
	if err != nil {
		return fmt.Errorf("failed to consume recovery nonce: %w", err)
	}
	if consumed == nil {
		return autherror.ErrResetFailed
	}

	account, err := s.accounts.UpdateCredential(ctx, consumed.Identity, s.hasher.Hash(consumed.Identity, newPassword))
	if err != nil {
		return fmt.Errorf("failed to update credential: %w", err)
	}
	if account == nil {
		// Nonce outlived its account.
		return autherror.ErrResetFailed
	}

	slog.Info("reset password", slog.String("identity", consumed.Identity))

	return nil
}

// ParseAuthToken extracts the session token from a raw Authorization header
// value. The header must carry the Bearer prefix followed by a token of the
// exact expected length; anything else is rejected before any store lookup.
func ParseAuthToken(authorization string) (string, error) {
	if !strings.HasPrefix(authorization, constant.AuthTokenPrefix) {
		return "", autherror.ErrMalformedToken
	}

	token := authorization[len(constant.AuthTokenPrefix):]
	if len(token) != constant.AuthTokenLength {
		return "", autherror.ErrMalformedToken
	}

	return token, nil
}
