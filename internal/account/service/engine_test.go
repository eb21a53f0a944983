package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PYROP3/pets-io/internal/account/domain"
	"github.com/PYROP3/pets-io/internal/account/dto"
	"github.com/PYROP3/pets-io/internal/account/service"
	autherror "github.com/PYROP3/pets-io/internal/errors"
	"github.com/PYROP3/pets-io/internal/mocks"
	"github.com/PYROP3/pets-io/pkg/constant"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestService(t *testing.T) (*service.AuthService, *mocks.MockAccountStore, *mocks.MockSessionStore, *mocks.MockTokenGenerator, *service.CredentialHasher) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockAccounts := mocks.NewMockAccountStore(ctrl)
	mockSessions := mocks.NewMockSessionStore(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	hasher := service.NewCredentialHasher(testSecret)

	s := service.NewAuthService(mockAccounts, mockSessions, mockTokens, hasher)

	return s, mockAccounts, mockSessions, mockTokens, hasher
}

func TestAuthService_Register_Success(t *testing.T) {
	s, mockAccounts, _, mockTokens, hasher := newTestService(t)

	input := dto.RegisterInput{
		Email:    "a@x.com",
		Name:     "A",
		Password: "pw",
		Pets:     2,
	}

	mockAccounts.EXPECT().GetAccount(gomock.Any(), input.Email).Return(nil, nil)
	mockTokens.EXPECT().Generate(constant.VerificationTokenLength).Return("aaaabbbbccccddddeeeeffff00001111")
	mockAccounts.EXPECT().CreatePending(gomock.Any(), gomock.Any()).Return(nil)

	pending, err := s.Register(context.Background(), input)

	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, input.Email, pending.Identity)
	assert.Equal(t, input.Name, pending.Name)
	assert.Equal(t, 2, pending.PetCount)
	assert.Equal(t, 0, pending.DeviceCount)
	assert.Equal(t, "aaaabbbbccccddddeeeeffff00001111", pending.VerificationToken)
	assert.Equal(t, hasher.Hash(input.Email, input.Password), pending.CredentialHash)
	assert.NotEqual(t, input.Password, pending.CredentialHash)
}

func TestAuthService_Register_IdentityInUse(t *testing.T) {
	s, mockAccounts, _, _, _ := newTestService(t)

	mockAccounts.EXPECT().GetAccount(gomock.Any(), "a@x.com").Return(&domain.Account{Identity: "a@x.com"}, nil)

	pending, err := s.Register(context.Background(), dto.RegisterInput{Email: "a@x.com", Password: "pw"})

	assert.ErrorIs(t, err, autherror.ErrIdentityInUse)
	assert.Nil(t, pending)
}

// The conflict check runs against verified accounts only: registering the same
// identity twice without verifying in between succeeds both times, creating
// two pending accounts with distinct tokens.
func TestAuthService_Register_TwiceWithoutVerification(t *testing.T) {
	s, mockAccounts, _, mockTokens, _ := newTestService(t)

	mockAccounts.EXPECT().GetAccount(gomock.Any(), "a@x.com").Return(nil, nil).Times(2)
	gomock.InOrder(
		mockTokens.EXPECT().Generate(constant.VerificationTokenLength).Return("11111111111111111111111111111111"),
		mockTokens.EXPECT().Generate(constant.VerificationTokenLength).Return("22222222222222222222222222222222"),
	)
	mockAccounts.EXPECT().CreatePending(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	first, err := s.Register(context.Background(), dto.RegisterInput{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)
	second, err := s.Register(context.Background(), dto.RegisterInput{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)

	assert.NotEqual(t, first.VerificationToken, second.VerificationToken)
}

func TestAuthService_Register_StoreError(t *testing.T) {
	s, mockAccounts, _, _, _ := newTestService(t)

	storeErr := errors.New("database error")
	mockAccounts.EXPECT().GetAccount(gomock.Any(), "a@x.com").Return(nil, storeErr)

	pending, err := s.Register(context.Background(), dto.RegisterInput{Email: "a@x.com", Password: "pw"})

	assert.ErrorIs(t, err, storeErr)
	assert.Nil(t, pending)
}

func TestAuthService_VerifyAccount_Success(t *testing.T) {
	s, mockAccounts, _, _, _ := newTestService(t)

	verified := &domain.Account{Identity: "a@x.com", Name: "A", PetCount: 2}
	mockAccounts.EXPECT().PromotePending(gomock.Any(), "sometoken").Return(verified, nil)

	account, err := s.VerifyAccount(context.Background(), "sometoken")

	require.NoError(t, err)
	assert.Equal(t, verified, account)
}

func TestAuthService_VerifyAccount_MissingToken(t *testing.T) {
	s, _, _, _, _ := newTestService(t)

	account, err := s.VerifyAccount(context.Background(), "")

	assert.ErrorIs(t, err, autherror.ErrMalformedToken)
	assert.Nil(t, account)
}

// A token is consumed on first use: presenting it again finds no pending
// account and fails validation.
func TestAuthService_VerifyAccount_TokenAlreadyConsumed(t *testing.T) {
	s, mockAccounts, _, _, _ := newTestService(t)

	gomock.InOrder(
		mockAccounts.EXPECT().PromotePending(gomock.Any(), "sometoken").Return(&domain.Account{Identity: "a@x.com"}, nil),
		mockAccounts.EXPECT().PromotePending(gomock.Any(), "sometoken").Return(nil, nil),
	)

	_, err := s.VerifyAccount(context.Background(), "sometoken")
	require.NoError(t, err)

	_, err = s.VerifyAccount(context.Background(), "sometoken")
	assert.ErrorIs(t, err, autherror.ErrValidationFailed)
}

func TestAuthService_VerifyAccount_PromotionFails(t *testing.T) {
	s, mockAccounts, _, _, _ := newTestService(t)

	storeErr := errors.New("database error")
	mockAccounts.EXPECT().PromotePending(gomock.Any(), "sometoken").Return(nil, storeErr)

	account, err := s.VerifyAccount(context.Background(), "sometoken")

	assert.ErrorIs(t, err, storeErr)
	assert.Nil(t, account)
}

func TestAuthService_Authenticate_NewSession(t *testing.T) {
	s, mockAccounts, mockSessions, mockTokens, hasher := newTestService(t)

	input := dto.LoginInput{Email: "a@x.com", Password: "pw"}
	stored := &domain.Account{Identity: "a@x.com", Name: "A", CredentialHash: hasher.Hash("a@x.com", "pw")}
	token := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

	mockAccounts.EXPECT().GetAccountByCredentials(gomock.Any(), input.Email, hasher.Hash(input.Email, input.Password)).Return(stored, nil)
	mockSessions.EXPECT().GetSessionByIdentity(gomock.Any(), "a@x.com").Return(nil, nil)
	mockTokens.EXPECT().Generate(constant.AuthTokenLength).Return(token)
	mockSessions.EXPECT().CreateSession(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, sess *domain.Session) (*domain.Session, error) {
			assert.Equal(t, "a@x.com", sess.Identity)
			assert.Equal(t, token, sess.Token)
			assert.NotEmpty(t, sess.ID)
			assert.NotZero(t, sess.CreatedAt)
			return sess, nil
		})

	account, session, err := s.Authenticate(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, stored, account)
	assert.Equal(t, token, session.Token)
}

// Login is idempotent: a second login returns the existing session with its
// original token and timestamp, without generating anything.
func TestAuthService_Authenticate_ExistingSession(t *testing.T) {
	s, mockAccounts, mockSessions, _, hasher := newTestService(t)

	input := dto.LoginInput{Email: "a@x.com", Password: "pw"}
	stored := &domain.Account{Identity: "a@x.com", CredentialHash: hasher.Hash("a@x.com", "pw")}
	existing := &domain.Session{
		ID:        "session-id",
		Identity:  "a@x.com",
		Token:     "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
		CreatedAt: time.Now().Add(-time.Hour),
	}

	mockAccounts.EXPECT().GetAccountByCredentials(gomock.Any(), input.Email, gomock.Any()).Return(stored, nil).Times(2)
	mockSessions.EXPECT().GetSessionByIdentity(gomock.Any(), "a@x.com").Return(existing, nil).Times(2)

	_, first, err := s.Authenticate(context.Background(), input)
	require.NoError(t, err)
	_, second, err := s.Authenticate(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, first.Token, second.Token)
	assert.Equal(t, existing.CreatedAt, second.CreatedAt)
}

// Wrong password and unknown identity take the same path and are
// indistinguishable: a single credentials query that matches nothing.
func TestAuthService_Authenticate_InvalidCredentials(t *testing.T) {
	s, mockAccounts, _, _, _ := newTestService(t)

	mockAccounts.EXPECT().GetAccountByCredentials(gomock.Any(), "a@x.com", gomock.Any()).Return(nil, nil)

	account, session, err := s.Authenticate(context.Background(), dto.LoginInput{Email: "a@x.com", Password: "wrong"})

	assert.ErrorIs(t, err, autherror.ErrInvalidCredentials)
	assert.Nil(t, account)
	assert.Nil(t, session)
}

func TestAuthService_Authenticate_SessionWriteFails(t *testing.T) {
	s, mockAccounts, mockSessions, mockTokens, hasher := newTestService(t)

	stored := &domain.Account{Identity: "a@x.com", CredentialHash: hasher.Hash("a@x.com", "pw")}
	storeErr := errors.New("database error")

	mockAccounts.EXPECT().GetAccountByCredentials(gomock.Any(), "a@x.com", gomock.Any()).Return(stored, nil)
	mockSessions.EXPECT().GetSessionByIdentity(gomock.Any(), "a@x.com").Return(nil, nil)
	mockTokens.EXPECT().Generate(constant.AuthTokenLength).Return("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
	mockSessions.EXPECT().CreateSession(gomock.Any(), gomock.Any()).Return(nil, storeErr)

	_, _, err := s.Authenticate(context.Background(), dto.LoginInput{Email: "a@x.com", Password: "pw"})

	assert.ErrorIs(t, err, storeErr)
}

func TestAuthService_Deauthenticate_Success(t *testing.T) {
	s, _, mockSessions, _, _ := newTestService(t)

	token := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	mockSessions.EXPECT().DeleteSession(gomock.Any(), token).Return(&domain.Session{Identity: "a@x.com", Token: token}, nil)

	err := s.Deauthenticate(context.Background(), "Bearer "+token)

	assert.NoError(t, err)
}

// Destroying a session is idempotent-by-failure: the second call with the same
// token finds nothing.
func TestAuthService_Deauthenticate_Twice(t *testing.T) {
	s, _, mockSessions, _, _ := newTestService(t)

	token := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	gomock.InOrder(
		mockSessions.EXPECT().DeleteSession(gomock.Any(), token).Return(&domain.Session{Token: token}, nil),
		mockSessions.EXPECT().DeleteSession(gomock.Any(), token).Return(nil, nil),
	)

	require.NoError(t, s.Deauthenticate(context.Background(), "Bearer "+token))
	assert.ErrorIs(t, s.Deauthenticate(context.Background(), "Bearer "+token), autherror.ErrSessionNotFound)
}

// Malformed presentation is rejected before any store round trip: no
// expectations are set on the session store.
func TestAuthService_Deauthenticate_MalformedToken(t *testing.T) {
	s, _, _, _, _ := newTestService(t)

	token := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	testCases := []struct {
		name          string
		authorization string
	}{
		{"missing header", ""},
		{"wrong prefix", "Basic " + token},
		{"no prefix", token},
		{"token too short", "Bearer " + token[:63]},
		{"token too long", "Bearer " + token + "0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.Deauthenticate(context.Background(), tc.authorization)
			assert.ErrorIs(t, err, autherror.ErrMalformedToken)
		})
	}
}

func TestAuthService_RequestPasswordRecovery_Success(t *testing.T) {
	s, mockAccounts, _, mockTokens, _ := newTestService(t)

	stored := &domain.Account{Identity: "a@x.com", Name: "A"}
	nonceValue := "fedcba9876543210fedcba9876543210fedcba9876543210fedcba9876543210"

	mockAccounts.EXPECT().GetAccount(gomock.Any(), "a@x.com").Return(stored, nil)
	mockTokens.EXPECT().Generate(constant.AuthTokenLength).Return(nonceValue)
	mockAccounts.EXPECT().CreateRecoveryNonce(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, n *domain.RecoveryNonce) error {
			assert.Equal(t, "a@x.com", n.Identity)
			assert.Equal(t, nonceValue, n.Nonce)
			assert.NotEmpty(t, n.ID)
			assert.NotZero(t, n.CreatedAt)
			return nil
		})

	nonce, account, err := s.RequestPasswordRecovery(context.Background(), "a@x.com")

	require.NoError(t, err)
	assert.Equal(t, nonceValue, nonce.Nonce)
	assert.Equal(t, stored, account)
}

func TestAuthService_RequestPasswordRecovery_UnknownIdentity(t *testing.T) {
	s, mockAccounts, _, _, _ := newTestService(t)

	mockAccounts.EXPECT().GetAccount(gomock.Any(), "ghost@x.com").Return(nil, nil)

	nonce, account, err := s.RequestPasswordRecovery(context.Background(), "ghost@x.com")

	assert.ErrorIs(t, err, autherror.ErrNoSuchIdentity)
	assert.Nil(t, nonce)
	assert.Nil(t, account)
}

// The new password must go through the credential hash before it reaches the
// store; the plaintext never does.
func TestAuthService_ResetPassword_HashesNewPassword(t *testing.T) {
	s, mockAccounts, _, _, hasher := newTestService(t)

	nonceValue := "fedcba9876543210fedcba9876543210fedcba9876543210fedcba9876543210"
	consumed := &domain.RecoveryNonce{ID: "nonce-id", Identity: "a@x.com", Nonce: nonceValue}
	expectedHash := hasher.Hash("a@x.com", "newpassword")

	mockAccounts.EXPECT().ConsumeRecoveryNonce(gomock.Any(), nonceValue).Return(consumed, nil)
	mockAccounts.EXPECT().UpdateCredential(gomock.Any(), "a@x.com", expectedHash).Return(&domain.Account{Identity: "a@x.com"}, nil)

	err := s.ResetPassword(context.Background(), nonceValue, "newpassword")

	assert.NoError(t, err)
}

// A nonce is single-use: the second reset attempt finds it already consumed.
func TestAuthService_ResetPassword_NonceAlreadyConsumed(t *testing.T) {
	s, mockAccounts, _, _, _ := newTestService(t)

	nonceValue := "fedcba9876543210fedcba9876543210fedcba9876543210fedcba9876543210"
	gomock.InOrder(
		mockAccounts.EXPECT().ConsumeRecoveryNonce(gomock.Any(), nonceValue).Return(&domain.RecoveryNonce{Identity: "a@x.com", Nonce: nonceValue}, nil),
		mockAccounts.EXPECT().ConsumeRecoveryNonce(gomock.Any(), nonceValue).Return(nil, nil),
	)
	mockAccounts.EXPECT().UpdateCredential(gomock.Any(), "a@x.com", gomock.Any()).Return(&domain.Account{Identity: "a@x.com"}, nil)

	require.NoError(t, s.ResetPassword(context.Background(), nonceValue, "newpassword"))
	assert.ErrorIs(t, s.ResetPassword(context.Background(), nonceValue, "newpassword"), autherror.ErrResetFailed)
}

func TestAuthService_ResetPassword_AccountGone(t *testing.T) {
	s, mockAccounts, _, _, _ := newTestService(t)

	nonceValue := "fedcba9876543210fedcba9876543210fedcba9876543210fedcba9876543210"
	mockAccounts.EXPECT().ConsumeRecoveryNonce(gomock.Any(), nonceValue).Return(&domain.RecoveryNonce{Identity: "gone@x.com", Nonce: nonceValue}, nil)
	mockAccounts.EXPECT().UpdateCredential(gomock.Any(), "gone@x.com", gomock.Any()).Return(nil, nil)

	err := s.ResetPassword(context.Background(), nonceValue, "newpassword")

	assert.ErrorIs(t, err, autherror.ErrResetFailed)
}

func TestParseAuthToken(t *testing.T) {
	token := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

	t.Run("valid", func(t *testing.T) {
		parsed, err := service.ParseAuthToken("Bearer " + token)
		require.NoError(t, err)
		assert.Equal(t, token, parsed)
	})

	t.Run("wrong length", func(t *testing.T) {
		_, err := service.ParseAuthToken("Bearer short")
		assert.ErrorIs(t, err, autherror.ErrMalformedToken)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		_, err := service.ParseAuthToken("Token " + token)
		assert.ErrorIs(t, err, autherror.ErrMalformedToken)
	})
}
