package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/PYROP3/pets-io/internal/account/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the slice of pgxpool.Pool the repository needs. pgxmock satisfies it
// in tests.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresRepository implements domain.AccountStore and domain.SessionStore on
// PostgreSQL. Token and nonce consumption are single DELETE ... RETURNING
// statements, so exactly one of two concurrent consumers wins.
type PostgresRepository struct {
	db DB
}

func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var (
	_ domain.AccountStore = (*PostgresRepository)(nil)
	_ domain.SessionStore = (*PostgresRepository)(nil)
)

func (r *PostgresRepository) GetAccount(ctx context.Context, identity string) (*domain.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT email, name, password, pets, devices
		FROM accounts
		WHERE email = $1
	`, identity)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account by identity: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) GetAccountByCredentials(ctx context.Context, identity, credentialHash string) (*domain.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT email, name, password, pets, devices
		FROM accounts
		WHERE email = $1 AND password = $2
	`, identity, credentialHash)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account by credentials: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) CreatePending(ctx context.Context, pending *domain.PendingAccount) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO pending_accounts (token, email, name, password, pets, devices, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, pending.VerificationToken, pending.Identity, pending.Name, pending.CredentialHash,
		pending.PetCount, pending.DeviceCount, pending.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create pending account: %w", err)
	}

	return nil
}

// PromotePending consumes the pending account holding token and creates the
// verified account in one transaction. Rolling back on any failure keeps the
// pending record intact, so there is no window in which the account exists in
// neither table.
func (r *PostgresRepository) PromotePending(ctx context.Context, token string) (*domain.Account, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin promotion: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		DELETE FROM pending_accounts
		WHERE token = $1
		RETURNING email, name, password, pets, devices
	`, token)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to consume verification token: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO accounts (email, name, password, pets, devices)
		VALUES ($1, $2, $3, $4, $5)
	`, account.Identity, account.Name, account.CredentialHash, account.PetCount, account.DeviceCount)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("identity %s already verified: %w", account.Identity, err)
		}
		return nil, fmt.Errorf("failed to create verified account: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit promotion: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) CreateRecoveryNonce(ctx context.Context, nonce *domain.RecoveryNonce) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO recovery_nonces (id, email, nonce, created_at)
		VALUES ($1, $2, $3, $4)
	`, nonce.ID, nonce.Identity, nonce.Nonce, nonce.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create recovery nonce: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ConsumeRecoveryNonce(ctx context.Context, nonce string) (*domain.RecoveryNonce, error) {
	row := r.db.QueryRow(ctx, `
		DELETE FROM recovery_nonces
		WHERE nonce = $1
		RETURNING id, email, nonce, created_at
	`, nonce)

	var consumed domain.RecoveryNonce
	err := row.Scan(&consumed.ID, &consumed.Identity, &consumed.Nonce, &consumed.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to consume recovery nonce: %w", err)
	}

	return &consumed, nil
}

func (r *PostgresRepository) UpdateCredential(ctx context.Context, identity, credentialHash string) (*domain.Account, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE accounts
		SET password = $2
		WHERE email = $1
		RETURNING email, name, password, pets, devices
	`, identity, credentialHash)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update credential: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) GetSessionByIdentity(ctx context.Context, identity string) (*domain.Session, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, email, token, created_at
		FROM sessions
		WHERE email = $1
	`, identity)

	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session by identity: %w", err)
	}

	return session, nil
}

// CreateSession inserts the session. The sessions table holds a unique
// constraint on identity; when two first logins race, the loser hits a unique
// violation and returns the row the winner inserted.
func (r *PostgresRepository) CreateSession(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sessions (id, email, token, created_at)
		VALUES ($1, $2, $3, $4)
	`, session.ID, session.Identity, session.Token, session.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			winner, ferr := r.GetSessionByIdentity(ctx, session.Identity)
			if ferr != nil {
				return nil, ferr
			}
			if winner != nil {
				return winner, nil
			}
		}
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

func (r *PostgresRepository) DeleteSession(ctx context.Context, token string) (*domain.Session, error) {
	row := r.db.QueryRow(ctx, `
		DELETE FROM sessions
		WHERE token = $1
		RETURNING id, email, token, created_at
	`, token)

	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to delete session: %w", err)
	}

	return session, nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	err := row.Scan(&account.Identity, &account.Name, &account.CredentialHash,
		&account.PetCount, &account.DeviceCount)
	if err != nil {
		return nil, err
	}

	return &account, nil
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var session domain.Session
	err := row.Scan(&session.ID, &session.Identity, &session.Token, &session.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &session, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
