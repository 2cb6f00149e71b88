// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/PourroyJean/babymiam-sub000/internal/auth"
)

// AccountRepository implements auth.AccountRepository using PostgreSQL.
type AccountRepository struct {
	db DB
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create stores a new account. A unique violation on the email index is
// mapped to auth.ErrEmailTaken.
func (r *AccountRepository) Create(ctx context.Context, account *auth.Account) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO accounts (
			id, email, password_hash, status, session_version,
			email_verified_at, share_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		account.ID.String(),
		account.Email,
		account.PasswordHash,
		string(account.Status),
		account.SessionVersion,
		account.EmailVerifiedAt,
		account.ShareID,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("ACCOUNT_EMAIL_TAKEN").
				With("email", account.Email).
				Wrap(auth.ErrEmailTaken)
		}
		return oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "insert account").
			Wrap(err)
	}
	return nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, email, password_hash, status, session_version,
		       email_verified_at, share_id, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`, id.String())

	account, err := r.scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_ID_FAILED").
			With("operation", "get account by id").
			With("id", id.String()).
			Wrap(err)
	}
	return account, nil
}

// GetByEmail retrieves an account by email (case-insensitive).
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*auth.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, email, password_hash, status, session_version,
		       email_verified_at, share_id, created_at, updated_at
		FROM accounts
		WHERE LOWER(email) = LOWER($1)
	`, email)

	account, err := r.scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_EMAIL_FAILED").
			With("operation", "get account by email").
			Wrap(err)
	}
	return account, nil
}

// GetByShareID retrieves an account by its public share id.
func (r *AccountRepository) GetByShareID(ctx context.Context, shareID string) (*auth.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, email, password_hash, status, session_version,
		       email_verified_at, share_id, created_at, updated_at
		FROM accounts
		WHERE share_id = $1
	`, shareID)

	account, err := r.scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_SHARE_ID_FAILED").
			With("operation", "get account by share id").
			Wrap(err)
	}
	return account, nil
}

// UpdatePassword sets a new password hash and increments session_version in
// the same statement, returning the version the database produced. The
// increment is computed by the database, so two concurrent credential changes
// each observe a strictly higher version.
func (r *AccountRepository) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) (int64, error) {
	var version int64
	err := r.db.QueryRow(ctx, `
		UPDATE accounts
		SET password_hash = $2,
		    session_version = session_version + 1,
		    updated_at = $3
		WHERE id = $1
		RETURNING session_version
	`, id.String(), passwordHash, time.Now()).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return 0, oops.Code("ACCOUNT_UPDATE_PASSWORD_FAILED").
			With("operation", "update password").
			With("id", id.String()).
			Wrap(err)
	}
	return version, nil
}

// BumpSessionVersion atomically increments session_version.
func (r *AccountRepository) BumpSessionVersion(ctx context.Context, id ulid.ULID) error {
	result, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET session_version = session_version + 1,
		    updated_at = $2
		WHERE id = $1
	`, id.String(), time.Now())
	if err != nil {
		return oops.Code("ACCOUNT_BUMP_VERSION_FAILED").
			With("operation", "bump session version").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// MarkEmailVerified sets email_verified_at if not already set. Re-verifying
// is a no-op, not an error, so the operation is idempotent.
func (r *AccountRepository) MarkEmailVerified(ctx context.Context, id ulid.ULID, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET email_verified_at = $2,
		    updated_at = $2
		WHERE id = $1 AND email_verified_at IS NULL
	`, id.String(), at)
	if err != nil {
		return oops.Code("ACCOUNT_MARK_VERIFIED_FAILED").
			With("operation", "mark email verified").
			With("id", id.String()).
			Wrap(err)
	}
	return nil
}

// SetShareID replaces the share id. A nil shareID disables sharing.
func (r *AccountRepository) SetShareID(ctx context.Context, id ulid.ULID, shareID *string) error {
	result, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET share_id = $2,
		    updated_at = $3
		WHERE id = $1
	`, id.String(), shareID, time.Now())
	if err != nil {
		return oops.Code("ACCOUNT_SET_SHARE_ID_FAILED").
			With("operation", "set share id").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// scanAccount scans a single row into an Account.
// Callers are responsible for handling pgx.ErrNoRows.
func (r *AccountRepository) scanAccount(row pgx.Row) (*auth.Account, error) {
	var (
		idStr           string
		email           string
		passwordHash    string
		status          string
		sessionVersion  int64
		emailVerifiedAt *time.Time
		shareID         *string
		createdAt       time.Time
		updatedAt       time.Time
	)

	err := row.Scan(&idStr, &email, &passwordHash, &status, &sessionVersion,
		&emailVerifiedAt, &shareID, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with context-specific info
		}
		return nil, oops.Code("ACCOUNT_SCAN_FAILED").
			With("operation", "scan account").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("ACCOUNT_INVALID_ID").
			With("id", idStr).
			Wrap(err)
	}

	return &auth.Account{
		ID:              id,
		Email:           email,
		PasswordHash:    passwordHash,
		Status:          auth.AccountStatus(status),
		SessionVersion:  sessionVersion,
		EmailVerifiedAt: emailVerifiedAt,
		ShareID:         shareID,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}, nil
}

// Compile-time interface check.
var _ auth.AccountRepository = (*AccountRepository)(nil)
