// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/PourroyJean/babymiam-sub000/internal/auth"
)

// OneTimeTokenRepository implements auth.OneTimeTokenRepository using
// PostgreSQL.
type OneTimeTokenRepository struct {
	db DB
}

// NewOneTimeTokenRepository creates a new OneTimeTokenRepository.
func NewOneTimeTokenRepository(db DB) *OneTimeTokenRepository {
	return &OneTimeTokenRepository{db: db}
}

// Create stores a new token record.
func (r *OneTimeTokenRepository) Create(ctx context.Context, token *auth.OneTimeToken) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO one_time_tokens (id, account_id, purpose, token_hash, expires_at, consumed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		token.ID.String(),
		token.AccountID.String(),
		string(token.Purpose),
		token.TokenHash,
		token.ExpiresAt,
		token.ConsumedAt,
		token.CreatedAt,
	)
	if err != nil {
		return oops.Code("TOKEN_CREATE_FAILED").
			With("operation", "insert one_time_token").
			With("purpose", string(token.Purpose)).
			Wrap(err)
	}
	return nil
}

// Consume atomically redeems the token matching hash and purpose. The
// validity predicate (unconsumed, unexpired) and the consumed_at write are a
// single UPDATE, so two concurrent redemptions of the same token cannot both
// see an affected row. Unknown, consumed and expired all return ErrNotFound
// with no distinction.
func (r *OneTimeTokenRepository) Consume(ctx context.Context, tokenHash string, purpose auth.TokenPurpose, at time.Time) (ulid.ULID, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE one_time_tokens
		SET consumed_at = $3
		WHERE token_hash = $1
		  AND purpose = $2
		  AND consumed_at IS NULL
		  AND expires_at > $3
		RETURNING account_id
	`, tokenHash, string(purpose), at)

	var accountIDStr string
	err := row.Scan(&accountIDStr)
	if errors.Is(err, pgx.ErrNoRows) {
		return ulid.ULID{}, oops.Code("TOKEN_NOT_REDEEMABLE").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return ulid.ULID{}, oops.Code("TOKEN_CONSUME_FAILED").
			With("operation", "consume one_time_token").
			With("purpose", string(purpose)).
			Wrap(err)
	}

	accountID, err := ulid.Parse(accountIDStr)
	if err != nil {
		return ulid.ULID{}, oops.Code("TOKEN_INVALID_ACCOUNT_ID").
			With("account_id", accountIDStr).
			Wrap(err)
	}
	return accountID, nil
}

// DeleteByAccountPurpose removes all tokens for an account and purpose.
// No ErrNotFound when nothing matched - an empty set is a valid state.
func (r *OneTimeTokenRepository) DeleteByAccountPurpose(ctx context.Context, accountID ulid.ULID, purpose auth.TokenPurpose) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM one_time_tokens WHERE account_id = $1 AND purpose = $2
	`, accountID.String(), string(purpose))
	if err != nil {
		return oops.Code("TOKEN_DELETE_FAILED").
			With("operation", "delete one_time_tokens by account and purpose").
			With("account_id", accountID.String()).
			Wrap(err)
	}
	return nil
}

// DeleteExpired removes all expired tokens and returns the count.
func (r *OneTimeTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.Exec(ctx, `
		DELETE FROM one_time_tokens WHERE expires_at < $1
	`, time.Now())
	if err != nil {
		return 0, oops.Code("TOKEN_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired one_time_tokens").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// Compile-time interface check.
var _ auth.OneTimeTokenRepository = (*OneTimeTokenRepository)(nil)
