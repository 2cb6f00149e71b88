// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// TokenPurpose distinguishes the two one-time token flows.
type TokenPurpose string

// One-time token purposes.
const (
	PurposePasswordReset     TokenPurpose = "password_reset"
	PurposeEmailVerification TokenPurpose = "email_verification"
)

// One-time token configuration.
const (
	// OneTimeTokenBytes is the raw entropy per token; 32 bytes is well above
	// the 128-bit floor and hex-encodes to 64 chars.
	OneTimeTokenBytes = 32

	// ResetTokenTTL is the validity window for password reset links.
	ResetTokenTTL = time.Hour

	// VerificationTokenTTL is the validity window for email verification links.
	VerificationTokenTTL = 48 * time.Hour
)

// OneTimeToken is a single-use, expiring credential. Only the SHA-256 hash of
// the raw value is ever persisted; the raw value goes into an emailed URL and
// must never be stored or logged.
type OneTimeToken struct {
	ID         ulid.ULID
	AccountID  ulid.ULID
	Purpose    TokenPurpose
	TokenHash  string
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

// NewOneTimeToken creates a validated OneTimeToken record.
func NewOneTimeToken(accountID ulid.ULID, purpose TokenPurpose, tokenHash string, expiresAt time.Time) (*OneTimeToken, error) {
	if accountID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("TOKEN_INVALID_ACCOUNT").Errorf("account ID cannot be zero")
	}
	if purpose != PurposePasswordReset && purpose != PurposeEmailVerification {
		return nil, oops.Code("TOKEN_INVALID_PURPOSE").Errorf("unknown token purpose: %s", purpose)
	}
	if tokenHash == "" {
		return nil, oops.Code("TOKEN_INVALID_HASH").Errorf("token hash cannot be empty")
	}
	if expiresAt.IsZero() {
		return nil, oops.Code("TOKEN_INVALID_EXPIRY").Errorf("expiry time cannot be zero")
	}

	return &OneTimeToken{
		ID:        ulid.Make(),
		AccountID: accountID,
		Purpose:   purpose,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

// IsExpired returns true if the token has expired.
func (t *OneTimeToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// IsConsumed returns true if the token has already been redeemed.
func (t *OneTimeToken) IsConsumed() bool {
	return t.ConsumedAt != nil
}

// GenerateOneTimeToken creates a secure random token and its hash.
// Returns (plaintext_token, sha256_hash, error). The plaintext goes to the
// user; only the hash is stored.
func GenerateOneTimeToken() (token, hash string, err error) {
	raw := make([]byte, OneTimeTokenBytes)
	if _, err = rand.Read(raw); err != nil {
		return "", "", oops.Code("TOKEN_GENERATE_FAILED").Wrap(err)
	}

	token = hex.EncodeToString(raw)
	hash = HashOneTimeToken(token)
	return token, hash, nil
}

// HashOneTimeToken computes the SHA-256 hash of a raw token for storage
// and lookup.
func HashOneTimeToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// OneTimeTokenRepository manages one-time token persistence.
type OneTimeTokenRepository interface {
	// Create stores a new token record.
	Create(ctx context.Context, token *OneTimeToken) error

	// Consume atomically marks the unconsumed, unexpired token matching hash
	// and purpose as consumed at the given time, returning the owning account
	// id. The validity check and the mark-consumed step are one conditional
	// UPDATE with an affected-row check, so of two concurrent redemptions
	// exactly one succeeds. Returns ErrNotFound (wrapped) when no row
	// qualifies: unknown, already consumed, and expired are indistinguishable.
	Consume(ctx context.Context, tokenHash string, purpose TokenPurpose, at time.Time) (ulid.ULID, error)

	// DeleteByAccountPurpose removes all tokens for an account and purpose.
	// Called when a new token is issued so only the newest link is live.
	DeleteByAccountPurpose(ctx context.Context, accountID ulid.ULID, purpose TokenPurpose) error

	// DeleteExpired removes expired tokens and returns the count.
	DeleteExpired(ctx context.Context) (int64, error)
}
