// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"
)

// PasswordResetService issues and redeems password reset tokens.
type PasswordResetService struct {
	accounts AccountRepository
	tokens   OneTimeTokenRepository
	hasher   PasswordHasher
}

// NewPasswordResetService creates a new PasswordResetService.
func NewPasswordResetService(accounts AccountRepository, tokens OneTimeTokenRepository, hasher PasswordHasher) (*PasswordResetService, error) {
	if accounts == nil {
		return nil, oops.Errorf("accounts repository is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	return &PasswordResetService{accounts: accounts, tokens: tokens, hasher: hasher}, nil
}

// RequestReset issues a reset token for the account behind email and returns
// the plaintext token for the caller to embed in an emailed URL (sending is
// not this service's job). An unknown email returns ("", nil) so the caller's
// response is identical either way and accounts cannot be enumerated.
//
// Issuing deletes any prior outstanding reset tokens for the account, so only
// the newest emailed link is live.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) (string, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return "", nil
	}

	account, err := s.accounts.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", oops.Code("RESET_REQUEST_FAILED").
			With("operation", "get account by email").
			Wrap(err)
	}

	raw, hash, err := GenerateOneTimeToken()
	if err != nil {
		return "", oops.Code("RESET_REQUEST_FAILED").
			With("operation", "generate token").
			Wrap(err)
	}

	token, err := NewOneTimeToken(account.ID, PurposePasswordReset, hash, time.Now().Add(ResetTokenTTL))
	if err != nil {
		return "", oops.Code("RESET_REQUEST_FAILED").
			With("operation", "build token").
			Wrap(err)
	}

	// Invalidate older outstanding links before storing the new one.
	if err := s.tokens.DeleteByAccountPurpose(ctx, account.ID, PurposePasswordReset); err != nil {
		return "", oops.Code("RESET_REQUEST_FAILED").
			With("operation", "delete prior tokens").
			Wrap(err)
	}

	if err := s.tokens.Create(ctx, token); err != nil {
		return "", oops.Code("RESET_REQUEST_FAILED").
			With("operation", "store token").
			Wrap(err)
	}

	return raw, nil
}

// ResetPassword redeems a reset token and sets the new password. The redeem
// is a single atomic consume, so a link can succeed exactly once; the
// password update bumps the session version at the data layer, which also
// kills any remaining reset path (a reused link after the password changed
// fails on the consumed token). Unknown, consumed and expired tokens all
// surface as ErrInvalidToken.
func (s *PasswordResetService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	if rawToken == "" {
		return ErrInvalidToken
	}

	accountID, err := s.tokens.Consume(ctx, HashOneTimeToken(rawToken), PurposePasswordReset, time.Now())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidToken
		}
		return oops.Code("RESET_REDEEM_FAILED").
			With("operation", "consume token").
			Wrap(err)
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code("RESET_REDEEM_FAILED").
			With("operation", "hash new password").
			Wrap(err)
	}

	// Persists the hash and atomically bumps session_version: every session
	// issued before the reset is invalid afterwards.
	if _, err := s.accounts.UpdatePassword(ctx, accountID, newHash); err != nil {
		return oops.Code("RESET_REDEEM_FAILED").
			With("operation", "update password").
			Wrap(err)
	}

	return nil
}
