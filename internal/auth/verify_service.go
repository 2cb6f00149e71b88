// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// EmailVerificationService issues and redeems email verification tokens.
type EmailVerificationService struct {
	accounts AccountRepository
	tokens   OneTimeTokenRepository
}

// NewEmailVerificationService creates a new EmailVerificationService.
func NewEmailVerificationService(accounts AccountRepository, tokens OneTimeTokenRepository) (*EmailVerificationService, error) {
	if accounts == nil {
		return nil, oops.Errorf("accounts repository is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token repository is required")
	}
	return &EmailVerificationService{accounts: accounts, tokens: tokens}, nil
}

// RequestVerification issues a verification token for the account and
// returns the plaintext value for the emailed URL. Prior outstanding
// verification tokens are invalidated.
func (s *EmailVerificationService) RequestVerification(ctx context.Context, accountID ulid.ULID) (string, error) {
	raw, hash, err := GenerateOneTimeToken()
	if err != nil {
		return "", oops.Code("VERIFY_REQUEST_FAILED").
			With("operation", "generate token").
			Wrap(err)
	}

	token, err := NewOneTimeToken(accountID, PurposeEmailVerification, hash, time.Now().Add(VerificationTokenTTL))
	if err != nil {
		return "", oops.Code("VERIFY_REQUEST_FAILED").
			With("operation", "build token").
			Wrap(err)
	}

	if err := s.tokens.DeleteByAccountPurpose(ctx, accountID, PurposeEmailVerification); err != nil {
		return "", oops.Code("VERIFY_REQUEST_FAILED").
			With("operation", "delete prior tokens").
			Wrap(err)
	}

	if err := s.tokens.Create(ctx, token); err != nil {
		return "", oops.Code("VERIFY_REQUEST_FAILED").
			With("operation", "store token").
			Wrap(err)
	}

	return raw, nil
}

// Verify redeems a verification token and marks the account's email
// verified. The second redemption of the same token fails on the consumed
// row without touching account state, so verification is effectively
// idempotent from the account's perspective. All failures surface as
// ErrInvalidToken.
func (s *EmailVerificationService) Verify(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return ErrInvalidToken
	}

	now := time.Now()
	accountID, err := s.tokens.Consume(ctx, HashOneTimeToken(rawToken), PurposeEmailVerification, now)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidToken
		}
		return oops.Code("VERIFY_REDEEM_FAILED").
			With("operation", "consume token").
			Wrap(err)
	}

	if err := s.accounts.MarkEmailVerified(ctx, accountID, now); err != nil {
		return oops.Code("VERIFY_REDEEM_FAILED").
			With("operation", "mark verified").
			With("account_id", accountID.String()).
			Wrap(err)
	}

	return nil
}
