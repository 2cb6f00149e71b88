// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package auth

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// dummyPasswordHash is verified when an email doesn't exist so the response
// time matches the known-email path. It is a fake hash that can never match
// any password, not a credential.
//
//nolint:gosec // G101: intentionally fake hash for timing-attack prevention.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// AccountService provides signup, login and credential-change operations.
type AccountService struct {
	accounts AccountRepository
	hasher   PasswordHasher
	codec    *SessionCodec
}

// NewAccountService creates a new AccountService.
func NewAccountService(accounts AccountRepository, hasher PasswordHasher, codec *SessionCodec) (*AccountService, error) {
	if accounts == nil {
		return nil, oops.Errorf("accounts repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if codec == nil {
		return nil, oops.Errorf("session codec is required")
	}
	return &AccountService{accounts: accounts, hasher: hasher, codec: codec}, nil
}

// Signup creates an account and returns it with a freshly issued session
// token. The unique-email violation surfaces as ErrEmailTaken; this is the
// one deliberate enumeration exception (spec'd UX trade-off).
func (s *AccountService) Signup(ctx context.Context, email, password string) (*Account, string, error) {
	if err := ValidatePassword(password); err != nil {
		return nil, "", err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", oops.Code("AUTH_SIGNUP_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	account, err := NewAccount(email, hash)
	if err != nil {
		return nil, "", err
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, "", err
		}
		return nil, "", oops.Code("AUTH_SIGNUP_FAILED").
			With("operation", "create account").
			Wrap(err)
	}

	return account, s.codec.Issue(account.ID, account.SessionVersion), nil
}

// Login authenticates by email and password and returns the account with a
// session token. Unknown email and wrong password produce the identical
// AUTH_INVALID_CREDENTIALS outcome; the unknown-email path still verifies
// against a dummy hash to keep response time in the same class.
func (s *AccountService) Login(ctx context.Context, email, password string) (*Account, string, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		// Still burn a verification so a syntactically bad email doesn't
		// return in a different timing class.
		_, _ = s.hasher.Verify(password, dummyPasswordHash) //nolint:errcheck // timing equalization only
		return nil, "", oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid email or password")
	}

	account, lookupErr := s.accounts.GetByEmail(ctx, normalized)

	targetHash := dummyPasswordHash
	exists := false
	switch {
	case lookupErr == nil:
		targetHash = account.PasswordHash
		exists = true
	case errors.Is(lookupErr, ErrNotFound):
		// keep the dummy hash
	default:
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get account by email").
			Wrap(lookupErr)
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil && exists {
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if !exists || !valid {
		return nil, "", oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid email or password")
	}

	// Checked after verification so disabled accounts stay in the same
	// timing class as active ones.
	if account.IsDisabled() {
		return nil, "", oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid email or password")
	}

	return account, s.codec.Issue(account.ID, account.SessionVersion), nil
}

// ValidateSession validates a session cookie value against the live account
// state. A stale session version, a disabled account and a bad signature all
// collapse into ErrInvalidToken; nothing the client observes distinguishes
// them.
func (s *AccountService) ValidateSession(ctx context.Context, token string) (*Account, error) {
	claims, err := s.codec.Validate(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	account, err := s.accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, oops.Code("AUTH_SESSION_VALIDATE_FAILED").
			With("operation", "get account by id").
			Wrap(err)
	}

	if account.SessionVersion != claims.SessionVersion || account.IsDisabled() {
		return nil, ErrInvalidToken
	}

	return account, nil
}

// ChangePassword verifies the current password, stores a new hash, and bumps
// the session version in the same statement so every previously issued
// session token fails validation afterwards. Returns a fresh token for the
// current session.
func (s *AccountService) ChangePassword(ctx context.Context, accountID ulid.ULID, current, next string) (string, error) {
	if err := ValidatePassword(next); err != nil {
		return "", err
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return "", oops.Code("AUTH_PASSWORD_CHANGE_FAILED").
			With("operation", "get account by id").
			Wrap(err)
	}

	valid, err := s.hasher.Verify(current, account.PasswordHash)
	if err != nil {
		return "", oops.Code("AUTH_PASSWORD_CHANGE_FAILED").
			With("operation", "verify current password").
			Wrap(err)
	}
	if !valid {
		return "", oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid email or password")
	}

	newHash, err := s.hasher.Hash(next)
	if err != nil {
		return "", oops.Code("AUTH_PASSWORD_CHANGE_FAILED").
			With("operation", "hash new password").
			Wrap(err)
	}

	// UpdatePassword increments session_version atomically at the data layer.
	// The replacement token is signed with the version the store returned: a
	// concurrent logout-everywhere between the read above and this update
	// must not leave the fresh session stale.
	version, err := s.accounts.UpdatePassword(ctx, accountID, newHash)
	if err != nil {
		return "", oops.Code("AUTH_PASSWORD_CHANGE_FAILED").
			With("operation", "update password").
			Wrap(err)
	}

	return s.codec.Issue(accountID, version), nil
}

// LogoutEverywhere bumps the session version, invalidating every issued
// session token at once.
func (s *AccountService) LogoutEverywhere(ctx context.Context, accountID ulid.ULID) error {
	if err := s.accounts.BumpSessionVersion(ctx, accountID); err != nil {
		return oops.Code("AUTH_LOGOUT_EVERYWHERE_FAILED").
			With("operation", "bump session version").
			With("account_id", accountID.String()).
			Wrap(err)
	}
	return nil
}
