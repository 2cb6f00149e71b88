// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package auth_test

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/PourroyJean/babymiam-sub000/internal/auth"
)

// fakeAccountRepo is an in-memory AccountRepository mirroring the SQL
// semantics the services rely on: unique email, atomic version increments.
type fakeAccountRepo struct {
	accounts map[ulid.ULID]*auth.Account
	err      error // injected failure for every call when set

	// beforeUpdatePassword runs at the top of UpdatePassword, letting a test
	// interleave a concurrent mutation between a service's read and its write.
	beforeUpdatePassword func()
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[ulid.ULID]*auth.Account)}
}

func (f *fakeAccountRepo) Create(_ context.Context, account *auth.Account) error {
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.accounts {
		if existing.Email == account.Email {
			return auth.ErrEmailTaken
		}
	}
	clone := *account
	f.accounts[account.ID] = &clone
	return nil
}

func (f *fakeAccountRepo) GetByID(_ context.Context, id ulid.ULID) (*auth.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	account, ok := f.accounts[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	clone := *account
	return &clone, nil
}

func (f *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*auth.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, account := range f.accounts {
		if account.Email == email {
			clone := *account
			return &clone, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (f *fakeAccountRepo) GetByShareID(_ context.Context, shareID string) (*auth.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, account := range f.accounts {
		if account.ShareID != nil && *account.ShareID == shareID {
			clone := *account
			return &clone, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (f *fakeAccountRepo) UpdatePassword(_ context.Context, id ulid.ULID, passwordHash string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.beforeUpdatePassword != nil {
		f.beforeUpdatePassword()
	}
	account, ok := f.accounts[id]
	if !ok {
		return 0, auth.ErrNotFound
	}
	account.PasswordHash = passwordHash
	account.SessionVersion++
	return account.SessionVersion, nil
}

func (f *fakeAccountRepo) BumpSessionVersion(_ context.Context, id ulid.ULID) error {
	if f.err != nil {
		return f.err
	}
	account, ok := f.accounts[id]
	if !ok {
		return auth.ErrNotFound
	}
	account.SessionVersion++
	return nil
}

func (f *fakeAccountRepo) MarkEmailVerified(_ context.Context, id ulid.ULID, at time.Time) error {
	if f.err != nil {
		return f.err
	}
	account, ok := f.accounts[id]
	if !ok {
		return auth.ErrNotFound
	}
	if account.EmailVerifiedAt == nil {
		account.EmailVerifiedAt = &at
	}
	return nil
}

func (f *fakeAccountRepo) SetShareID(_ context.Context, id ulid.ULID, shareID *string) error {
	if f.err != nil {
		return f.err
	}
	account, ok := f.accounts[id]
	if !ok {
		return auth.ErrNotFound
	}
	account.ShareID = shareID
	return nil
}

// fakeTokenRepo is an in-memory OneTimeTokenRepository with the same
// single-use consume semantics as the SQL implementation.
type fakeTokenRepo struct {
	tokens map[string]*auth.OneTimeToken // keyed by hash
	err    error
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*auth.OneTimeToken)}
}

func (f *fakeTokenRepo) Create(_ context.Context, token *auth.OneTimeToken) error {
	if f.err != nil {
		return f.err
	}
	clone := *token
	f.tokens[token.TokenHash] = &clone
	return nil
}

func (f *fakeTokenRepo) Consume(_ context.Context, tokenHash string, purpose auth.TokenPurpose, at time.Time) (ulid.ULID, error) {
	if f.err != nil {
		return ulid.ULID{}, f.err
	}
	token, ok := f.tokens[tokenHash]
	if !ok || token.Purpose != purpose || token.ConsumedAt != nil || !token.ExpiresAt.After(at) {
		return ulid.ULID{}, auth.ErrNotFound
	}
	token.ConsumedAt = &at
	return token.AccountID, nil
}

func (f *fakeTokenRepo) DeleteByAccountPurpose(_ context.Context, accountID ulid.ULID, purpose auth.TokenPurpose) error {
	if f.err != nil {
		return f.err
	}
	for hash, token := range f.tokens {
		if token.AccountID == accountID && token.Purpose == purpose {
			delete(f.tokens, hash)
		}
	}
	return nil
}

func (f *fakeTokenRepo) DeleteExpired(_ context.Context) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var deleted int64
	now := time.Now()
	for hash, token := range f.tokens {
		if now.After(token.ExpiresAt) {
			delete(f.tokens, hash)
			deleted++
		}
	}
	return deleted, nil
}

var (
	_ auth.AccountRepository      = (*fakeAccountRepo)(nil)
	_ auth.OneTimeTokenRepository = (*fakeTokenRepo)(nil)
)
