// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package auth

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// AccountStatus describes whether an account may authenticate.
type AccountStatus string

// Account statuses.
const (
	StatusActive   AccountStatus = "active"
	StatusDisabled AccountStatus = "disabled"
)

// Account represents a parent account. It owns all food-progress rows.
type Account struct {
	ID              ulid.ULID
	Email           string // stored lowercased, matched case-insensitively
	PasswordHash    string
	Status          AccountStatus
	SessionVersion  int64 // bumped to invalidate all issued session cookies
	EmailVerifiedAt *time.Time
	ShareID         *string // public share-page id, nil when sharing is off
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewAccount creates a validated Account with a normalized email.
// The password hash must already be computed by a PasswordHasher.
func NewAccount(email, passwordHash string) (*Account, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("ACCOUNT_INVALID_HASH").Errorf("password hash cannot be empty")
	}

	now := time.Now()
	return &Account{
		ID:             ulid.Make(),
		Email:          normalized,
		PasswordHash:   passwordHash,
		Status:         StatusActive,
		SessionVersion: 0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// IsDisabled returns true if the account may not authenticate.
func (a *Account) IsDisabled() bool {
	return a.Status == StatusDisabled
}

// IsVerified returns true if the account's email has been verified.
func (a *Account) IsVerified() bool {
	return a.EmailVerifiedAt != nil
}

// NormalizeEmail lowercases and trims an email address and rejects values
// that do not parse as a bare address.
func NormalizeEmail(email string) (string, error) {
	trimmed := strings.TrimSpace(strings.ToLower(email))
	if trimmed == "" {
		return "", oops.Code("ACCOUNT_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", oops.Code("ACCOUNT_INVALID_EMAIL").Errorf("invalid email address")
	}
	return trimmed, nil
}

// AccountRepository manages account persistence.
type AccountRepository interface {
	// Create stores a new account. Returns ErrEmailTaken (wrapped) when the
	// unique email constraint is violated.
	Create(ctx context.Context, account *Account) error

	// GetByID retrieves an account by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Account, error)

	// GetByEmail retrieves an account by email (case-insensitive).
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// GetByShareID retrieves an account by its public share id.
	GetByShareID(ctx context.Context, shareID string) (*Account, error)

	// UpdatePassword sets a new password hash and atomically increments the
	// session version in the same statement, returning the version the store
	// produced. Concurrent bumps must each observe a strictly higher version;
	// the increment happens at the data layer, never read-modify-write in
	// application code, and callers issuing tokens must sign the returned
	// value rather than a version read earlier.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) (int64, error)

	// BumpSessionVersion atomically increments the session version
	// ("logout everywhere").
	BumpSessionVersion(ctx context.Context, id ulid.ULID) error

	// MarkEmailVerified sets email_verified_at if not already set.
	MarkEmailVerified(ctx context.Context, id ulid.ULID, at time.Time) error

	// SetShareID replaces the share id (nil disables sharing).
	SetShareID(ctx context.Context, id ulid.ULID, shareID *string) error
}
