// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
)

// Rate limiting defaults. Conservative enough to stop brute force without
// locking out a legitimate retry burst.
const (
	DefaultRateLimitWindow      = 15 * time.Minute
	DefaultRateLimitMaxAttempts = 5
)

// Attempt is one row of the append-only rate-limit ledger.
type Attempt struct {
	Identity  string // normalized email, or another per-flow key
	ClientIP  string
	Succeeded bool
	CreatedAt time.Time
}

// AttemptLedger stores and counts attempts over a trailing window.
type AttemptLedger interface {
	// Record appends one attempt row.
	Record(ctx context.Context, attempt Attempt) error

	// CountSince returns the number of attempts for identity or ip recorded
	// strictly after the since timestamp. An attempt matches when either the
	// identity or the client IP matches.
	CountSince(ctx context.Context, identity, clientIP string, since time.Time) (int, error)
}

// Limiter bounds the rate of signup and reset attempts per identity and IP.
//
// The window is sliding, computed at query time via a time predicate rather
// than fixed buckets: slightly more query cost, precise recent-window
// semantics, no bucket-boundary gaming.
//
// The check-then-record sequence is inherently racy under concurrent bursts
// from the same identity. That is accepted: the bound is advisory, not hard
// admission control, and the cost of a slightly-over-limit burst is low.
// Do not add locking here.
type Limiter struct {
	ledger      AttemptLedger
	window      time.Duration
	maxAttempts int
	logger      *slog.Logger
}

// NewLimiter creates a Limiter. Zero window or maxAttempts fall back to the
// package defaults.
func NewLimiter(ledger AttemptLedger, window time.Duration, maxAttempts int, logger *slog.Logger) (*Limiter, error) {
	if ledger == nil {
		return nil, oops.Code("RATELIMIT_INVALID_DEPS").Errorf("attempt ledger is required")
	}
	if window <= 0 {
		window = DefaultRateLimitWindow
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultRateLimitMaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Limiter{ledger: ledger, window: window, maxAttempts: maxAttempts, logger: logger}, nil
}

// IsLimited reports whether identity/ip has reached the attempt ceiling
// within the trailing window. A ledger read failure fails open: throttling
// is protection, not a request-critical dependency.
func (l *Limiter) IsLimited(ctx context.Context, identity, clientIP string) bool {
	since := time.Now().Add(-l.window)
	count, err := l.ledger.CountSince(ctx, identity, clientIP, since)
	if err != nil {
		l.logger.Warn("rate limit count failed, allowing request",
			"identity", identity,
			"error", err,
		)
		return false
	}
	return count >= l.maxAttempts
}

// Record appends an attempt. Best effort: storage errors are logged and
// swallowed, never failing the parent action.
func (l *Limiter) Record(ctx context.Context, identity, clientIP string, succeeded bool) {
	attempt := Attempt{
		Identity:  identity,
		ClientIP:  clientIP,
		Succeeded: succeeded,
		CreatedAt: time.Now(),
	}
	if err := l.ledger.Record(ctx, attempt); err != nil {
		l.logger.Warn("rate limit record failed",
			"identity", identity,
			"error", err,
		)
	}
}

// Window returns the configured trailing window.
func (l *Limiter) Window() time.Duration { return l.window }

// MaxAttempts returns the configured attempt ceiling.
func (l *Limiter) MaxAttempts() int { return l.maxAttempts }
