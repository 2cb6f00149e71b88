// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package postgres

import (
	"context"
	"time"

	"github.com/samber/oops"

	"github.com/PourroyJean/babymiam-sub000/internal/auth"
)

// AttemptLedger implements auth.AttemptLedger using PostgreSQL. The table is
// append-only; the trailing window is evaluated with a time predicate at
// query time.
type AttemptLedger struct {
	db DB
}

// NewAttemptLedger creates a new AttemptLedger.
func NewAttemptLedger(db DB) *AttemptLedger {
	return &AttemptLedger{db: db}
}

// Record appends one attempt row.
func (r *AttemptLedger) Record(ctx context.Context, attempt auth.Attempt) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO auth_attempts (identity, client_ip, succeeded, created_at)
		VALUES ($1, $2, $3, $4)
	`, attempt.Identity, attempt.ClientIP, attempt.Succeeded, attempt.CreatedAt)
	if err != nil {
		return oops.Code("ATTEMPT_RECORD_FAILED").
			With("operation", "insert auth_attempt").
			Wrap(err)
	}
	return nil
}

// CountSince counts attempts matching identity or client IP after since.
func (r *AttemptLedger) CountSince(ctx context.Context, identity, clientIP string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM auth_attempts
		WHERE (identity = $1 OR client_ip = $2)
		  AND created_at > $3
	`, identity, clientIP, since).Scan(&count)
	if err != nil {
		return 0, oops.Code("ATTEMPT_COUNT_FAILED").
			With("operation", "count auth_attempts").
			Wrap(err)
	}
	return count, nil
}

// Compile-time interface check.
var _ auth.AttemptLedger = (*AttemptLedger)(nil)
