// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PourroyJean/babymiam-sub000/internal/auth"
	"github.com/PourroyJean/babymiam-sub000/internal/auth/postgres"
)

func TestAttemptLedger_Record(t *testing.T) {
	t.Run("appends a row", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		attempt := auth.Attempt{
			Identity:  "parent@example.com",
			ClientIP:  "203.0.113.9",
			Succeeded: false,
			CreatedAt: time.Now(),
		}
		mock.ExpectExec(`INSERT INTO auth_attempts`).
			WithArgs(attempt.Identity, attempt.ClientIP, attempt.Succeeded, attempt.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		ledger := postgres.NewAttemptLedger(mock)
		require.NoError(t, ledger.Record(context.Background(), attempt))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error passes through", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`INSERT INTO auth_attempts`).
			WithArgs("parent@example.com", "203.0.113.9", true, pgxmock.AnyArg()).
			WillReturnError(errors.New("connection refused"))

		ledger := postgres.NewAttemptLedger(mock)
		err = ledger.Record(context.Background(), auth.Attempt{
			Identity:  "parent@example.com",
			ClientIP:  "203.0.113.9",
			Succeeded: true,
			CreatedAt: time.Now(),
		})
		assert.Error(t, err)
	})
}

func TestAttemptLedger_CountSince(t *testing.T) {
	since := time.Now().Add(-15 * time.Minute)

	t.Run("counts matching rows", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT COUNT`).
			WithArgs("parent@example.com", "203.0.113.9", since).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(4))

		ledger := postgres.NewAttemptLedger(mock)
		count, err := ledger.CountSince(context.Background(), "parent@example.com", "203.0.113.9", since)
		require.NoError(t, err)
		assert.Equal(t, 4, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error passes through", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT COUNT`).
			WithArgs("parent@example.com", "203.0.113.9", since).
			WillReturnError(errors.New("connection refused"))

		ledger := postgres.NewAttemptLedger(mock)
		_, err = ledger.CountSince(context.Background(), "parent@example.com", "203.0.113.9", since)
		assert.Error(t, err)
	})
}
