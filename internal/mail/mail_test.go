// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package mail

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &NotificationError{Kind: "password_reset", Recipient: "parent@example.com", Err: cause}

	assert.Contains(t, err.Error(), "password_reset")
	assert.Contains(t, err.Error(), "parent@example.com")
	assert.ErrorIs(t, err, cause)
}

func TestDevMailer_TokenURLOnlyAtDebug(t *testing.T) {
	resetURL := "http://localhost:8080/reset-password?token=super-secret-token"

	t.Run("info level hides the url", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

		m := NewDevMailer(logger)
		require.Nil(t, m.SendPasswordReset("parent@example.com", resetURL))

		out := buf.String()
		assert.Contains(t, out, "parent@example.com")
		assert.NotContains(t, out, "super-secret-token")
	})

	t.Run("debug level includes the url", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

		m := NewDevMailer(logger)
		require.Nil(t, m.SendEmailVerification("parent@example.com", resetURL))
		assert.Contains(t, buf.String(), "super-secret-token")
	})
}

func TestSMTPMailer_UnreachableRelay(t *testing.T) {
	// Port 1 on localhost refuses connections, so delivery fails fast and
	// the error carries the notification kind and recipient.
	m := NewSMTPMailer("127.0.0.1:1", "no-reply@babymiam.local", "", "")

	err := m.SendPasswordReset("parent@example.com", "http://localhost:8080/reset-password?token=x")
	require.NotNil(t, err)
	assert.Equal(t, "password_reset", err.Kind)
	assert.Equal(t, "parent@example.com", err.Recipient)

	err = m.SendEmailVerification("parent@example.com", "http://localhost:8080/verify-email?token=x")
	require.NotNil(t, err)
	assert.Equal(t, "email_verification", err.Kind)
}

func TestNewSMTPMailer_AuthOnlyWithUsername(t *testing.T) {
	assert.Nil(t, NewSMTPMailer("smtp.example.com:587", "from@example.com", "", "").auth)
	assert.NotNil(t, NewSMTPMailer("smtp.example.com:587", "from@example.com", "user", "pass").auth)
}
