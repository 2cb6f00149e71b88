// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package mail

import "log/slog"

// DevMailer logs instead of sending. The full URL (which embeds the
// one-time token) is logged at debug level only, so a default info-level
// dev setup never exposes tokens.
type DevMailer struct {
	logger *slog.Logger
}

// NewDevMailer creates a DevMailer.
func NewDevMailer(logger *slog.Logger) *DevMailer {
	return &DevMailer{logger: logger}
}

// SendPasswordReset logs the reset request.
func (m *DevMailer) SendPasswordReset(to, resetURL string) *NotificationError {
	m.logger.Info("dev mailer: password reset", "to", to)
	m.logger.Debug("dev mailer: password reset url", "url", resetURL)
	return nil
}

// SendEmailVerification logs the verification request.
func (m *DevMailer) SendEmailVerification(to, verifyURL string) *NotificationError {
	m.logger.Info("dev mailer: email verification", "to", to)
	m.logger.Debug("dev mailer: email verification url", "url", verifyURL)
	return nil
}

var _ Mailer = (*DevMailer)(nil)
