// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

// Package mail sends account notifications. Delivery is best-effort:
// callers log failures and continue, an undeliverable email never fails
// the request that triggered it.
package mail

import "fmt"

// NotificationError describes a failed delivery attempt. Kind names the
// notification, Recipient is the intended address.
type NotificationError struct {
	Kind      string
	Recipient string
	Err       error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("send %s to %s: %v", e.Kind, e.Recipient, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}

// Mailer delivers account notifications. Implementations must never include
// raw one-time tokens in logs.
type Mailer interface {
	// SendPasswordReset delivers a password-reset link.
	SendPasswordReset(to, resetURL string) *NotificationError

	// SendEmailVerification delivers an address-verification link.
	SendEmailVerification(to, verifyURL string) *NotificationError
}
