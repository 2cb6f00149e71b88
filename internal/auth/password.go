// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package auth

import "github.com/samber/oops"

// MinPasswordLength is the minimum accepted password length in bytes.
// The boundary is inclusive: an exactly 8-character password is valid.
const MinPasswordLength = 8

// ValidatePassword checks the password policy. It runs before any hashing or
// I/O so weak values fail fast and cheap.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return oops.Code("PASSWORD_TOO_SHORT").
			With("min", MinPasswordLength).
			Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
