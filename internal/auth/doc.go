// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

// Package auth provides the credential and token core for BabyMiam.
//
// # Domain Types
//
// Domain types (Account, OneTimeToken) should be created using their
// constructors:
//   - NewAccount - creates an Account with a normalized email and hash
//   - NewOneTimeToken - creates a OneTimeToken bound to account and purpose
//
// Direct struct initialization bypasses validation and may create invalid
// state. Repository implementations receive pre-validated types from these
// constructors.
//
// # Services
//
// Service types coordinate domain operations:
//   - AccountService - signup, login, logout-everywhere, password change
//   - PasswordResetService - reset token issue and redemption
//   - EmailVerificationService - verification token issue and redemption
//
// Services are created with New*Service constructors that validate
// dependencies.
//
// # Session model
//
// Sessions are not persisted. The session cookie carries an HMAC-signed value
// binding the account id and the account's session version; bumping the
// version invalidates every previously issued cookie at once, without a
// revocation list.
package auth
