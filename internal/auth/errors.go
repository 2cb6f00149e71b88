// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailTaken is returned when signup hits the unique email constraint.
// This is the one deliberate enumeration exception: the UI surfaces
// "email already in use" instead of a generic failure.
var ErrEmailTaken = errors.New("email already in use")

// ErrInvalidToken is the uniform classification for every session or
// one-time token failure: bad signature, malformed payload, stale session
// version, unknown token, already consumed, expired. Callers must not
// distinguish these cases in anything the client can observe.
var ErrInvalidToken = errors.New("invalid or expired token")
