// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package auth

import (
	"crypto/rand"
	"encoding/base64"
	"regexp"

	"github.com/samber/oops"
)

// shareIDBytes of entropy base64url-encode to 32 chars, comfortably inside
// the accepted 8-80 range.
const shareIDBytes = 24

// ShareIDPattern is the shape a share-page id must match. Anything else is
// treated as absent at the web boundary.
var ShareIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{8,80}$`)

// GenerateShareID creates a new random URL-safe share id. Regenerating and
// storing a new id invalidates the previously shared link.
func GenerateShareID() (string, error) {
	raw := make([]byte, shareIDBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", oops.Code("SHARE_ID_GENERATE_FAILED").Wrap(err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// ValidShareID reports whether sid matches ShareIDPattern.
func ValidShareID(sid string) bool {
	return ShareIDPattern.MatchString(sid)
}
