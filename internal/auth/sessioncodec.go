// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// SessionClaims are the fields carried by a session cookie.
type SessionClaims struct {
	AccountID      ulid.ULID
	SessionVersion int64
	IssuedAt       time.Time
}

// SessionCodec builds and validates signed session cookie values.
//
// A token is "payload.signature" where payload is
// "{accountULID}:{sessionVersion}:{issuedAtMillis}" and signature is the
// hex-encoded HMAC-SHA256 of the payload. The "." separator appears in
// neither the payload alphabet nor hex, so splitting is unambiguous.
//
// The codec is pure: it holds only the signing secret and performs no I/O.
// Callers must additionally compare the embedded session version against the
// account's live value; a mismatch is reported with the same ErrInvalidToken
// as a bad signature so the two are indistinguishable to the client.
type SessionCodec struct {
	secret []byte
}

// NewSessionCodec creates a SessionCodec. The secret must be non-empty;
// enforcing "fail fast when unset in production" is the config layer's job.
func NewSessionCodec(secret string) (*SessionCodec, error) {
	if secret == "" {
		return nil, oops.Code("SESSION_SECRET_MISSING").Errorf("session signing secret cannot be empty")
	}
	return &SessionCodec{secret: []byte(secret)}, nil
}

// Issue serializes and signs claims for the given account and version.
func (c *SessionCodec) Issue(accountID ulid.ULID, sessionVersion int64) string {
	return c.issueAt(accountID, sessionVersion, time.Now())
}

// issueAt is Issue with an explicit timestamp for deterministic tests.
func (c *SessionCodec) issueAt(accountID ulid.ULID, sessionVersion int64, now time.Time) string {
	payload := fmt.Sprintf("%s:%d:%d", accountID.String(), sessionVersion, now.UnixMilli())
	return payload + "." + c.sign(payload)
}

// Validate parses and verifies a token. Every failure mode (malformed split,
// signature mismatch, unparseable fields) collapses into ErrInvalidToken;
// no parse detail leaks to the caller.
func (c *SessionCodec) Validate(token string) (SessionClaims, error) {
	payload, sig, ok := strings.Cut(token, ".")
	if !ok || payload == "" || sig == "" {
		return SessionClaims{}, ErrInvalidToken
	}

	if !hmac.Equal([]byte(c.sign(payload)), []byte(sig)) {
		return SessionClaims{}, ErrInvalidToken
	}

	fields := strings.Split(payload, ":")
	if len(fields) != 3 {
		return SessionClaims{}, ErrInvalidToken
	}

	accountID, err := ulid.Parse(fields[0])
	if err != nil {
		return SessionClaims{}, ErrInvalidToken
	}
	version, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || version < 0 {
		return SessionClaims{}, ErrInvalidToken
	}
	issuedMillis, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return SessionClaims{}, ErrInvalidToken
	}

	return SessionClaims{
		AccountID:      accountID,
		SessionVersion: version,
		IssuedAt:       time.UnixMilli(issuedMillis),
	}, nil
}

// sign computes the hex-encoded HMAC-SHA256 of payload.
func (c *SessionCodec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
