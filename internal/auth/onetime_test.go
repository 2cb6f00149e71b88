// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package auth_test

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PourroyJean/babymiam-sub000/internal/auth"
)

func TestGenerateOneTimeToken(t *testing.T) {
	token, hash, err := auth.GenerateOneTimeToken()
	require.NoError(t, err)

	// 32 bytes hex-encoded
	assert.Len(t, token, 64)
	assert.Len(t, hash, 64)
	assert.Equal(t, auth.HashOneTimeToken(token), hash)
	assert.NotEqual(t, token, hash)
}

func TestGenerateOneTimeToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 32 {
		token, _, err := auth.GenerateOneTimeToken()
		require.NoError(t, err)
		assert.False(t, seen[token], "duplicate token generated")
		seen[token] = true
	}
}

func TestHashOneTimeToken_Deterministic(t *testing.T) {
	assert.Equal(t, auth.HashOneTimeToken("abc"), auth.HashOneTimeToken("abc"))
	assert.NotEqual(t, auth.HashOneTimeToken("abc"), auth.HashOneTimeToken("abd"))
}

func TestNewOneTimeToken_Validation(t *testing.T) {
	accountID := ulid.Make()
	expiry := time.Now().Add(time.Hour)

	tests := []struct {
		name      string
		accountID ulid.ULID
		purpose   auth.TokenPurpose
		hash      string
		expiresAt time.Time
		wantErr   bool
	}{
		{"valid reset", accountID, auth.PurposePasswordReset, "somehash", expiry, false},
		{"valid verification", accountID, auth.PurposeEmailVerification, "somehash", expiry, false},
		{"zero account", ulid.ULID{}, auth.PurposePasswordReset, "somehash", expiry, true},
		{"unknown purpose", accountID, auth.TokenPurpose("session"), "somehash", expiry, true},
		{"empty hash", accountID, auth.PurposePasswordReset, "", expiry, true},
		{"zero expiry", accountID, auth.PurposePasswordReset, "somehash", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := auth.NewOneTimeToken(tt.accountID, tt.purpose, tt.hash, tt.expiresAt)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, token)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.accountID, token.AccountID)
			assert.False(t, token.IsConsumed())
			assert.False(t, token.IsExpired())
		})
	}
}

func TestGenerateShareID(t *testing.T) {
	sid, err := auth.GenerateShareID()
	require.NoError(t, err)
	assert.True(t, auth.ValidShareID(sid))

	other, err := auth.GenerateShareID()
	require.NoError(t, err)
	assert.NotEqual(t, sid, other)
}

func TestValidShareID(t *testing.T) {
	tests := []struct {
		name string
		sid  string
		want bool
	}{
		{"empty", "", false},
		{"too short", "abc", false},
		{"seven chars", "abcd123", false},
		{"minimum length", "abcd1234", true},
		{"url safe chars", "abc-DEF_123xyz", true},
		{"spaces", "abcd 1234", false},
		{"slash", "abcd/1234", false},
		{"exactly 80", string(make80()), true},
		{"over 80", string(make80()) + "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.ValidShareID(tt.sid))
		})
	}
}

func make80() []byte {
	b := make([]byte, 80)
	for i := range b {
		b[i] = 'a'
	}
	return b
}
