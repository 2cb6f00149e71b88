// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// Fixed argon2id cost parameters. Chosen to resist offline brute force while
// keeping an interactive hash in the low hundreds of milliseconds on
// commodity hardware.
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // KiB
	argon2Threads = 4
	argon2SaltLen = 16
	argon2KeyLen  = 32
)

// PasswordHasher provides password hashing and verification.
type PasswordHasher interface {
	// Hash produces an argon2id PHC-encoded hash of the password.
	Hash(password string) (string, error)

	// Verify checks the password against an encoded hash using a
	// constant-time comparison. Returns (true, nil) on match, (false, nil)
	// on mismatch, or an error for a malformed hash.
	Verify(password, encodedHash string) (bool, error)
}

// Argon2idHasher implements PasswordHasher using argon2id.
type Argon2idHasher struct{}

// NewArgon2idHasher creates a new Argon2idHasher.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

// Hash produces an argon2id hash of the password in PHC string format:
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", oops.Code("HASH_EMPTY_PASSWORD").Errorf("password cannot be empty")
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("HASH_SALT_FAILED").Wrap(err)
	}

	key := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// Verify checks if the password matches the encoded hash.
func (h *Argon2idHasher) Verify(password, encodedHash string) (bool, error) {
	salt, key, memory, time, threads, err := parsePHC(encodedHash)
	if err != nil {
		return false, err
	}

	keyLen := len(key)
	if keyLen <= 0 || keyLen > 1<<30 {
		return false, oops.Code("HASH_MALFORMED").Errorf("invalid key length: %d", keyLen)
	}

	computed := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(keyLen))

	return subtle.ConstantTimeCompare(computed, key) == 1, nil
}

// parsePHC decodes an argon2id PHC string into its salt, key and parameters.
func parsePHC(encodedHash string) (salt, key []byte, memory, time uint32, threads uint8, err error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return nil, nil, 0, 0, 0, oops.Code("HASH_MALFORMED").Errorf("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return nil, nil, 0, 0, 0, oops.Code("HASH_MALFORMED").Errorf("unsupported hash algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, 0, 0, 0, oops.Code("HASH_MALFORMED").Wrap(err)
	}

	var p uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &p); err != nil {
		return nil, nil, 0, 0, 0, oops.Code("HASH_MALFORMED").Wrap(err)
	}
	// Guard the uint8 conversion below.
	if p == 0 || p > 255 {
		return nil, nil, 0, 0, 0, oops.Code("HASH_MALFORMED").Errorf("parallelism %d out of range", p)
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, 0, 0, 0, oops.Code("HASH_MALFORMED").Wrap(err)
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, 0, 0, 0, oops.Code("HASH_MALFORMED").Wrap(err)
	}

	return salt, key, memory, time, uint8(p), nil
}
