// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 pokeRNCP Contributors

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

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// argon2Params are the cost parameters embedded in every credential.
// OWASP-recommended argon2id settings.
type argon2Params struct {
	memory  uint32 // KiB
	time    uint32 // iterations
	threads uint8
	saltLen uint32
	keyLen  uint32
}

var defaultArgon2Params = argon2Params{
	memory:  64 * 1024,
	time:    1,
	threads: 4,
	saltLen: 16,
	keyLen:  32,
}

// Hasher turns plaintext passwords into storable credential strings and
// verifies plaintexts against them.
type Hasher interface {
	// Hash produces a salted, self-describing credential string.
	Hash(password string) (string, error)

	// Verify reports whether the password matches the stored credential.
	// A malformed credential never matches; it does not surface an error.
	Verify(password, credential string) bool
}

// Argon2Hasher implements Hasher using argon2id in PHC string format.
type Argon2Hasher struct {
	params argon2Params
}

// NewArgon2Hasher creates an Argon2Hasher with the default parameters.
func NewArgon2Hasher() *Argon2Hasher {
	return &Argon2Hasher{params: defaultArgon2Params}
}

// Hash produces an argon2id credential of the form
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash> with a fresh random salt.
func (h *Argon2Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, h.params.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.time, h.params.memory, h.params.threads, h.params.keyLen)

	credential := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.memory,
		h.params.time,
		h.params.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return credential, nil
}

// Verify recomputes the hash with the parameters embedded in the credential
// and compares in constant time. Corrupt or unparseable credentials are
// treated as "does not match" rather than an error: the caller always gets
// a plain yes/no.
func (h *Argon2Hasher) Verify(password, credential string) bool {
	params, salt, expected, err := decodeCredential(credential)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, params.time, params.memory, params.threads, params.keyLen)
	return subtle.ConstantTimeCompare(computed, expected) == 1
}

// decodeCredential parses a PHC-formatted argon2id credential into its cost
// parameters, salt, and derived key.
func decodeCredential(credential string) (argon2Params, []byte, []byte, error) {
	var p argon2Params

	parts := strings.Split(credential, "$")
	if len(parts) != 6 {
		return p, nil, nil, oops.Code("AUTH_BAD_CREDENTIAL").Errorf("invalid credential format")
	}
	if parts[1] != "argon2id" {
		return p, nil, nil, oops.Code("AUTH_BAD_CREDENTIAL").Errorf("unsupported algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, oops.Code("AUTH_BAD_CREDENTIAL").Wrap(err)
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return p, nil, nil, oops.Code("AUTH_BAD_CREDENTIAL").Wrap(err)
	}
	if threads == 0 || threads > 255 {
		return p, nil, nil, oops.Code("AUTH_BAD_CREDENTIAL").Errorf("threads value %d out of range", threads)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, oops.Code("AUTH_BAD_CREDENTIAL").Wrap(err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, oops.Code("AUTH_BAD_CREDENTIAL").Wrap(err)
	}
	if len(key) == 0 || len(key) > 1<<10 {
		return p, nil, nil, oops.Code("AUTH_BAD_CREDENTIAL").Errorf("invalid key length: %d", len(key))
	}

	p.memory = memory
	p.time = time
	p.threads = uint8(threads)
	p.saltLen = uint32(len(salt))
	p.keyLen = uint32(len(key))
	return p, salt, key, nil
}
