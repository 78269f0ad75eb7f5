// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 pokeRNCP Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested user does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidCredentials is returned for a wrong password or an unknown
// identifier. Both map to the same value so the login boundary cannot be
// used to enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid identifier or password")

// ErrUsernameTaken is returned when creating a user whose username or email
// collides with an existing account.
var ErrUsernameTaken = errors.New("username or email already taken")

// ErrTokenInvalid is the uniform verification failure: decode errors,
// signature mismatches, expiry, and scope mismatches all collapse into it.
var ErrTokenInvalid = errors.New("token invalid")

// ErrPasswordTooShort is returned when a reset supplies a new password
// below the minimum length policy.
var ErrPasswordTooShort = errors.New("password too short")
