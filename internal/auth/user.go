// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 pokeRNCP Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// User is an account record. PasswordHash is the stored credential; it is
// never serialized into responses.
type User struct {
	ID           ulid.ULID
	Username     string
	Email        *string
	PasswordHash string
	CreatedAt    time.Time
}

// NewUser creates a validated User with a fresh ID. The credential must
// already be hashed; this constructor never sees a plaintext password.
func NewUser(username string, email *string, passwordHash string) (*User, error) {
	if username == "" {
		return nil, oops.Code("USER_INVALID_USERNAME").Errorf("username cannot be empty")
	}
	if passwordHash == "" {
		return nil, oops.Code("USER_INVALID_CREDENTIAL").Errorf("password hash cannot be empty")
	}
	if email != nil && *email == "" {
		email = nil
	}
	return &User{
		ID:           ulid.Make(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// UserUpdate carries the optional fields a profile update may change.
// A nil field is left untouched. Password is a pre-hashed credential.
type UserUpdate struct {
	Username     *string
	Email        *string
	PasswordHash *string
}

// UserRepository manages account persistence. Implementations return
// ErrNotFound for missing users and ErrUsernameTaken on unique-constraint
// collisions.
type UserRepository interface {
	// Create stores a new user.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByIdentifier retrieves a user whose username or email equals
	// identifier.
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)

	// UpdatePassword replaces the stored credential wholesale.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error

	// Update applies the non-nil fields of upd.
	Update(ctx context.Context, id ulid.ULID, upd UserUpdate) error

	// Delete removes a user.
	Delete(ctx context.Context, id ulid.ULID) error
}
