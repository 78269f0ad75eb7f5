// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 pokeRNCP Contributors

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// MinPasswordLen is the minimum length accepted when confirming a
// password reset.
const MinPasswordLen = 8

// dummyCredential is verified against when a login identifier matches no
// account, so response time does not reveal whether the account exists.
// It is a fake hash that never matches any password.
//
//nolint:gosec // G101: intentionally fake hash for timing-attack prevention, not a credential.
const dummyCredential = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// TokenPair is the access + refresh pair minted at login.
type TokenPair struct {
	Access  string
	Refresh string
}

// Service orchestrates the session flows: login, refresh, password change,
// and the two halves of the password-reset flow. It is stateless across
// requests; all persistence goes through the UserRepository.
type Service struct {
	users  UserRepository
	hasher Hasher
	codec  *Codec
}

// NewService creates a Service.
func NewService(users UserRepository, hasher Hasher, codec *Codec) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		codec:  codec,
	}
}

// Codec exposes the token codec for request-scoped verification.
func (s *Service) Codec() *Codec { return s.codec }

// HashPassword hashes a plaintext password with the service's hasher.
func (s *Service) HashPassword(password string) (string, error) {
	return s.hasher.Hash(password)
}

// Register creates an account from a plaintext password.
func (s *Service) Register(ctx context.Context, username string, email *string, password string) (*User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").With("operation", "hash password").Wrap(err)
	}

	user, err := NewUser(username, email, hash)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates by username-or-email and mints an access + refresh
// token pair. Unknown identifiers and wrong passwords both return
// ErrInvalidCredentials, and the password check always runs so the two
// cases take comparable time.
func (s *Service) Login(ctx context.Context, identifier, password string) (*User, TokenPair, error) {
	user, err := s.users.GetByIdentifier(ctx, identifier)

	credential := dummyCredential
	exists := false
	switch {
	case err == nil:
		credential = user.PasswordHash
		exists = true
	case errors.Is(err, ErrNotFound):
	default:
		return nil, TokenPair{}, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get user by identifier").
			Wrap(err)
	}

	if !s.hasher.Verify(password, credential) || !exists {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	now := time.Now()
	access, err := s.codec.Issue(TokenAccess, user.ID, now)
	if err != nil {
		return nil, TokenPair{}, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue access token").
			Wrap(err)
	}
	refresh, err := s.codec.Issue(TokenRefresh, user.ID, now)
	if err != nil {
		return nil, TokenPair{}, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue refresh token").
			Wrap(err)
	}

	return user, TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh verifies a refresh token and mints a new access token for its
// subject. The refresh token itself is never rotated: it stays usable
// until its own expiry.
func (s *Service) Refresh(token string) (string, error) {
	claims, err := s.codec.Verify(TokenRefresh, token)
	if err != nil {
		return "", ErrTokenInvalid
	}

	subject, err := claims.SubjectID()
	if err != nil {
		return "", ErrTokenInvalid
	}

	access, err := s.codec.Issue(TokenAccess, subject, time.Now())
	if err != nil {
		return "", oops.Code("AUTH_REFRESH_FAILED").
			With("operation", "issue access token").
			Wrap(err)
	}
	return access, nil
}

// ChangePassword verifies the current password and replaces the stored
// credential. Outstanding tokens stay valid; there is no revocation.
func (s *Service) ChangePassword(ctx context.Context, userID ulid.ULID, current, next string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(current, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return oops.Code("AUTH_CHANGE_PASSWORD_FAILED").
			With("operation", "hash new password").
			Wrap(err)
	}

	return s.users.UpdatePassword(ctx, userID, hash)
}

// RequestPasswordReset issues a reset-scoped token for the account
// matching identifier. When no account matches it returns an empty token
// and no error, so callers can answer with the same generic shape either
// way and reveal nothing.
func (s *Service) RequestPasswordReset(ctx context.Context, identifier string) (string, error) {
	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", oops.Code("AUTH_RESET_REQUEST_FAILED").
			With("operation", "get user by identifier").
			Wrap(err)
	}

	token, err := s.codec.Issue(TokenReset, user.ID, time.Now())
	if err != nil {
		return "", oops.Code("AUTH_RESET_REQUEST_FAILED").
			With("operation", "issue reset token").
			Wrap(err)
	}
	return token, nil
}

// ConfirmPasswordReset verifies a reset-scoped token and replaces the
// subject's credential. Access and refresh tokens are rejected here even
// when otherwise well formed.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, next string) error {
	claims, err := s.codec.Verify(TokenReset, token)
	if err != nil {
		return ErrTokenInvalid
	}

	if len(next) < MinPasswordLen {
		return ErrPasswordTooShort
	}

	subject, err := claims.SubjectID()
	if err != nil {
		return ErrTokenInvalid
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return oops.Code("AUTH_RESET_CONFIRM_FAILED").
			With("operation", "hash new password").
			Wrap(err)
	}

	return s.users.UpdatePassword(ctx, subject, hash)
}
