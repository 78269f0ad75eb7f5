// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 pokeRNCP Contributors

package auth_test

import (
	"context"
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokerncp/pokerncp/internal/auth"
)

// memUserRepo is an in-memory UserRepository for service tests.
type memUserRepo struct {
	users map[ulid.ULID]*auth.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[ulid.ULID]*auth.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *auth.User) error {
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return auth.ErrUsernameTaken
		}
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id ulid.ULID) (*auth.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) GetByIdentifier(_ context.Context, identifier string) (*auth.User, error) {
	for _, user := range r.users {
		if user.Username == identifier || (user.Email != nil && *user.Email == identifier) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id ulid.ULID, passwordHash string) error {
	user, ok := r.users[id]
	if !ok {
		return auth.ErrNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func (r *memUserRepo) Update(_ context.Context, id ulid.ULID, upd auth.UserUpdate) error {
	user, ok := r.users[id]
	if !ok {
		return auth.ErrNotFound
	}
	if upd.Username != nil {
		user.Username = *upd.Username
	}
	if upd.Email != nil {
		user.Email = upd.Email
	}
	if upd.PasswordHash != nil {
		user.PasswordHash = *upd.PasswordHash
	}
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id ulid.ULID) error {
	if _, ok := r.users[id]; !ok {
		return auth.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func newTestService(t *testing.T) (*auth.Service, *memUserRepo) {
	t.Helper()
	repo := newMemUserRepo()
	codec, err := auth.NewCodec(auth.CodecConfig{
		AccessSecret:  "access-secret-for-tests",
		RefreshSecret: "refresh-secret-for-tests",
	})
	require.NoError(t, err)
	return auth.NewService(repo, auth.NewArgon2Hasher(), codec), repo
}

func registerAlice(t *testing.T, svc *auth.Service) *auth.User {
	t.Helper()
	email := "alice@example.com"
	user, err := svc.Register(context.Background(), "alice", &email, "p4ssw0rd!")
	require.NoError(t, err)
	return user
}

func TestService_Register(t *testing.T) {
	svc, _ := newTestService(t)

	t.Run("creates a user with a hashed credential", func(t *testing.T) {
		user := registerAlice(t, svc)
		assert.Equal(t, "alice", user.Username)
		assert.True(t, strings.HasPrefix(user.PasswordHash, "$argon2id$"))
		assert.NotContains(t, user.PasswordHash, "p4ssw0rd!")
	})

	t.Run("rejects a taken username", func(t *testing.T) {
		_, err := svc.Register(context.Background(), "alice", nil, "another-pass")
		assert.ErrorIs(t, err, auth.ErrUsernameTaken)
	})

	t.Run("rejects an empty password", func(t *testing.T) {
		_, err := svc.Register(context.Background(), "bob", nil, "")
		assert.Error(t, err)
	})
}

func TestService_Login(t *testing.T) {
	svc, _ := newTestService(t)
	user := registerAlice(t, svc)

	t.Run("by username", func(t *testing.T) {
		got, pair, err := svc.Login(context.Background(), "alice", "p4ssw0rd!")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.NotEmpty(t, pair.Access)
		assert.NotEmpty(t, pair.Refresh)
		assert.NotEqual(t, pair.Access, pair.Refresh)
	})

	t.Run("by email", func(t *testing.T) {
		got, _, err := svc.Login(context.Background(), "alice@example.com", "p4ssw0rd!")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("tokens verify as their own kinds only", func(t *testing.T) {
		_, pair, err := svc.Login(context.Background(), "alice", "p4ssw0rd!")
		require.NoError(t, err)

		claims, err := svc.Codec().Verify(auth.TokenAccess, pair.Access)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.Subject)

		_, err = svc.Codec().Verify(auth.TokenAccess, pair.Refresh)
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)
		_, err = svc.Codec().Verify(auth.TokenRefresh, pair.Access)
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(context.Background(), "alice", "not-the-password")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown identifier", func(t *testing.T) {
		_, _, err := svc.Login(context.Background(), "nobody", "p4ssw0rd!")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestService_Refresh(t *testing.T) {
	svc, _ := newTestService(t)
	user := registerAlice(t, svc)
	_, pair, err := svc.Login(context.Background(), "alice", "p4ssw0rd!")
	require.NoError(t, err)

	t.Run("mints a new access token", func(t *testing.T) {
		access, err := svc.Refresh(pair.Refresh)
		require.NoError(t, err)

		claims, err := svc.Codec().Verify(auth.TokenAccess, access)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.Subject)
	})

	t.Run("refresh token stays usable", func(t *testing.T) {
		_, err := svc.Refresh(pair.Refresh)
		require.NoError(t, err)
		_, err = svc.Refresh(pair.Refresh)
		assert.NoError(t, err)
	})

	t.Run("rejects an access token", func(t *testing.T) {
		_, err := svc.Refresh(pair.Access)
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := svc.Refresh("not-a-token")
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)
	})
}

func TestService_ChangePassword(t *testing.T) {
	svc, _ := newTestService(t)
	user := registerAlice(t, svc)

	t.Run("wrong current password", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), user.ID, "wrong", "new-password")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), ulid.Make(), "p4ssw0rd!", "new-password")
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("replaces the credential", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), user.ID, "p4ssw0rd!", "new-password")
		require.NoError(t, err)

		_, _, err = svc.Login(context.Background(), "alice", "p4ssw0rd!")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		_, _, err = svc.Login(context.Background(), "alice", "new-password")
		assert.NoError(t, err)
	})
}

func TestService_PasswordReset(t *testing.T) {
	svc, _ := newTestService(t)
	user := registerAlice(t, svc)

	t.Run("unknown identifier yields no token and no error", func(t *testing.T) {
		token, err := svc.RequestPasswordReset(context.Background(), "nobody")
		require.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("full flow", func(t *testing.T) {
		token, err := svc.RequestPasswordReset(context.Background(), "alice")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := svc.Codec().Verify(auth.TokenReset, token)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.Subject)
		assert.Equal(t, auth.ResetScope, claims.Scope)

		err = svc.ConfirmPasswordReset(context.Background(), token, "reset-password")
		require.NoError(t, err)

		_, _, err = svc.Login(context.Background(), "alice", "reset-password")
		assert.NoError(t, err)
	})

	t.Run("rejects a short new password", func(t *testing.T) {
		token, err := svc.RequestPasswordReset(context.Background(), "alice")
		require.NoError(t, err)

		err = svc.ConfirmPasswordReset(context.Background(), token, "short")
		assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
	})

	t.Run("rejects an access token", func(t *testing.T) {
		_, pair, err := svc.Login(context.Background(), "alice", "reset-password")
		require.NoError(t, err)

		err = svc.ConfirmPasswordReset(context.Background(), pair.Access, "another-password")
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)
	})
}
