// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 pokeRNCP Contributors

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// TokenKind selects the secret, TTL, and scope semantics of a token.
type TokenKind string

// Token kinds.
const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
	TokenReset   TokenKind = "reset"
)

// ResetScope is the scope claim carried by reset tokens. It is the only
// structural difference from access/refresh tokens, so verification checks
// it on every path: a reset token never authorizes a request, and a login
// token never resets a password.
const ResetScope = "password_reset"

// Default token lifetimes.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 30 * 24 * time.Hour
	DefaultResetTTL   = 15 * time.Minute
)

// Claims is the signed token payload: subject, issued-at, expiry, and an
// optional scope marker for reset tokens.
type Claims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope,omitempty"`
}

// SubjectID parses the subject claim as a user ULID.
func (c *Claims) SubjectID() (ulid.ULID, error) {
	id, err := ulid.Parse(c.Subject)
	if err != nil {
		return ulid.ULID{}, oops.Code("AUTH_BAD_SUBJECT").With("subject", c.Subject).Wrap(err)
	}
	return id, nil
}

// CodecConfig configures a Codec. RefreshSecret defaults to AccessSecret;
// zero TTLs default to the package defaults.
type CodecConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	ResetTTL      time.Duration
}

// Codec issues and verifies signed tokens. It is immutable after
// construction and safe for concurrent use.
//
// Each kind signs with a key derived from the configured secret and the
// kind label, so a refresh token never verifies as an access token even
// when both kinds are configured with the same secret.
type Codec struct {
	accessKey  []byte
	refreshKey []byte
	resetKey   []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	resetTTL   time.Duration
}

// deriveKey binds a signing key to its token kind.
func deriveKey(secret string, kind TokenKind) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("pokerncp:" + string(kind)))
	return mac.Sum(nil)
}

// NewCodec creates a Codec from the given configuration.
func NewCodec(cfg CodecConfig) (*Codec, error) {
	if cfg.AccessSecret == "" {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("access secret cannot be empty")
	}
	if cfg.RefreshSecret == "" {
		cfg.RefreshSecret = cfg.AccessSecret
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = DefaultResetTTL
	}
	return &Codec{
		accessKey:  deriveKey(cfg.AccessSecret, TokenAccess),
		refreshKey: deriveKey(cfg.RefreshSecret, TokenRefresh),
		resetKey:   deriveKey(cfg.AccessSecret, TokenReset),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		resetTTL:   cfg.ResetTTL,
	}, nil
}

// AccessTTL returns the access token lifetime. The auth cookie Max-Age
// mirrors it.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the refresh token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// Issue builds and signs a token of the given kind for subject, with
// issued-at = now and expiry = now + the kind's TTL.
func (c *Codec) Issue(kind TokenKind, subject ulid.ULID, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl(kind))),
		},
	}
	if kind == TokenReset {
		claims.Scope = ResetScope
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret(kind))
	if err != nil {
		return "", oops.Code("AUTH_SIGN_FAILED").With("kind", string(kind)).Wrap(err)
	}
	return signed, nil
}

// Verify decodes a token, checks its signature against the kind's secret,
// its expiry, and its scope marker. It fails closed: every failure mode
// collapses into ErrTokenInvalid so callers never partially trust a token.
func (c *Codec) Verify(kind TokenKind, token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret(kind), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	// Scope is the structural differentiator between reset tokens and
	// login tokens; it is checked on every path, not just for reset.
	switch kind {
	case TokenReset:
		if claims.Scope != ResetScope {
			return nil, ErrTokenInvalid
		}
	default:
		if claims.Scope != "" {
			return nil, ErrTokenInvalid
		}
	}

	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (c *Codec) secret(kind TokenKind) []byte {
	switch kind {
	case TokenRefresh:
		return c.refreshKey
	case TokenReset:
		return c.resetKey
	default:
		return c.accessKey
	}
}

func (c *Codec) ttl(kind TokenKind) time.Duration {
	switch kind {
	case TokenRefresh:
		return c.refreshTTL
	case TokenReset:
		return c.resetTTL
	default:
		return c.accessTTL
	}
}
