// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 pokeRNCP Contributors

package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/oklog/ulid/v2"

	"github.com/pokerncp/pokerncp/internal/auth"
)

// identityKey is the fiber locals key holding the authenticated user ID.
const identityKey = "identity"

// requireAuth resolves the caller's identity from the auth cookie or a
// bearer token and stores it in the request locals. The cookie takes
// precedence.
func (s *Server) requireAuth(c *fiber.Ctx) error {
	token, ok := auth.AccessTokenFrom(c.Get(fiber.HeaderAuthorization), c.Get(fiber.HeaderCookie))
	if !ok {
		return c.Status(fiber.StatusUnauthorized).SendString("Token manquant")
	}

	claims, err := s.service.Codec().Verify(auth.TokenAccess, token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).SendString("Token invalide")
	}

	subject, err := claims.SubjectID()
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).SendString("Token invalide")
	}

	c.Locals(identityKey, subject)
	return c.Next()
}

// currentUserID returns the identity stored by requireAuth.
func currentUserID(c *fiber.Ctx) (ulid.ULID, bool) {
	id, ok := c.Locals(identityKey).(ulid.ULID)
	return id, ok
}
