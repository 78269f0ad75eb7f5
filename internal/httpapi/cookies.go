// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 pokeRNCP Contributors

package httpapi

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/pokerncp/pokerncp/internal/auth"
)

// Set-Cookie values are hand-formatted instead of going through fiber's
// cookie serializer: the attribute order is part of the contract with
// the existing frontend.

// formatCookie renders name=value; Path=/; Max-Age=..; HttpOnly;
// SameSite=..[; Secure].
func formatCookie(name, value string, maxAge int, sameSite string, secure bool) string {
	cookie := fmt.Sprintf("%s=%s; Path=/; Max-Age=%d; HttpOnly; SameSite=%s", name, value, maxAge, sameSite)
	if secure {
		cookie += "; Secure"
	}
	return cookie
}

// setAccessCookie appends the auth cookie (SameSite=Lax).
func (s *Server) setAccessCookie(c *fiber.Ctx, token string, maxAge int) {
	c.Append(fiber.HeaderSetCookie,
		formatCookie(auth.AccessCookieName, token, maxAge, "Lax", s.cfg.ProductionMode))
}

// setRefreshCookie appends the refresh cookie (SameSite=Strict).
func (s *Server) setRefreshCookie(c *fiber.Ctx, token string, maxAge int) {
	c.Append(fiber.HeaderSetCookie,
		formatCookie(auth.RefreshCookieName, token, maxAge, "Strict", s.cfg.ProductionMode))
}

// clearSessionCookies appends expired auth and refresh cookies.
func (s *Server) clearSessionCookies(c *fiber.Ctx) {
	c.Append(fiber.HeaderSetCookie,
		formatCookie(auth.AccessCookieName, "", 0, "Lax", s.cfg.ProductionMode))
	c.Append(fiber.HeaderSetCookie,
		formatCookie(auth.RefreshCookieName, "", 0, "Strict", s.cfg.ProductionMode))
}
