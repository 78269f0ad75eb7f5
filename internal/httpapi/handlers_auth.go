// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 pokeRNCP Contributors

package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/pokerncp/pokerncp/internal/auth"
)

type loginPayload struct {
	// Username holds the identifier and also matches email addresses.
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordPayload struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type requestPasswordResetPayload struct {
	EmailOrUsername string `json:"email_or_username"`
}

type confirmPasswordResetPayload struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// handleLogin authenticates and sets the session cookies.
func (s *Server) handleLogin(c *fiber.Ctx) error {
	var payload loginPayload
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "Requête invalide")
	}

	_, pair, err := s.service.Login(c.UserContext(), payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.countLogin("failure")
			return unauthorized(c, "Identifiants invalides")
		}
		s.countLogin("error")
		return s.internalError(c, "login failed", err)
	}
	s.countLogin("success")

	s.setAccessCookie(c, pair.Access, int(s.service.Codec().AccessTTL().Seconds()))
	s.setRefreshCookie(c, pair.Refresh, int(s.service.Codec().RefreshTTL().Seconds()))
	return c.SendString("Connexion réussie.")
}

// handleRefresh mints a fresh access cookie from a refresh token. The
// bearer token takes precedence over the refresh cookie.
func (s *Server) handleRefresh(c *fiber.Ctx) error {
	token, ok := auth.RefreshTokenFrom(c.Get(fiber.HeaderAuthorization), c.Get(fiber.HeaderCookie))
	if !ok {
		return unauthorized(c, "Refresh token requis")
	}

	access, err := s.service.Refresh(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenInvalid) {
			return unauthorized(c, "Refresh token invalide")
		}
		return s.internalError(c, "token refresh failed", err)
	}

	s.setAccessCookie(c, access, int(s.service.Codec().AccessTTL().Seconds()))
	return c.SendString("Token régénéré.")
}

// handleLogout clears the session cookies. Tokens already issued stay
// valid until they expire.
func (s *Server) handleLogout(c *fiber.Ctx) error {
	s.clearSessionCookies(c)
	return c.SendString("Déconnecté.")
}

// handleMe returns the authenticated user's profile.
func (s *Server) handleMe(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c, "Token invalide")
	}

	user, err := s.users.GetByID(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return notFound(c, "Utilisateur introuvable")
		}
		return s.internalError(c, "profile lookup failed", err)
	}

	return c.JSON(fiber.Map{
		"id":       user.ID.String(),
		"username": user.Username,
		"email":    user.Email,
	})
}

// handleChangePassword verifies the current password before replacing it.
func (s *Server) handleChangePassword(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c, "Token invalide")
	}

	var payload changePasswordPayload
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "Requête invalide")
	}

	err := s.service.ChangePassword(c.UserContext(), userID, payload.CurrentPassword, payload.NewPassword)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return unauthorized(c, "Mot de passe actuel incorrect")
	case errors.Is(err, auth.ErrNotFound):
		return notFound(c, "Utilisateur introuvable")
	case err != nil:
		return s.internalError(c, "password change failed", err)
	}
	return c.SendString("Mot de passe mis à jour")
}

// handleRequestPasswordReset issues a reset token. The response shape is
// the same whether or not the account exists; outside production the
// token is returned directly instead of being mailed.
func (s *Server) handleRequestPasswordReset(c *fiber.Ctx) error {
	var payload requestPasswordResetPayload
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "Requête invalide")
	}

	token, err := s.service.RequestPasswordReset(c.UserContext(), payload.EmailOrUsername)
	if err != nil {
		return s.internalError(c, "password reset request failed", err)
	}

	if token != "" && !s.cfg.ProductionMode {
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"reset_token": token})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "ok"})
}

// handleConfirmPasswordReset redeems a reset token for a new password.
func (s *Server) handleConfirmPasswordReset(c *fiber.Ctx) error {
	var payload confirmPasswordResetPayload
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "Requête invalide")
	}

	err := s.service.ConfirmPasswordReset(c.UserContext(), payload.Token, payload.NewPassword)
	switch {
	case errors.Is(err, auth.ErrTokenInvalid), errors.Is(err, auth.ErrNotFound):
		return badRequest(c, "Token invalide ou expiré")
	case errors.Is(err, auth.ErrPasswordTooShort):
		return badRequest(c, "Mot de passe trop court")
	case err != nil:
		return s.internalError(c, "password reset failed", err)
	}
	return c.SendString("Mot de passe réinitialisé")
}

// countLogin records a logins_total sample.
func (s *Server) countLogin(result string) {
	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues(result).Inc()
	}
}
