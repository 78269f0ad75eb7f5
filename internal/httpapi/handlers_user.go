// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 pokeRNCP Contributors

package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/oklog/ulid/v2"

	"github.com/pokerncp/pokerncp/internal/auth"
)

type createUserPayload struct {
	Username string  `json:"username"`
	Email    *string `json:"email"`
	Password string  `json:"password"`
}

type updateUserPayload struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// handleCreateUser registers a new account.
func (s *Server) handleCreateUser(c *fiber.Ctx) error {
	var payload createUserPayload
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "Requête invalide")
	}
	if payload.Username == "" || payload.Password == "" {
		return badRequest(c, "Nom d'utilisateur et mot de passe requis")
	}

	_, err := s.service.Register(c.UserContext(), payload.Username, payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) {
			return c.Status(fiber.StatusConflict).SendString("Nom d'utilisateur déjà pris.")
		}
		return s.internalError(c, "user creation failed", err)
	}
	return c.Status(fiber.StatusCreated).SendString("User created.")
}

// pathUserID parses the :id path parameter and enforces that it matches
// the authenticated user. Accounts may only read and modify themselves.
func (s *Server) pathUserID(c *fiber.Ctx) (ulid.ULID, error) {
	current, ok := currentUserID(c)
	if !ok {
		return ulid.ULID{}, unauthorized(c, "Token invalide")
	}
	id, err := ulid.Parse(c.Params("id"))
	if err != nil {
		return ulid.ULID{}, badRequest(c, "Identifiant invalide")
	}
	if id != current {
		return ulid.ULID{}, unauthorized(c, "ACCESS DENIED")
	}
	return id, nil
}

// handleGetUser returns a user's profile. Self-only.
func (s *Server) handleGetUser(c *fiber.Ctx) error {
	id, err := s.pathUserID(c)
	if err != nil {
		return err
	}

	user, err := s.users.GetByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return notFound(c, "User not found.")
		}
		return s.internalError(c, "user lookup failed", err)
	}

	return c.JSON(fiber.Map{
		"id":         user.ID.String(),
		"username":   user.Username,
		"email":      user.Email,
		"created_at": user.CreatedAt,
	})
}

// handleUpdateUser applies a partial profile update. Self-only. A new
// password is hashed before storage.
func (s *Server) handleUpdateUser(c *fiber.Ctx) error {
	id, err := s.pathUserID(c)
	if err != nil {
		return err
	}

	var payload updateUserPayload
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "Requête invalide")
	}

	upd := auth.UserUpdate{
		Username: payload.Username,
		Email:    payload.Email,
	}
	if payload.Password != nil {
		hash, err := s.service.HashPassword(*payload.Password)
		if err != nil {
			return s.internalError(c, "password hash failed", err)
		}
		upd.PasswordHash = &hash
	}

	if err := s.users.Update(c.UserContext(), id, upd); err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameTaken):
			return c.Status(fiber.StatusConflict).SendString("Nom d'utilisateur déjà pris.")
		case errors.Is(err, auth.ErrNotFound):
			return notFound(c, "User not found.")
		}
		return s.internalError(c, "user update failed", err)
	}
	return c.SendString("User updated.")
}

// handleDeleteUser removes an account. Self-only.
func (s *Server) handleDeleteUser(c *fiber.Ctx) error {
	id, err := s.pathUserID(c)
	if err != nil {
		return err
	}

	if err := s.users.Delete(c.UserContext(), id); err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return notFound(c, "User not found.")
		}
		return s.internalError(c, "user deletion failed", err)
	}
	return c.SendString("User deleted.")
}
