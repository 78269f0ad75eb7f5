// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 pokeRNCP Contributors

package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pokerncp/pokerncp/pkg/errutil"
)

// internalError logs err with its structured context and answers with a
// generic 500 so no internals leak to clients.
func (s *Server) internalError(c *fiber.Ctx, msg string, err error) error {
	errutil.LogError(s.logger, msg, err)
	return c.Status(fiber.StatusInternalServerError).SendString("Erreur interne du serveur")
}

// badRequest answers 400 with a plain message.
func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).SendString(msg)
}

// unauthorized answers 401 with a plain message.
func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).SendString(msg)
}

// notFound answers 404 with a plain message.
func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).SendString(msg)
}
