// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 pokeRNCP Contributors

package httpapi

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/pokerncp/pokerncp/internal/pokedex"
)

type catchPayload struct {
	Name     string  `json:"name"`
	Nickname *string `json:"nickname"`
}

// handleListPokemons returns the whole catalog with the caller's caught
// flags.
func (s *Server) handleListPokemons(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c, "Token invalide")
	}

	list, err := s.catalog.List(c.UserContext(), userID)
	if err != nil {
		return s.internalError(c, "pokemon list failed", err)
	}
	return c.JSON(list)
}

// handleSearchPokemons returns up to ten species matching the q prefix.
func (s *Server) handleSearchPokemons(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c, "Token invalide")
	}

	list, err := s.catalog.Search(c.UserContext(), userID, c.Query("q"))
	if err != nil {
		return s.internalError(c, "pokemon search failed", err)
	}
	return c.JSON(list)
}

// handleGetPokemon returns the full record for one species.
func (s *Server) handleGetPokemon(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c, "Token invalide")
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return notFound(c, "Pokémon introuvable.")
	}

	detail, err := s.catalog.GetDetail(c.UserContext(), userID, id)
	if err != nil {
		if errors.Is(err, pokedex.ErrNotFound) {
			return notFound(c, "Pokémon introuvable.")
		}
		return s.internalError(c, "pokemon lookup failed", err)
	}
	return c.JSON(detail)
}

// handleCatchPokemon marks a species, addressed by name, as caught by
// the caller. Catching the same species twice is a no-op.
func (s *Server) handleCatchPokemon(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c, "Token invalide")
	}

	var payload catchPayload
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "Requête invalide")
	}

	pokemonID, err := s.catalog.IDByName(c.UserContext(), payload.Name)
	if err != nil {
		if errors.Is(err, pokedex.ErrNotFound) {
			return notFound(c, "Pokémon introuvable.")
		}
		return s.internalError(c, "pokemon name lookup failed", err)
	}

	if err := s.catalog.Catch(c.UserContext(), userID, pokemonID, payload.Nickname); err != nil {
		return s.internalError(c, "pokemon capture failed", err)
	}
	if s.metrics != nil {
		s.metrics.CapturesTotal.Inc()
	}
	return c.Status(fiber.StatusCreated).SendString("Pokémon marqué comme capturé.")
}
