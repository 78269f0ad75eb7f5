// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 pokeRNCP Contributors

package httpapi

import (
	"log/slog"
	"strconv"

	"github.com/gobwas/glob"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/samber/oops"

	"github.com/pokerncp/pokerncp/internal/auth"
	"github.com/pokerncp/pokerncp/internal/observability"
	"github.com/pokerncp/pokerncp/internal/pokedex"
)

// Config carries the request-facing settings of the API server.
type Config struct {
	// FrontendOrigin is the CORS origin allowed to send credentialed
	// requests. Glob patterns are supported ("https://*.example.com").
	FrontendOrigin string

	// ProductionMode marks cookies Secure and hides reset tokens from
	// API responses.
	ProductionMode bool
}

// Server is the REST API server.
type Server struct {
	app     *fiber.App
	service *auth.Service
	users   auth.UserRepository
	catalog pokedex.Repository
	metrics *observability.Metrics
	logger  *slog.Logger
	cfg     Config
}

// NewServer assembles the fiber application with all routes registered.
// metrics may be nil when no observability server runs.
func NewServer(
	cfg Config,
	service *auth.Service,
	users auth.UserRepository,
	catalog pokedex.Repository,
	metrics *observability.Metrics,
	logger *slog.Logger,
) (*Server, error) {
	if cfg.FrontendOrigin == "" {
		cfg.FrontendOrigin = "http://localhost:3000"
	}
	originPattern, err := glob.Compile(cfg.FrontendOrigin)
	if err != nil {
		return nil, oops.Code("HTTP_CONFIG_INVALID").
			With("frontend_origin", cfg.FrontendOrigin).
			Wrap(err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		service: service,
		users:   users,
		catalog: catalog,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
	}

	app := fiber.New(fiber.Config{
		AppName:               "pokeRNCP",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(s.countRequests)
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: originPattern.Match,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Content-Type, Authorization",
		AllowCredentials: true,
	}))

	s.app = app
	s.registerRoutes()
	return s, nil
}

// App exposes the underlying fiber application for serving and tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves the API on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	if err := s.app.Listen(addr); err != nil {
		return oops.Code("HTTP_LISTEN_FAILED").With("addr", addr).Wrap(err)
	}
	return nil
}

// Shutdown gracefully stops the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) registerRoutes() {
	s.app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Bienvenue sur le pokeRncp")
	})

	api := s.app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/login", s.handleLogin)
	authRoutes.Post("/refresh-token", s.handleRefresh)
	authRoutes.Post("/logout", s.handleLogout)
	authRoutes.Post("/request-password-reset", s.handleRequestPasswordReset)
	authRoutes.Post("/confirm-password-reset", s.handleConfirmPasswordReset)
	authRoutes.Get("/me", s.requireAuth, s.handleMe)
	authRoutes.Put("/change-password", s.requireAuth, s.handleChangePassword)

	users := api.Group("/users")
	users.Post("/", s.handleCreateUser)
	users.Get("/:id", s.requireAuth, s.handleGetUser)
	users.Patch("/:id", s.requireAuth, s.handleUpdateUser)
	users.Delete("/:id", s.requireAuth, s.handleDeleteUser)

	pokemons := api.Group("/pokemons", s.requireAuth)
	pokemons.Get("/", s.handleListPokemons)
	pokemons.Get("/search", s.handleSearchPokemons)
	pokemons.Post("/catch", s.handleCatchPokemon)
	pokemons.Get("/:id", s.handleGetPokemon)
}

// countRequests records one requests_total sample per request.
func (s *Server) countRequests(c *fiber.Ctx) error {
	err := c.Next()
	if s.metrics != nil {
		status := strconv.Itoa(c.Response().StatusCode())
		s.metrics.RequestsTotal.WithLabelValues(c.Method(), status).Inc()
	}
	return err
}
