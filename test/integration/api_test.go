// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 pokeRNCP Contributors

//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pokerncp/pokerncp/internal/auth"
	authpg "github.com/pokerncp/pokerncp/internal/auth/postgres"
	"github.com/pokerncp/pokerncp/internal/httpapi"
	"github.com/pokerncp/pokerncp/internal/pokedex"
	pokedexpg "github.com/pokerncp/pokerncp/internal/pokedex/postgres"
	"github.com/pokerncp/pokerncp/internal/store"
)

var _ = Describe("API", Ordered, func() {
	var (
		ctx       context.Context
		cancel    context.CancelFunc
		container testcontainers.Container
		pool      *pgxpool.Pool
		server    *httpapi.Server
		catalog   *pokedexpg.Repository
	)

	BeforeAll(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 2*time.Minute)

		var err error
		pgContainer, err := postgres.Run(ctx,
			"postgres:18-alpine",
			postgres.WithDatabase("pokerncp_test"),
			postgres.WithUsername("pokerncp"),
			postgres.WithPassword("pokerncp"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
			),
		)
		Expect(err).NotTo(HaveOccurred())
		container = pgContainer

		connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		Expect(err).NotTo(HaveOccurred())

		migrator, err := store.NewMigrator(connStr)
		Expect(err).NotTo(HaveOccurred())
		Expect(migrator.Up()).To(Succeed())
		Expect(migrator.Close()).To(Succeed())

		pool, err = store.Connect(ctx, connStr)
		Expect(err).NotTo(HaveOccurred())

		codec, err := auth.NewCodec(auth.CodecConfig{
			AccessSecret:  "integration-access-secret",
			RefreshSecret: "integration-refresh-secret",
		})
		Expect(err).NotTo(HaveOccurred())

		users := authpg.NewUserRepository(pool)
		catalog = pokedexpg.NewRepository(pool)
		service := auth.NewService(users, auth.NewArgon2Hasher(), codec)

		server, err = httpapi.NewServer(httpapi.Config{}, service, users, catalog, nil, nil)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterAll(func() {
		if pool != nil {
			pool.Close()
		}
		if container != nil {
			Expect(container.Terminate(context.Background())).To(Succeed())
		}
		cancel()
	})

	doJSON := func(method, path, body string, headers map[string]string) *http.Response {
		GinkgoHelper()
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, path, reader)
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		resp, err := server.App().Test(req, -1)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	readBody := func(resp *http.Response) string {
		GinkgoHelper()
		defer func() { _ = resp.Body.Close() }()
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return string(body)
	}

	cookieValue := func(resp *http.Response, name string) string {
		for _, cookie := range resp.Header.Values("Set-Cookie") {
			if value, found := strings.CutPrefix(cookie, name+"="); found {
				return strings.SplitN(value, ";", 2)[0]
			}
		}
		return ""
	}

	var authCookie, refreshCookie string

	It("registers a new account", func() {
		resp := doJSON(http.MethodPost, "/api/users",
			`{"username": "ash", "email": "ash@example.com", "password": "pikachu123"}`, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		Expect(readBody(resp)).To(Equal("User created."))
	})

	It("logs in and receives session cookies", func() {
		resp := doJSON(http.MethodPost, "/api/auth/login",
			`{"username": "ash", "password": "pikachu123"}`, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		authCookie = cookieValue(resp, "auth")
		refreshCookie = cookieValue(resp, "refresh")
		Expect(authCookie).NotTo(BeEmpty())
		Expect(refreshCookie).NotTo(BeEmpty())
		_ = readBody(resp)
	})

	It("resolves the session to the profile", func() {
		resp := doJSON(http.MethodGet, "/api/auth/me", "",
			map[string]string{"Cookie": "auth=" + authCookie})
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		var profile map[string]any
		Expect(json.Unmarshal([]byte(readBody(resp)), &profile)).To(Succeed())
		Expect(profile["username"]).To(Equal("ash"))
		Expect(profile["email"]).To(Equal("ash@example.com"))
	})

	It("rejects a password change with the wrong current password", func() {
		resp := doJSON(http.MethodPut, "/api/auth/change-password",
			`{"current_password": "wrong", "new_password": "charizard456"}`,
			map[string]string{"Cookie": "auth=" + authCookie})
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		_ = readBody(resp)
	})

	It("changes the password", func() {
		resp := doJSON(http.MethodPut, "/api/auth/change-password",
			`{"current_password": "pikachu123", "new_password": "charizard456"}`,
			map[string]string{"Cookie": "auth=" + authCookie})
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		_ = readBody(resp)
	})

	It("invalidates the old password", func() {
		resp := doJSON(http.MethodPost, "/api/auth/login",
			`{"username": "ash", "password": "pikachu123"}`, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		_ = readBody(resp)

		resp = doJSON(http.MethodPost, "/api/auth/login",
			`{"username": "ash", "password": "charizard456"}`, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		authCookie = cookieValue(resp, "auth")
		refreshCookie = cookieValue(resp, "refresh")
		_ = readBody(resp)
	})

	It("refreshes the access token", func() {
		resp := doJSON(http.MethodPost, "/api/auth/refresh-token", "",
			map[string]string{"Cookie": "refresh=" + refreshCookie})
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		fresh := cookieValue(resp, "auth")
		Expect(fresh).NotTo(BeEmpty())
		authCookie = fresh
		_ = readBody(resp)
	})

	It("catches a seeded species", func() {
		Expect(catalog.UpsertSpecies(ctx, pokedex.Species{
			Name:  "Pikachu",
			Type1: "Electric",
		})).To(Succeed())

		resp := doJSON(http.MethodPost, "/api/pokemons/catch",
			`{"name": "Pikachu", "nickname": "Sparky"}`,
			map[string]string{"Cookie": "auth=" + authCookie})
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		_ = readBody(resp)

		resp = doJSON(http.MethodGet, "/api/pokemons", "",
			map[string]string{"Cookie": "auth=" + authCookie})
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		var list []pokedex.Pokemon
		Expect(json.Unmarshal([]byte(readBody(resp)), &list)).To(Succeed())
		Expect(list).To(HaveLen(1))
		Expect(list[0].Name).To(Equal("Pikachu"))
		Expect(list[0].Caught).To(BeTrue())
	})

	It("resets a forgotten password end to end", func() {
		resp := doJSON(http.MethodPost, "/api/auth/request-password-reset",
			`{"email_or_username": "ash@example.com"}`, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusAccepted))

		var body map[string]string
		Expect(json.Unmarshal([]byte(readBody(resp)), &body)).To(Succeed())
		Expect(body["reset_token"]).NotTo(BeEmpty())

		confirm, err := json.Marshal(map[string]string{
			"token":        body["reset_token"],
			"new_password": "snorlax789x",
		})
		Expect(err).NotTo(HaveOccurred())

		resp = doJSON(http.MethodPost, "/api/auth/confirm-password-reset", string(confirm), nil)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		_ = readBody(resp)

		resp = doJSON(http.MethodPost, "/api/auth/login",
			`{"username": "ash", "password": "snorlax789x"}`, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		_ = readBody(resp)
	})
})
