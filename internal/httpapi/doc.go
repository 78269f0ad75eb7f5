// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 pokeRNCP Contributors

// Package httpapi exposes the REST API: session endpoints under
// /api/auth, account management under /api/users, and the Pokémon
// catalog under /api/pokemons. User-facing messages are in French to
// match the frontend.
package httpapi
