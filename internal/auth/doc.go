// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 pokeRNCP Contributors

// Package auth provides the authentication core for pokeRNCP.
//
// # Components
//
//   - Argon2Hasher - salts and hashes passwords into self-describing PHC
//     credential strings and verifies plaintexts against them
//   - Codec - issues and verifies signed access, refresh, and reset tokens
//   - extract.go - pulls bearer/cookie credentials out of request headers
//     with a fixed precedence order
//   - Service - orchestrates the login, refresh, password-change, and
//     password-reset flows against a UserRepository
//
// The package holds no mutable shared state: secrets and TTLs are fixed at
// construction time and safe for concurrent reads. Tokens are stateless and
// expire on their own; there is no server-side revocation store.
package auth
