// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 pokeRNCP Contributors

// Package pokedex holds the Pokémon catalog: the species records seeded
// from JSON files, the per-user caught state, and the repository
// interface backing the catalog endpoints.
package pokedex
