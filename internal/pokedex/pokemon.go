// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 pokeRNCP Contributors

package pokedex

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
)

// ErrNotFound is returned when no species matches a lookup.
var ErrNotFound = errors.New("pokemon not found")

// Pokemon is a catalog entry as listed for a user. Caught reflects
// whether that user has marked the species as captured.
type Pokemon struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Type1    string  `json:"type1"`
	Type2    *string `json:"type2"`
	DexNo    *int    `json:"dex_no,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
	Caught   bool    `json:"caught"`
}

// Detail is the full record for a single species, again with the
// per-user caught flag.
type Detail struct {
	Pokemon
	HeightM      *float64 `json:"height_m,omitempty"`
	WeightKg     *float64 `json:"weight_kg,omitempty"`
	BaseHP       *int     `json:"base_hp"`
	BaseAttack   *int     `json:"base_attack"`
	BaseDefense  *int     `json:"base_defense"`
	BaseSpAttack *int     `json:"base_sp_attack"`
	BaseSpDef    *int     `json:"base_sp_defense"`
	BaseSpeed    *int     `json:"base_speed"`
	Weaknesses   []string `json:"weaknesses,omitempty"`
}

// Species is a catalog record without user state, as written by the
// seeder. Name is the upsert key.
type Species struct {
	Name         string
	Type1        string
	Type2        *string
	DexNo        *int
	ImageURL     *string
	HeightM      *float64
	WeightKg     *float64
	BaseHP       *int
	BaseAttack   *int
	BaseDefense  *int
	BaseSpAttack *int
	BaseSpDef    *int
	BaseSpeed    *int
	Weaknesses   []string
}

// Repository manages catalog persistence and per-user caught state.
// Implementations return ErrNotFound for missing species.
type Repository interface {
	// List returns the whole catalog ordered by ID, with userID's
	// caught flags.
	List(ctx context.Context, userID ulid.ULID) ([]Pokemon, error)

	// Search returns up to ten species whose name starts with prefix,
	// ordered by name, with userID's caught flags.
	Search(ctx context.Context, userID ulid.ULID, prefix string) ([]Pokemon, error)

	// GetDetail returns the full record for one species.
	GetDetail(ctx context.Context, userID ulid.ULID, id int) (*Detail, error)

	// IDByName resolves a species name to its ID.
	IDByName(ctx context.Context, name string) (int, error)

	// Catch marks a species as caught by userID. Catching an already
	// caught species is a no-op.
	Catch(ctx context.Context, userID ulid.ULID, pokemonID int, nickname *string) error

	// UpsertSpecies inserts or updates a catalog record keyed by name.
	UpsertSpecies(ctx context.Context, sp Species) error

	// Count returns the number of species in the catalog.
	Count(ctx context.Context) (int64, error)
}
