// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 pokeRNCP Contributors

// Package postgres implements the pokedex repository using PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/pokerncp/pokerncp/internal/pokedex"
)

// DB is the subset of pgxpool.Pool the repository needs. pgxmock
// satisfies it for unit tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements pokedex.Repository using PostgreSQL.
type Repository struct {
	db DB
}

// NewRepository creates a new Repository.
func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

const listColumns = `
	p.id, p.name, p.type1, p.type2, p.dex_no, p.image_url,
	EXISTS (
		SELECT 1 FROM user_pokemon up
		WHERE up.user_id = $1 AND up.pokemon_id = p.id
	) AS caught`

// List returns the whole catalog ordered by ID, with userID's caught
// flags.
func (r *Repository) List(ctx context.Context, userID ulid.ULID) ([]pokedex.Pokemon, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+listColumns+`
		FROM pokemon p
		ORDER BY p.id
	`, userID.String())
	if err != nil {
		return nil, oops.Code("POKEDEX_LIST_FAILED").
			With("operation", "list pokemon").
			Wrap(err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// Search returns up to ten species whose name starts with prefix,
// case-insensitively, ordered by name.
func (r *Repository) Search(ctx context.Context, userID ulid.ULID, prefix string) ([]pokedex.Pokemon, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+listColumns+`
		FROM pokemon p
		WHERE p.name ILIKE $2
		ORDER BY p.name
		LIMIT 10
	`, userID.String(), prefix+"%")
	if err != nil {
		return nil, oops.Code("POKEDEX_SEARCH_FAILED").
			With("operation", "search pokemon").
			With("prefix", prefix).
			Wrap(err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// GetDetail returns the full record for one species with userID's caught
// flag.
func (r *Repository) GetDetail(ctx context.Context, userID ulid.ULID, id int) (*pokedex.Detail, error) {
	row := r.db.QueryRow(ctx, `
		SELECT
			p.id, p.name, p.type1, p.type2, p.dex_no, p.image_url,
			p.height_m, p.weight_kg,
			p.base_hp, p.base_attack, p.base_defense,
			p.base_sp_attack, p.base_sp_defense, p.base_speed,
			p.weaknesses,
			EXISTS (
				SELECT 1 FROM user_pokemon up
				WHERE up.user_id = $1 AND up.pokemon_id = p.id
			) AS caught
		FROM pokemon p
		WHERE p.id = $2
	`, userID.String(), id)

	var d pokedex.Detail
	err := row.Scan(
		&d.ID, &d.Name, &d.Type1, &d.Type2, &d.DexNo, &d.ImageURL,
		&d.HeightM, &d.WeightKg,
		&d.BaseHP, &d.BaseAttack, &d.BaseDefense,
		&d.BaseSpAttack, &d.BaseSpDef, &d.BaseSpeed,
		&d.Weaknesses,
		&d.Caught,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("POKEMON_NOT_FOUND").
			With("id", id).
			Wrap(pokedex.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("POKEDEX_GET_FAILED").
			With("operation", "get pokemon detail").
			With("id", id).
			Wrap(err)
	}
	return &d, nil
}

// IDByName resolves a species name to its ID.
func (r *Repository) IDByName(ctx context.Context, name string) (int, error) {
	var id int
	err := r.db.QueryRow(ctx, `
		SELECT id FROM pokemon WHERE name = $1
	`, name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, oops.Code("POKEMON_NOT_FOUND").
			With("name", name).
			Wrap(pokedex.ErrNotFound)
	}
	if err != nil {
		return 0, oops.Code("POKEDEX_ID_BY_NAME_FAILED").
			With("operation", "resolve pokemon name").
			With("name", name).
			Wrap(err)
	}
	return id, nil
}

// Catch marks a species as caught by userID. Catching an already caught
// species is a no-op.
func (r *Repository) Catch(ctx context.Context, userID ulid.ULID, pokemonID int, nickname *string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_pokemon (user_id, pokemon_id, nickname)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, pokemon_id) DO NOTHING
	`, userID.String(), pokemonID, nickname)
	if err != nil {
		return oops.Code("POKEDEX_CATCH_FAILED").
			With("operation", "mark pokemon caught").
			With("pokemon_id", pokemonID).
			Wrap(err)
	}
	return nil
}

// UpsertSpecies inserts or updates a catalog record keyed by name.
func (r *Repository) UpsertSpecies(ctx context.Context, sp pokedex.Species) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO pokemon (
			name, type1, type2,
			base_hp, base_attack, base_defense,
			base_sp_attack, base_sp_defense, base_speed,
			dex_no, image_url, height_m, weight_kg, weaknesses
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (name) DO UPDATE SET
			type1 = EXCLUDED.type1,
			type2 = EXCLUDED.type2,
			base_hp = EXCLUDED.base_hp,
			base_attack = EXCLUDED.base_attack,
			base_defense = EXCLUDED.base_defense,
			base_sp_attack = EXCLUDED.base_sp_attack,
			base_sp_defense = EXCLUDED.base_sp_defense,
			base_speed = EXCLUDED.base_speed,
			dex_no = EXCLUDED.dex_no,
			image_url = EXCLUDED.image_url,
			height_m = EXCLUDED.height_m,
			weight_kg = EXCLUDED.weight_kg,
			weaknesses = EXCLUDED.weaknesses
	`,
		sp.Name,
		sp.Type1,
		sp.Type2,
		sp.BaseHP,
		sp.BaseAttack,
		sp.BaseDefense,
		sp.BaseSpAttack,
		sp.BaseSpDef,
		sp.BaseSpeed,
		sp.DexNo,
		sp.ImageURL,
		sp.HeightM,
		sp.WeightKg,
		sp.Weaknesses,
	)
	if err != nil {
		return oops.Code("POKEDEX_UPSERT_FAILED").
			With("operation", "upsert species").
			With("name", sp.Name).
			Wrap(err)
	}
	return nil
}

// Count returns the number of species in the catalog.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM pokemon`).Scan(&count)
	if err != nil {
		return 0, oops.Code("POKEDEX_COUNT_FAILED").
			With("operation", "count pokemon").
			Wrap(err)
	}
	return count, nil
}

// collect scans list rows into Pokemon values.
func (r *Repository) collect(rows pgx.Rows) ([]pokedex.Pokemon, error) {
	list := make([]pokedex.Pokemon, 0)
	for rows.Next() {
		var p pokedex.Pokemon
		if err := rows.Scan(&p.ID, &p.Name, &p.Type1, &p.Type2, &p.DexNo, &p.ImageURL, &p.Caught); err != nil {
			return nil, oops.Code("POKEDEX_SCAN_FAILED").
				With("operation", "scan pokemon row").
				Wrap(err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("POKEDEX_SCAN_FAILED").
			With("operation", "iterate pokemon rows").
			Wrap(err)
	}
	return list, nil
}

// Compile-time interface check.
var _ pokedex.Repository = (*Repository)(nil)
