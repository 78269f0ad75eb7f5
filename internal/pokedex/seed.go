// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 pokeRNCP Contributors

package pokedex

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// SeedRecord is one entry of a seed JSON file. Seed files come in
// several dialects, so most fields have an alternate spelling; Normalize
// folds them into a single Species.
type SeedRecord struct {
	Name string `json:"name"`

	// Dex number, either numeric or a zero-padded string ("001").
	DexNo *int    `json:"dex_no,omitempty"`
	Num   *string `json:"num,omitempty"`

	// Types, either as an array or as flat fields.
	Type  []string `json:"type,omitempty"`
	Types []string `json:"types,omitempty"`
	Type1 *string  `json:"type1,omitempty"`
	Type2 *string  `json:"type2,omitempty"`

	ImageURL *string `json:"image_url,omitempty"`
	Img      *string `json:"img,omitempty"`

	// Dimensions, either numeric or strings with a unit ("0.71 m").
	HeightM  *float64 `json:"height_m,omitempty"`
	Height   *string  `json:"height,omitempty"`
	WeightKg *float64 `json:"weight_kg,omitempty"`
	Weight   *string  `json:"weight,omitempty"`

	// Base stats, either nested or flat.
	Stats     map[string]int `json:"stats,omitempty"`
	BaseStats map[string]int `json:"baseStats,omitempty"`

	BaseHP       *int `json:"base_hp,omitempty"`
	BaseAttack   *int `json:"base_attack,omitempty"`
	BaseDefense  *int `json:"base_defense,omitempty"`
	BaseSpAttack *int `json:"base_sp_attack,omitempty"`
	BaseSpDef    *int `json:"base_sp_defense,omitempty"`
	BaseSpeed    *int `json:"base_speed,omitempty"`

	Weaknesses []string `json:"weaknesses,omitempty"`
}

// seedSchemaCache holds the compiled record schema to avoid recompilation.
var seedSchemaCache *jschema.Schema

// SeedSchemaID returns the schema $id for seed record files.
func SeedSchemaID() string {
	return "https://pokerncp.dev/schemas/seed-record.schema.json"
}

// GenerateSeedSchema generates a JSON Schema for seed file records.
func GenerateSeedSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference:             true,
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
	}
	schema := r.Reflect(&SeedRecord{})
	schema.ID = jsonschema.ID(SeedSchemaID())
	schema.Title = "pokeRNCP Seed Record"
	schema.Description = "Schema for one entry of a Pokémon seed JSON file"
	schema.Required = []string{"name"}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code("SEED_SCHEMA_FAILED").
			With("operation", "marshal schema").
			Wrap(err)
	}
	return data, nil
}

// compiledSeedSchema returns the cached compiled schema or compiles it.
func compiledSeedSchema() (*jschema.Schema, error) {
	if seedSchemaCache != nil {
		return seedSchemaCache, nil
	}

	schemaBytes, err := GenerateSeedSchema()
	if err != nil {
		return nil, err
	}

	schemaData, err := jschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
	if err != nil {
		return nil, oops.Code("SEED_SCHEMA_FAILED").
			With("operation", "parse schema json").
			Wrap(err)
	}

	c := jschema.NewCompiler()
	if err := c.AddResource("seed-record.schema.json", schemaData); err != nil {
		return nil, oops.Code("SEED_SCHEMA_FAILED").
			With("operation", "add schema resource").
			Wrap(err)
	}
	sch, err := c.Compile("seed-record.schema.json")
	if err != nil {
		return nil, oops.Code("SEED_SCHEMA_FAILED").
			With("operation", "compile schema").
			Wrap(err)
	}

	seedSchemaCache = sch
	return sch, nil
}

// ParseSeedFile decodes a seed JSON file into records. The file may be a
// top-level array, an object with a "pokemon" array, or an object whose
// first array-valued field holds the records. Every record is validated
// against the seed schema before decoding.
func ParseSeedFile(data []byte) ([]SeedRecord, error) {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, oops.Code("SEED_PARSE_FAILED").
			With("operation", "parse seed json").
			Wrap(err)
	}

	items, err := seedArray(value)
	if err != nil {
		return nil, err
	}

	sch, err := compiledSeedSchema()
	if err != nil {
		return nil, err
	}

	records := make([]SeedRecord, 0, len(items))
	for i, item := range items {
		if err := sch.Validate(item); err != nil {
			return nil, oops.Code("SEED_INVALID_RECORD").
				With("index", i).
				Wrap(err)
		}

		raw, err := json.Marshal(item)
		if err != nil {
			return nil, oops.Code("SEED_PARSE_FAILED").
				With("operation", "remarshal record").
				With("index", i).
				Wrap(err)
		}
		var rec SeedRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, oops.Code("SEED_PARSE_FAILED").
				With("operation", "decode record").
				With("index", i).
				Wrap(err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// seedArray locates the record array inside a decoded seed file.
func seedArray(value any) ([]any, error) {
	switch v := value.(type) {
	case []any:
		return v, nil
	case map[string]any:
		if arr, ok := v["pokemon"].([]any); ok {
			return arr, nil
		}
		for _, field := range v {
			if arr, ok := field.([]any); ok {
				return arr, nil
			}
		}
	}
	return nil, oops.Code("SEED_PARSE_FAILED").
		Errorf("seed json must be an array or contain one")
}

// Normalize folds a record's alternate spellings into a Species.
func (r SeedRecord) Normalize() (Species, error) {
	if r.Name == "" {
		return Species{}, oops.Code("SEED_INVALID_RECORD").
			Errorf("record has no name")
	}

	sp := Species{
		Name:       r.Name,
		Weaknesses: r.Weaknesses,
	}

	switch {
	case len(r.Type) > 0:
		sp.Type1 = r.Type[0]
		if len(r.Type) > 1 {
			sp.Type2 = &r.Type[1]
		}
	case len(r.Types) > 0:
		sp.Type1 = r.Types[0]
		if len(r.Types) > 1 {
			sp.Type2 = &r.Types[1]
		}
	case r.Type1 != nil:
		sp.Type1 = *r.Type1
		sp.Type2 = r.Type2
	}
	if sp.Type1 == "" {
		return Species{}, oops.Code("SEED_INVALID_RECORD").
			With("name", r.Name).
			Errorf("record has no primary type")
	}

	sp.DexNo = r.DexNo
	if sp.DexNo == nil && r.Num != nil {
		if n, err := strconv.Atoi(strings.TrimSpace(*r.Num)); err == nil {
			sp.DexNo = &n
		}
	}

	sp.ImageURL = r.ImageURL
	if sp.ImageURL == nil {
		sp.ImageURL = r.Img
	}

	sp.HeightM = r.HeightM
	if sp.HeightM == nil && r.Height != nil {
		sp.HeightM = parseMeasure(*r.Height)
	}
	sp.WeightKg = r.WeightKg
	if sp.WeightKg == nil && r.Weight != nil {
		sp.WeightKg = parseMeasure(*r.Weight)
	}

	stats := r.Stats
	if stats == nil {
		stats = r.BaseStats
	}
	if stats != nil {
		sp.BaseHP = statValue(stats, "hp")
		sp.BaseAttack = statValue(stats, "attack")
		sp.BaseDefense = statValue(stats, "defense")
		sp.BaseSpAttack = statValue(stats, "sp_attack", "spAttack", "special-attack")
		sp.BaseSpDef = statValue(stats, "sp_defense", "spDefense", "special-defense")
		sp.BaseSpeed = statValue(stats, "speed")
	} else {
		sp.BaseHP = r.BaseHP
		sp.BaseAttack = r.BaseAttack
		sp.BaseDefense = r.BaseDefense
		sp.BaseSpAttack = r.BaseSpAttack
		sp.BaseSpDef = r.BaseSpDef
		sp.BaseSpeed = r.BaseSpeed
	}

	return sp, nil
}

// parseMeasure extracts the leading number of a measure like "0.71 m",
// tolerating a decimal comma. Returns nil when nothing parses.
func parseMeasure(s string) *float64 {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(fields[0], ",", "."), 64)
	if err != nil {
		return nil
	}
	return &n
}

// statValue returns the first of keys present in stats.
func statValue(stats map[string]int, keys ...string) *int {
	for _, key := range keys {
		if v, ok := stats[key]; ok {
			return &v
		}
	}
	return nil
}
