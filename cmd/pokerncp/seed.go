// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 pokeRNCP Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/pokerncp/pokerncp/internal/pokedex"
	pokedexpg "github.com/pokerncp/pokerncp/internal/pokedex/postgres"
	"github.com/pokerncp/pokerncp/internal/store"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	file    string
	force   bool
	timeout time.Duration
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the Pokedex from a JSON seed file",
		Long: `Loads Pokemon species from a JSON seed file into the database.
This command is idempotent - an already populated catalog is left
untouched unless --force is given, and species are matched by name.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.file, "file", "pokedex.json", "path to the JSON seed file")
	cmd.Flags().BoolVar(&cfg.force, "force", false, "seed even when the catalog already has entries")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string, cfg *seedConfig) error {
	databaseURL, err := migrateDatabaseURL()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(cfg.file)
	if err != nil {
		return oops.Code("SEED_FAILED").With("file", cfg.file).
			Wrapf(err, "reading seed file")
	}

	records, err := pokedex.ParseSeedFile(data)
	if err != nil {
		return oops.Code("SEED_FAILED").With("file", cfg.file).
			Wrapf(err, "parsing seed file")
	}

	// Add timeout to prevent indefinite hangs
	// Use cmd.Context() to respect SIGINT/SIGTERM signals
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.timeout)
	defer cancel()

	cmd.Println("Running migrations...")
	if err := autoMigrate(databaseURL); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}

	cmd.Println("Connecting to database...")
	pool, err := store.Connect(ctx, databaseURL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()

	catalog := pokedexpg.NewRepository(pool)

	count, err := catalog.Count(ctx)
	if err != nil {
		return oops.Code("SEED_FAILED").With("operation", "count species").Wrap(err)
	}
	if count > 0 && !cfg.force {
		cmd.Printf("Catalog already has %d species, skipping seed (use --force to reseed)\n", count)
		slog.Info("catalog already seeded", "count", count)
		return nil
	}

	seeded := 0
	for _, record := range records {
		species, err := record.Normalize()
		if err != nil {
			slog.Warn("skipping invalid seed record", "name", record.Name, "error", err)
			continue
		}
		if err := catalog.UpsertSpecies(ctx, species); err != nil {
			return oops.Code("SEED_FAILED").With("species", species.Name).
				Wrapf(err, "upserting species")
		}
		seeded++
	}

	cmd.Printf("Seeded %d species from %s\n", seeded, cfg.file)
	slog.Info("catalog seeded", "count", seeded, "file", cfg.file)
	return nil
}
