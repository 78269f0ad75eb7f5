package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the pokeRNCP CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pokerncp",
		Short: "pokeRNCP - a Pokemon catalog backend",
		Long: `pokeRNCP is the REST backend of the Pokemon catalog: account
management, JWT session handling, and a per-user Pokedex over PostgreSQL.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewStatusCmd())

	return cmd
}
