// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 pokeRNCP Contributors

// Package config loads and validates the runtime configuration from
// defaults, an optional YAML file, environment variables, and
// command-line flags.
package config
