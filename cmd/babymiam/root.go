// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the BabyMiam CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "babymiam",
		Short: "BabyMiam - food introduction tracker",
		Long: `BabyMiam is a personal web application for tracking an infant's
food introduction: exposures, reactions, textures, and allergens.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd(nil))
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewSeedCmd())

	return cmd
}
