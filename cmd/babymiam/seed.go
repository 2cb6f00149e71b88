// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package main

import (
	"context"
	_ "embed"
	"errors"
	"os"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/PourroyJean/babymiam-sub000/internal/auth"
	authpg "github.com/PourroyJean/babymiam-sub000/internal/auth/postgres"
	"github.com/PourroyJean/babymiam-sub000/internal/config"
	"github.com/PourroyJean/babymiam-sub000/internal/store"
	"github.com/PourroyJean/babymiam-sub000/internal/tracking"
	trackingpg "github.com/PourroyJean/babymiam-sub000/internal/tracking/postgres"
)

//go:embed seed.yaml
var defaultSeed []byte

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedFixture is the YAML shape of a seed file.
type seedFixture struct {
	Account struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"account"`
	Exposures []struct {
		FoodName     string `yaml:"food_name"`
		Category     string `yaml:"category"`
		Texture      string `yaml:"texture"`
		Reaction     string `yaml:"reaction"`
		Allergen     bool   `yaml:"allergen"`
		Notes        string `yaml:"notes"`
		TriedDaysAgo int    `yaml:"tried_days_ago"`
	} `yaml:"exposures"`
}

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	file    string
	timeout time.Duration
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed a demo account with sample exposures",
		Long: `Creates a demo account and sample food exposures from a YAML fixture.
This command is idempotent - if the account already exists nothing is changed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.file, "file", "", "seed fixture file (defaults to the built-in fixture)")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string, seedCfg *seedConfig) error {
	fixture, err := loadFixture(seedCfg.file)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return oops.Code("CONFIG_LOAD_FAILED").Wrap(err)
	}

	// cmd.Context() keeps SIGINT/SIGTERM working under the timeout
	ctx, cancel := context.WithTimeout(cmd.Context(), seedCfg.timeout)
	defer cancel()

	cmd.Println("Connecting to database...")
	pool, err := store.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}
	defer pool.Close()

	cmd.Println("Running migrations...")
	migrator, err := store.NewMigrator(cfg.Database.URL)
	if err != nil {
		return err
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return err
	}
	if err := migrator.Close(); err != nil {
		cmd.PrintErrf("warning: migrator close failed: %v\n", err)
	}

	accountRepo := authpg.NewAccountRepository(pool)
	exposureRepo := trackingpg.NewExposureRepository(pool)
	hasher := auth.NewArgon2idHasher()

	hash, err := hasher.Hash(fixture.Account.Password)
	if err != nil {
		return oops.Code("SEED_FAILED").With("operation", "hash seed password").Wrap(err)
	}
	account, err := auth.NewAccount(fixture.Account.Email, hash)
	if err != nil {
		return oops.Code("SEED_FAILED").With("operation", "build seed account").Wrap(err)
	}

	if err := accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			cmd.Println("Seed account already exists, skipping")
			return nil
		}
		return oops.Code("SEED_FAILED").With("operation", "create seed account").Wrap(err)
	}

	now := time.Now()
	for _, row := range fixture.Exposures {
		exposure, expErr := tracking.NewExposure(
			account.ID,
			row.FoodName,
			row.Category,
			tracking.TextureStage(row.Texture),
			tracking.Reaction(row.Reaction),
			row.Allergen,
			row.Notes,
			now.AddDate(0, 0, -row.TriedDaysAgo),
		)
		if expErr == nil {
			expErr = exposureRepo.Create(ctx, exposure)
		}
		if expErr != nil {
			return oops.Code("SEED_FAILED").
				With("food", row.FoodName).
				Wrap(expErr)
		}
	}

	cmd.Printf("Seeded account %s with %d exposures\n", account.Email, len(fixture.Exposures))
	return nil
}

func loadFixture(path string) (*seedFixture, error) {
	data := defaultSeed
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, oops.Code("SEED_FILE_FAILED").With("path", path).Wrap(err)
		}
		data = fileData
	}

	var fixture seedFixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, oops.Code("SEED_PARSE_FAILED").Wrap(err)
	}
	if fixture.Account.Email == "" || fixture.Account.Password == "" {
		return nil, oops.Code("SEED_PARSE_FAILED").
			Errorf("fixture must set account.email and account.password")
	}
	return &fixture, nil
}
