// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/pflag"

	"github.com/PourroyJean/babymiam-sub000/internal/config"
	"github.com/PourroyJean/babymiam-sub000/internal/observability"
)

// Migrator is the subset of store.Migrator the serve command uses.
type Migrator interface {
	Up() error
	Close() error
}

// ObservabilityServer is the subset of observability.Server the serve
// command uses.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Metrics() *observability.Metrics
}

// ServeDeps contains injectable dependencies for the serve command.
// Nil fields fall back to the real implementations, so tests can replace
// only what they need.
type ServeDeps struct {
	// ConfigLoader loads the runtime configuration.
	// Default: config.Load
	ConfigLoader func(path string, flags *pflag.FlagSet) (*config.Config, error)

	// PoolFactory opens the database pool.
	// Default: store.Connect
	PoolFactory func(ctx context.Context, databaseURL string, maxConns int32) (*pgxpool.Pool, error)

	// MigratorFactory creates the schema migrator used for auto-migration.
	// Default: store.NewMigrator
	MigratorFactory func(databaseURL string) (Migrator, error)

	// ObservabilityServerFactory creates the metrics/health server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer
}
