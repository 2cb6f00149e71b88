// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/PourroyJean/babymiam-sub000/internal/auth"
	authpg "github.com/PourroyJean/babymiam-sub000/internal/auth/postgres"
	"github.com/PourroyJean/babymiam-sub000/internal/config"
	"github.com/PourroyJean/babymiam-sub000/internal/logging"
	"github.com/PourroyJean/babymiam-sub000/internal/mail"
	"github.com/PourroyJean/babymiam-sub000/internal/observability"
	"github.com/PourroyJean/babymiam-sub000/internal/store"
	trackingpg "github.com/PourroyJean/babymiam-sub000/internal/tracking/postgres"
	"github.com/PourroyJean/babymiam-sub000/internal/web"
)

// NewServeCmd creates the serve subcommand. deps may be nil for production
// defaults.
func NewServeCmd(deps *ServeDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long: `Start the BabyMiam web server. Applies pending database migrations,
then serves the application and, on a separate listener, metrics and
health probes. Shuts down gracefully on SIGINT/SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, deps)
		},
	}

	cmd.Flags().String("http.addr", "", "application listen address")
	cmd.Flags().String("log.level", "", "log level (debug, info, warn, error)")

	return cmd
}

func resolveServeDeps(deps *ServeDeps) *ServeDeps {
	resolved := &ServeDeps{}
	if deps != nil {
		*resolved = *deps
	}
	if resolved.ConfigLoader == nil {
		resolved.ConfigLoader = config.Load
	}
	if resolved.PoolFactory == nil {
		resolved.PoolFactory = store.Connect
	}
	if resolved.MigratorFactory == nil {
		resolved.MigratorFactory = func(databaseURL string) (Migrator, error) {
			return store.NewMigrator(databaseURL)
		}
	}
	if resolved.ObservabilityServerFactory == nil {
		resolved.ObservabilityServerFactory = func(addr string, rc observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, rc)
		}
	}
	return resolved
}

func runServe(cmd *cobra.Command, deps *ServeDeps) error {
	deps = resolveServeDeps(deps)

	cfg, err := deps.ConfigLoader(configFile, serveFlags(cmd))
	if err != nil {
		return oops.Code("CONFIG_LOAD_FAILED").Wrap(err)
	}

	logging.SetDefault("babymiam", version, cfg.Log.Format, logging.ParseLevel(cfg.Log.Level))
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := deps.PoolFactory(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}
	defer pool.Close()

	if err := autoMigrate(deps, cfg.Database.URL); err != nil {
		return err
	}

	var ready atomic.Bool
	obsServer := deps.ObservabilityServerFactory(cfg.Observability.Addr, ready.Load)

	handlers, err := buildHandlers(cfg, pool, logger, obsServer.Metrics())
	if err != nil {
		return err
	}

	obsErrCh, err := obsServer.Start()
	if err != nil {
		return oops.Code("OBSERVABILITY_START_FAILED").Wrap(err)
	}

	webServer := web.NewServer(cfg.HTTP.Addr, handlers.Router(),
		cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout)
	webErrCh, err := webServer.Start()
	if err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		_ = obsServer.Stop(shutdownCtx)
		return oops.Code("WEB_START_FAILED").Wrap(err)
	}

	ready.Store(true)
	logger.Info("babymiam serving", "env", cfg.Env, "addr", cfg.HTTP.Addr)

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr := <-webErrCh:
		if serveErr != nil {
			logger.Error("web server failed", "error", serveErr)
		}
	case obsErr := <-obsErrCh:
		if obsErr != nil {
			logger.Error("observability server failed", "error", obsErr)
		}
	}

	ready.Store(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := webServer.Stop(shutdownCtx); err != nil {
		logger.Error("web server shutdown failed", "error", err)
	}
	if err := obsServer.Stop(shutdownCtx); err != nil {
		logger.Error("observability server shutdown failed", "error", err)
	}
	return nil
}

// serveFlags exposes only the flag overrides config understands.
func serveFlags(cmd *cobra.Command) *pflag.FlagSet {
	return cmd.Flags()
}

func autoMigrate(deps *ServeDeps, databaseURL string) error {
	migrator, err := deps.MigratorFactory(databaseURL)
	if err != nil {
		return oops.Code("MIGRATION_INIT_FAILED").Wrap(err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			slog.Warn("migrator close failed", "error", closeErr)
		}
	}()
	if err := migrator.Up(); err != nil {
		return oops.Code("MIGRATION_FAILED").Wrap(err)
	}
	return nil
}

// buildHandlers wires repositories, services, and the web handler set.
// metrics may be nil and installed later via SetMetrics.
func buildHandlers(cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger, metrics *observability.Metrics) (*web.Handlers, error) {
	accountRepo := authpg.NewAccountRepository(pool)
	tokenRepo := authpg.NewOneTimeTokenRepository(pool)
	ledger := authpg.NewAttemptLedger(pool)
	exposureRepo := trackingpg.NewExposureRepository(pool)

	hasher := auth.NewArgon2idHasher()
	codec, err := auth.NewSessionCodec(cfg.Session.Secret)
	if err != nil {
		return nil, err
	}

	accounts, err := auth.NewAccountService(accountRepo, hasher, codec)
	if err != nil {
		return nil, err
	}
	resets, err := auth.NewPasswordResetService(accountRepo, tokenRepo, hasher)
	if err != nil {
		return nil, err
	}
	verifier, err := auth.NewEmailVerificationService(accountRepo, tokenRepo)
	if err != nil {
		return nil, err
	}
	limiter, err := auth.NewLimiter(ledger, cfg.RateLimit.Window, cfg.RateLimit.MaxAttempts, logger)
	if err != nil {
		return nil, err
	}

	var mailer mail.Mailer
	if cfg.SMTP.Addr != "" {
		mailer = mail.NewSMTPMailer(cfg.SMTP.Addr, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password)
	} else {
		mailer = mail.NewDevMailer(logger)
	}

	return web.NewHandlers(web.HandlersConfig{
		Accounts:      accounts,
		Resets:        resets,
		Verifier:      verifier,
		Limiter:       limiter,
		AccountRepo:   accountRepo,
		Exposures:     exposureRepo,
		Mailer:        mailer,
		Metrics:       metrics,
		Logger:        logger,
		BaseURL:       cfg.BaseURL,
		SecureCookies: cfg.IsProduction(),
		SessionTTL:    cfg.Session.TTL,
	})
}
