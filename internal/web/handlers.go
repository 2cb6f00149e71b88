// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package web

import (
	"log/slog"
	"strings"
	"time"

	"html/template"

	"github.com/PourroyJean/babymiam-sub000/internal/auth"
	"github.com/PourroyJean/babymiam-sub000/internal/mail"
	"github.com/PourroyJean/babymiam-sub000/internal/observability"
	"github.com/PourroyJean/babymiam-sub000/internal/tracking"
	"github.com/samber/oops"
)

// HandlersConfig carries the collaborators of the web surface.
type HandlersConfig struct {
	Accounts    *auth.AccountService
	Resets      *auth.PasswordResetService
	Verifier    *auth.EmailVerificationService
	Limiter     *auth.Limiter
	AccountRepo auth.AccountRepository
	Exposures   tracking.ExposureRepository
	Mailer      mail.Mailer
	Metrics     *observability.Metrics
	Logger      *slog.Logger

	// BaseURL is the absolute prefix for links sent by email.
	BaseURL string
	// SecureCookies marks session cookies Secure (production).
	SecureCookies bool
	SessionTTL    time.Duration
}

// Handlers serves the application routes.
type Handlers struct {
	accounts    *auth.AccountService
	resets      *auth.PasswordResetService
	verifier    *auth.EmailVerificationService
	limiter     *auth.Limiter
	accountRepo auth.AccountRepository
	exposures   tracking.ExposureRepository
	mailer      mail.Mailer
	metrics     *observability.Metrics
	logger      *slog.Logger

	baseURL       string
	secureCookies bool
	sessionTTL    time.Duration
	templates     *template.Template
}

// NewHandlers validates the configuration and builds the handler set.
func NewHandlers(cfg HandlersConfig) (*Handlers, error) {
	switch {
	case cfg.Accounts == nil:
		return nil, oops.Code("WEB_MISSING_DEP").Errorf("account service is required")
	case cfg.Resets == nil:
		return nil, oops.Code("WEB_MISSING_DEP").Errorf("password reset service is required")
	case cfg.Verifier == nil:
		return nil, oops.Code("WEB_MISSING_DEP").Errorf("email verification service is required")
	case cfg.Limiter == nil:
		return nil, oops.Code("WEB_MISSING_DEP").Errorf("rate limiter is required")
	case cfg.AccountRepo == nil:
		return nil, oops.Code("WEB_MISSING_DEP").Errorf("account repository is required")
	case cfg.Exposures == nil:
		return nil, oops.Code("WEB_MISSING_DEP").Errorf("exposure repository is required")
	case cfg.Mailer == nil:
		return nil, oops.Code("WEB_MISSING_DEP").Errorf("mailer is required")
	case cfg.BaseURL == "":
		return nil, oops.Code("WEB_MISSING_DEP").Errorf("base URL is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sessionTTL := cfg.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = 30 * 24 * time.Hour
	}

	return &Handlers{
		accounts:      cfg.Accounts,
		resets:        cfg.Resets,
		verifier:      cfg.Verifier,
		limiter:       cfg.Limiter,
		accountRepo:   cfg.AccountRepo,
		exposures:     cfg.Exposures,
		mailer:        cfg.Mailer,
		metrics:       cfg.Metrics,
		logger:        logger,
		baseURL:       strings.TrimSuffix(cfg.BaseURL, "/"),
		secureCookies: cfg.SecureCookies,
		sessionTTL:    sessionTTL,
		templates:     parseTemplates(),
	}, nil
}

// absoluteURL joins a path onto the configured base URL.
func (h *Handlers) absoluteURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return h.baseURL + path
}

func (h *Handlers) countLogin(outcome string) {
	if h.metrics != nil {
		h.metrics.LoginsTotal.WithLabelValues(outcome).Inc()
	}
}

func (h *Handlers) countSignup() {
	if h.metrics != nil {
		h.metrics.SignupsTotal.Inc()
	}
}

func (h *Handlers) countRateLimited(action string) {
	if h.metrics != nil {
		h.metrics.RateLimitedTotal.WithLabelValues(action).Inc()
	}
}

func (h *Handlers) countEmail(kind, outcome string) {
	if h.metrics != nil {
		h.metrics.EmailsTotal.WithLabelValues(kind, outcome).Inc()
	}
}
