// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package web

import (
	"context"
	"net/http"
	"time"

	"github.com/PourroyJean/babymiam-sub000/internal/auth"
)

// SessionCookieName is the browser cookie holding the signed session token.
const SessionCookieName = "bb_session"

type contextKey string

const accountContextKey contextKey = "account"

// accountFrom returns the authenticated account stored by RequireSession.
func accountFrom(ctx context.Context) (*auth.Account, bool) {
	account, ok := ctx.Value(accountContextKey).(*auth.Account)
	return account, ok
}

func withAccount(ctx context.Context, account *auth.Account) context.Context {
	return context.WithValue(ctx, accountContextKey, account)
}

// setSessionCookie installs the session token. Secure is set in production
// only so local development over plain HTTP keeps working.
func (h *Handlers) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL / time.Second),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires the session cookie immediately.
func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
