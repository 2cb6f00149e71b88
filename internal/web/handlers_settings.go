// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package web

import (
	"net/http"
	"net/url"

	"github.com/PourroyJean/babymiam-sub000/internal/auth"
	"github.com/PourroyJean/babymiam-sub000/pkg/errutil"
)

// settingsData assembles the settings page model for the session account.
func (h *Handlers) settingsData(account *auth.Account) map[string]any {
	data := map[string]any{
		"Title":         "Settings",
		"EmailVerified": account.EmailVerifiedAt != nil,
	}
	if account.ShareID != nil {
		data["ShareURL"] = h.absoluteURL("/share?sid=" + url.QueryEscape(*account.ShareID))
	}
	return data
}

// SettingsPage renders password, session, and share-link management.
func (h *Handlers) SettingsPage(w http.ResponseWriter, r *http.Request) {
	account, ok := accountFrom(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	data := h.settingsData(account)
	switch r.URL.Query().Get("done") {
	case "password":
		data["Notice"] = "Password changed. Other sessions are signed out."
	case "share":
		data["Notice"] = "Share link updated. The old link no longer works."
	case "verification":
		data["Notice"] = "Verification email sent."
	}
	h.render(w, http.StatusOK, "settings", data)
}

// ChangePassword verifies the current password, installs the new one, and
// refreshes this browser's session. Every other session dies with the
// version bump.
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	account, ok := accountFrom(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		data := h.settingsData(account)
		data["Error"] = formMessage("FORM_PARSE_FAILED")
		h.render(w, http.StatusBadRequest, "settings", data)
		return
	}

	current := r.PostFormValue("current_password")
	next := r.PostFormValue("new_password")

	token, err := h.accounts.ChangePassword(r.Context(), account.ID, current, next)
	if err != nil {
		code := errCode(err)
		if code != "PASSWORD_TOO_SHORT" {
			code = "AUTH_INVALID_CREDENTIALS"
		}
		data := h.settingsData(account)
		data["Error"] = formMessage(code)
		h.render(w, http.StatusBadRequest, "settings", data)
		return
	}

	h.setSessionCookie(w, token)
	http.Redirect(w, r, "/settings?done=password", http.StatusSeeOther)
}

// LogoutEverywhere bumps the session version, invalidating every issued
// session token including this one.
func (h *Handlers) LogoutEverywhere(w http.ResponseWriter, r *http.Request) {
	account, ok := accountFrom(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := h.accounts.LogoutEverywhere(r.Context(), account.ID); err != nil {
		errutil.LogError(h.logger, "logout everywhere failed", err)
	}
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// RegenerateShareID mints a fresh share id. The previous link stops working
// immediately.
func (h *Handlers) RegenerateShareID(w http.ResponseWriter, r *http.Request) {
	account, ok := accountFrom(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	sid, err := auth.GenerateShareID()
	if err == nil {
		err = h.accountRepo.SetShareID(r.Context(), account.ID, &sid)
	}
	if err != nil {
		errutil.LogError(h.logger, "regenerate share id failed", err)
		data := h.settingsData(account)
		data["Error"] = formMessage("")
		h.render(w, http.StatusInternalServerError, "settings", data)
		return
	}

	http.Redirect(w, r, "/settings?done=share", http.StatusSeeOther)
}

// ResendVerification issues a fresh verification token and emails the link.
func (h *Handlers) ResendVerification(w http.ResponseWriter, r *http.Request) {
	account, ok := accountFrom(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if account.EmailVerifiedAt == nil {
		h.sendVerification(r, account)
	}
	http.Redirect(w, r, "/settings?done=verification", http.StatusSeeOther)
}
