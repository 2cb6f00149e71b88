// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Router builds the application routes. Everything outside the public set
// sits behind RequireSession.
func (h *Handlers) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(h.RequestLogger)

	// Public routes
	r.Get("/login", h.LoginPage)
	r.Post("/login", h.Login)
	r.Get("/signup", h.SignupPage)
	r.Post("/signup", h.Signup)
	r.Get("/forgot-password", h.ForgotPasswordPage)
	r.Post("/forgot-password", h.ForgotPassword)
	r.Get("/reset-password", h.ResetPasswordPage)
	r.Post("/reset-password", h.ResetPassword)
	r.Get("/verify-email", h.VerifyEmail)
	r.Get("/share", h.SharePage)

	// Private routes
	r.Group(func(r chi.Router) {
		r.Use(h.RequireSession)

		r.Get("/", h.Dashboard)
		r.Post("/logout", h.Logout)

		r.Get("/exposures/new", h.NewExposurePage)
		r.Post("/exposures", h.CreateExposure)
		r.Get("/exposures/{id}", h.EditExposurePage)
		r.Post("/exposures/{id}", h.UpdateExposure)
		r.Post("/exposures/{id}/delete", h.DeleteExposure)

		r.Get("/settings", h.SettingsPage)
		r.Post("/settings/password", h.ChangePassword)
		r.Post("/settings/logout-everywhere", h.LogoutEverywhere)
		r.Post("/settings/share", h.RegenerateShareID)
		r.Post("/settings/resend-verification", h.ResendVerification)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.render(w, http.StatusNotFound, "not_found", map[string]any{"Title": "Not found"})
	})

	return r
}
