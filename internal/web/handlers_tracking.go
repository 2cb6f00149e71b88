// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/PourroyJean/babymiam-sub000/internal/tracking"
	"github.com/PourroyJean/babymiam-sub000/pkg/errutil"
)

// defaultAgeMonths drives the texture coach when the age query parameter is
// absent; six months is the usual start of food introduction.
const defaultAgeMonths = 6

// Dashboard renders the progress summary, texture coach, preference ranking,
// and search results over the account's exposures.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	account, ok := accountFrom(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	exposures, err := h.exposures.ListByAccount(r.Context(), account.ID)
	if err != nil {
		errutil.LogError(h.logger, "list exposures failed", err)
		h.render(w, http.StatusInternalServerError, "dashboard", map[string]any{
			"Title":   "Dashboard",
			"Notice":  formMessage(""),
			"Summary": tracking.Summary{},
			"Texture": tracking.TextureAdvice{},
		})
		return
	}

	ageMonths := defaultAgeMonths
	if raw := r.URL.Query().Get("age"); raw != "" {
		if parsed, parseErr := strconv.Atoi(raw); parseErr == nil && parsed > 0 {
			ageMonths = parsed
		}
	}

	query := r.URL.Query().Get("q")

	ranking := tracking.RankPreferences(exposures)
	if len(ranking) > 5 {
		ranking = ranking[:5]
	}

	h.render(w, http.StatusOK, "dashboard", map[string]any{
		"Title":     "Dashboard",
		"Summary":   tracking.Summarize(exposures, time.Now()),
		"Texture":   tracking.TextureTargets(exposures, ageMonths),
		"Ranking":   ranking,
		"Query":     query,
		"Results":   tracking.Search(exposures, query),
		"Exposures": exposures,
	})
}

// NewExposurePage renders the empty exposure form.
func (h *Handlers) NewExposurePage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "exposure_form", map[string]any{
		"Title":        "Add a food",
		"Action":       "/exposures",
		"TriedAtValue": time.Now().Format("2006-01-02"),
	})
}

// CreateExposure records a new food exposure.
func (h *Handlers) CreateExposure(w http.ResponseWriter, r *http.Request) {
	account, ok := accountFrom(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	form, err := parseExposureForm(r)
	if err != nil {
		h.render(w, http.StatusBadRequest, "exposure_form", map[string]any{
			"Title":        "Add a food",
			"Action":       "/exposures",
			"TriedAtValue": time.Now().Format("2006-01-02"),
			"Error":        formMessage(errCode(err)),
		})
		return
	}

	exposure, err := tracking.NewExposure(account.ID, form.FoodName, form.Category,
		form.Texture, form.Reaction, form.Allergen, form.Notes, form.TriedAt)
	if err == nil {
		err = h.exposures.Create(r.Context(), exposure)
	}
	if err != nil {
		errutil.LogError(h.logger, "create exposure failed", err)
		h.render(w, http.StatusInternalServerError, "exposure_form", map[string]any{
			"Title":        "Add a food",
			"Action":       "/exposures",
			"TriedAtValue": time.Now().Format("2006-01-02"),
			"Error":        formMessage(""),
		})
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ownedExposure loads the exposure in the URL and checks it belongs to the
// session account. Someone else's id renders as not found, never forbidden.
func (h *Handlers) ownedExposure(w http.ResponseWriter, r *http.Request) (*tracking.Exposure, bool) {
	account, ok := accountFrom(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return nil, false
	}

	id, err := ulid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.render(w, http.StatusNotFound, "not_found", map[string]any{"Title": "Not found"})
		return nil, false
	}

	exposure, err := h.exposures.GetByID(r.Context(), id)
	if err != nil || exposure.AccountID.Compare(account.ID) != 0 {
		h.render(w, http.StatusNotFound, "not_found", map[string]any{"Title": "Not found"})
		return nil, false
	}
	return exposure, true
}

// EditExposurePage renders the form pre-filled with an existing exposure.
func (h *Handlers) EditExposurePage(w http.ResponseWriter, r *http.Request) {
	exposure, ok := h.ownedExposure(w, r)
	if !ok {
		return
	}
	h.render(w, http.StatusOK, "exposure_form", map[string]any{
		"Title":        "Edit exposure",
		"Action":       "/exposures/" + exposure.ID.String(),
		"Exposure":     exposure,
		"TriedAtValue": exposure.TriedAt.Format("2006-01-02"),
	})
}

// UpdateExposure saves edits to an exposure.
func (h *Handlers) UpdateExposure(w http.ResponseWriter, r *http.Request) {
	exposure, ok := h.ownedExposure(w, r)
	if !ok {
		return
	}

	form, err := parseExposureForm(r)
	if err != nil {
		h.render(w, http.StatusBadRequest, "exposure_form", map[string]any{
			"Title":        "Edit exposure",
			"Action":       "/exposures/" + exposure.ID.String(),
			"Exposure":     exposure,
			"TriedAtValue": exposure.TriedAt.Format("2006-01-02"),
			"Error":        formMessage(errCode(err)),
		})
		return
	}

	exposure.FoodName = form.FoodName
	exposure.Category = form.Category
	exposure.Texture = form.Texture
	exposure.Reaction = form.Reaction
	exposure.Allergen = form.Allergen
	exposure.Notes = form.Notes
	if !form.TriedAt.IsZero() {
		exposure.TriedAt = form.TriedAt
	}

	if err := h.exposures.Update(r.Context(), exposure); err != nil {
		errutil.LogError(h.logger, "update exposure failed", err)
		h.render(w, http.StatusInternalServerError, "exposure_form", map[string]any{
			"Title":        "Edit exposure",
			"Action":       "/exposures/" + exposure.ID.String(),
			"Exposure":     exposure,
			"TriedAtValue": exposure.TriedAt.Format("2006-01-02"),
			"Error":        formMessage(""),
		})
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// DeleteExposure removes an exposure.
func (h *Handlers) DeleteExposure(w http.ResponseWriter, r *http.Request) {
	exposure, ok := h.ownedExposure(w, r)
	if !ok {
		return
	}
	if err := h.exposures.Delete(r.Context(), exposure.ID); err != nil {
		errutil.LogError(h.logger, "delete exposure failed", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
