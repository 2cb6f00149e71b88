// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package web

import (
	"net/http"
	"time"

	"github.com/PourroyJean/babymiam-sub000/internal/auth"
	"github.com/PourroyJean/babymiam-sub000/internal/tracking"
	"github.com/PourroyJean/babymiam-sub000/pkg/errutil"
)

// SharePage renders the read-only progress summary behind a share id. A
// malformed sid is treated exactly like an unknown one, and the page carries
// no account identity.
func (h *Handlers) SharePage(w http.ResponseWriter, r *http.Request) {
	sid := r.URL.Query().Get("sid")
	if !auth.ValidShareID(sid) {
		h.render(w, http.StatusNotFound, "not_found", map[string]any{"Title": "Not found"})
		return
	}

	account, err := h.accountRepo.GetByShareID(r.Context(), sid)
	if err != nil {
		h.render(w, http.StatusNotFound, "not_found", map[string]any{"Title": "Not found"})
		return
	}

	exposures, err := h.exposures.ListByAccount(r.Context(), account.ID)
	if err != nil {
		errutil.LogError(h.logger, "list exposures for share failed", err)
		h.render(w, http.StatusNotFound, "not_found", map[string]any{"Title": "Not found"})
		return
	}

	ranking := tracking.RankPreferences(exposures)
	if len(ranking) > 5 {
		ranking = ranking[:5]
	}

	h.render(w, http.StatusOK, "share", map[string]any{
		"Title":   "Shared progress",
		"Summary": tracking.Summarize(exposures, time.Now()),
		"Ranking": ranking,
	})
}
