// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/PourroyJean/babymiam-sub000/pkg/errutil"
)

//go:embed templates/*.html
var templatesFS embed.FS

func parseTemplates() *template.Template {
	return template.Must(template.ParseFS(templatesFS, "templates/*.html"))
}

// render writes the named template. A template failure after headers are out
// cannot be recovered, so it is logged and the response left as-is.
func (h *Handlers) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		errutil.LogError(h.logger, "template render failed", err)
	}
}
