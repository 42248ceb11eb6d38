// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/ballot-desk/middleware"
)

type AuditHandler struct {
	Services
}

func NewAuditHandler(svc Services) *AuditHandler {
	return &AuditHandler{Services: svc}
}

// List handles GET /admin/audit
// Entries are newest first.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage, err := parsePage(r)
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := h.Store.ListAudit(r.Context(), 0)
	if err != nil {
		writeError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, paginate(entries, page, perPage))
}
