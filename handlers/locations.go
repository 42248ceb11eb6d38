// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/ballot-desk/middleware"
)

// LocationHandler serves the cascading province, district and municipality
// dropdowns.
type LocationHandler struct {
	Services
}

func NewLocationHandler(svc Services) *LocationHandler {
	return &LocationHandler{Services: svc}
}

// Provinces handles GET /locations/provinces
func (h *LocationHandler) Provinces(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, h.Geo.Provinces())
}

// Districts handles GET /locations/provinces/{id}/districts
func (h *LocationHandler) Districts(w http.ResponseWriter, r *http.Request) {
	refs, err := h.Geo.Districts(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, refs)
}

// Municipalities handles GET /locations/districts/{id}/municipalities
func (h *LocationHandler) Municipalities(w http.ResponseWriter, r *http.Request) {
	refs, err := h.Geo.Municipalities(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, refs)
}
