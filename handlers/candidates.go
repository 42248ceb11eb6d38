// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/danielhkuo/ballot-desk/audit"
	"github.com/danielhkuo/ballot-desk/election"
	"github.com/danielhkuo/ballot-desk/middleware"
	"github.com/danielhkuo/ballot-desk/models"
)

// IndependentParty is recorded when a nomination leaves party blank.
const IndependentParty = "Independent"

type CandidateHandler struct {
	Services
}

func NewCandidateHandler(svc Services) *CandidateHandler {
	return &CandidateHandler{Services: svc}
}

// Nominate handles POST /elections/{id}/candidates
func (h *CandidateHandler) Nominate(w http.ResponseWriter, r *http.Request) {
	e, lc, ok := h.loadElection(w, r)
	if !ok {
		return
	}
	if !lc.NominationOpen {
		middleware.ErrorResponse(w, http.StatusForbidden, "Nominations are closed for this election.")
		return
	}

	var req models.NominateCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name required")
		return
	}
	party := strings.TrimSpace(req.Party)
	if party == "" {
		party = IndependentParty
	}
	if dob := strings.TrimSpace(req.Profile.DOB); dob != "" {
		t, ok := election.ParseTimestamp(dob)
		if !ok {
			writeError(w, election.Errorf(election.InvalidInput, "profile dob is not a valid date: %q", dob))
			return
		}
		req.Profile.DOB = t.Format("2006-01-02")
	}

	loc, err := h.Geo.Resolve(req.Location)
	if err != nil {
		writeError(w, err)
		return
	}

	c := models.Candidate{
		ID:         uuid.NewString(),
		ElectionID: e.ID,
		Name:       name,
		Party:      party,
		Symbol:     strings.TrimSpace(req.Symbol),
		Location:   loc,
		Profile:    req.Profile,
		CreatedAt:  h.now().UTC(),
	}
	if err := h.Store.InsertCandidate(r.Context(), c); err != nil {
		writeError(w, err)
		return
	}
	slog.Info("candidate nominated", "election_id", e.ID, "candidate_id", c.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.NominateCandidateResponse{
		CandidateID: c.ID,
		Message:     "Nomination submitted for review.",
	})
}

// ListApproved handles GET /elections/{id}/candidates
func (h *CandidateHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	e, _, ok := h.loadElection(w, r)
	if !ok {
		return
	}
	approved := true
	candidates, err := h.Store.ListCandidates(r.Context(), models.CandidateFilter{ElectionID: e.ID, Approved: &approved})
	if err != nil {
		writeError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, candidates)
}

// List handles GET /admin/elections/{id}/candidates
func (h *CandidateHandler) List(w http.ResponseWriter, r *http.Request) {
	e, _, ok := h.loadElection(w, r)
	if !ok {
		return
	}
	page, perPage, err := parsePage(r)
	if err != nil {
		writeError(w, err)
		return
	}
	approved, err := parseApproved(r)
	if err != nil {
		writeError(w, err)
		return
	}

	candidates, err := h.Store.ListCandidates(r.Context(), models.CandidateFilter{ElectionID: e.ID, Approved: approved})
	if err != nil {
		writeError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, paginate(candidates, page, perPage))
}

// Approve handles POST /admin/candidates/{id}/approve
func (h *CandidateHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.setApproved(w, r, true)
}

// Unapprove handles POST /admin/candidates/{id}/unapprove
func (h *CandidateHandler) Unapprove(w http.ResponseWriter, r *http.Request) {
	h.setApproved(w, r, false)
}

func (h *CandidateHandler) setApproved(w http.ResponseWriter, r *http.Request, approved bool) {
	id := r.PathValue("id")
	if err := h.Store.SetCandidateApproved(r.Context(), id, approved); err != nil {
		writeError(w, err)
		return
	}
	c, err := h.Store.GetCandidate(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	action := audit.ActionApproveCandidate
	if !approved {
		action = audit.ActionUnapproveCandidate
	}
	h.Audit.Record(r.Context(), action, models.EntityCandidate, c.ID, map[string]any{
		"election_id": c.ElectionID,
		"name":        c.Name,
	})

	middleware.JSONResponse(w, http.StatusOK, c)
}

// Delete handles DELETE /admin/candidates/{id}
func (h *CandidateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.deleteCandidates(w, r, []string{r.PathValue("id")})
}

// BulkDelete handles POST /admin/candidates/delete
func (h *CandidateHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req models.BulkDeleteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	h.deleteCandidates(w, r, req.IDs)
}

func (h *CandidateHandler) deleteCandidates(w http.ResponseWriter, r *http.Request, ids []string) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "ids required")
		return
	}
	n, err := h.Store.DeleteCandidates(r.Context(), ids)
	if err != nil {
		writeError(w, err)
		return
	}
	if n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "candidate not found")
		return
	}

	for _, id := range ids {
		h.Audit.Record(r.Context(), audit.ActionDeleteCandidate, models.EntityCandidate, id, nil)
	}
	slog.Info("candidates deleted", "requested", len(ids), "deleted", n)

	middleware.JSONResponse(w, http.StatusOK, models.DeleteResponse{Deleted: n})
}
