// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/danielhkuo/ballot-desk/audit"
	"github.com/danielhkuo/ballot-desk/election"
	"github.com/danielhkuo/ballot-desk/middleware"
	"github.com/danielhkuo/ballot-desk/models"
)

type ElectionHandler struct {
	Services
}

func NewElectionHandler(svc Services) *ElectionHandler {
	return &ElectionHandler{Services: svc}
}

// summarize attaches the lifecycle and relative start/end times.
func summarize(e models.Election, lc election.Lifecycle, now time.Time) models.ElectionSummary {
	s := models.ElectionSummary{Election: e, Lifecycle: lc.View()}
	// Stored timestamps are the authoritative status source; the label may lag.
	s.Election.Status = lc.Status.String()
	if start, ok := election.ParseTimestamp(e.StartDate); ok {
		s.StartsIn = humanize.RelTime(start, now, "ago", "from now")
	}
	if end, ok := election.ParseTimestamp(e.VotingEnd); ok {
		s.EndsIn = humanize.RelTime(end, now, "ago", "from now")
	}
	return s
}

// ListElections handles GET /elections
func (h *ElectionHandler) ListElections(w http.ResponseWriter, r *http.Request) {
	elections, err := h.Store.ListElections(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	now := h.now()
	summaries := make([]models.ElectionSummary, 0, len(elections))
	for _, e := range elections {
		lc, err := election.DeriveStatus(e, now)
		if err != nil {
			slog.Warn("skipping election with invalid schedule", "election_id", e.ID, "error", err)
			continue
		}
		summaries = append(summaries, summarize(e, lc, now))
	}

	middleware.JSONResponse(w, http.StatusOK, summaries)
}

// GetElection handles GET /elections/{id}
func (h *ElectionHandler) GetElection(w http.ResponseWriter, r *http.Request) {
	e, lc, ok := h.loadElection(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, summarize(e, lc, lc.At))
}

// CreateElection handles POST /admin/elections
func (h *ElectionHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	e, err := election.ValidateNewElection(req.Name, req.StartDate, req.NominationEnd, req.VotingEnd)
	if err != nil {
		writeError(w, err)
		return
	}
	e.ID = uuid.NewString()
	e.CreatedAt = h.now().UTC()

	lc, err := election.DeriveStatus(e, e.CreatedAt)
	if err != nil {
		writeError(w, err)
		return
	}
	e.Status = lc.Status.String()

	if err := h.Store.InsertElection(r.Context(), e); err != nil {
		writeError(w, err)
		return
	}

	h.Audit.Record(r.Context(), audit.ActionCreateElection, models.EntityElection, e.ID, map[string]any{
		"name":           e.Name,
		"start_date":     e.StartDate,
		"nomination_end": e.NominationEnd,
		"voting_end":     e.VotingEnd,
	})
	slog.Info("election created", "election_id", e.ID, "name", e.Name)

	middleware.JSONResponse(w, http.StatusCreated, summarize(e, lc, e.CreatedAt))
}

// DeleteElection handles DELETE /admin/elections/{id}
// Removes the election with all of its voters, candidates and votes. Only
// elections whose voting has not started can be deleted.
func (h *ElectionHandler) DeleteElection(w http.ResponseWriter, r *http.Request) {
	e, lc, ok := h.loadElection(w, r)
	if !ok {
		return
	}
	if !lc.ScheduleEditable {
		middleware.ErrorResponse(w, http.StatusConflict, "Only elections that have not started can be deleted.")
		return
	}

	if err := h.Store.DeleteElection(r.Context(), e.ID); err != nil {
		writeError(w, err)
		return
	}

	h.Audit.Record(r.Context(), audit.ActionDeleteElection, models.EntityElection, e.ID, map[string]any{
		"name":   e.Name,
		"status": lc.Status.String(),
	})
	slog.Info("election deleted", "election_id", e.ID)

	middleware.JSONResponse(w, http.StatusOK, models.DeleteResponse{Deleted: 1})
}
