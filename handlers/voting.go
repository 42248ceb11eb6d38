// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/danielhkuo/ballot-desk/audit"
	"github.com/danielhkuo/ballot-desk/election"
	"github.com/danielhkuo/ballot-desk/metrics"
	"github.com/danielhkuo/ballot-desk/middleware"
	"github.com/danielhkuo/ballot-desk/models"
)

type VotingHandler struct {
	Services
}

func NewVotingHandler(svc Services) *VotingHandler {
	return &VotingHandler{Services: svc}
}

// Eligibility handles POST /elections/{id}/eligibility
func (h *VotingHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	e, lc, ok := h.loadElection(w, r)
	if !ok {
		return
	}
	if !lc.VotingOpen {
		middleware.ErrorResponse(w, http.StatusForbidden, "Voting is not open for this election.")
		return
	}

	var req models.EligibilityRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	verdict, err := election.CheckEligibility(r.Context(), h.Store, e.ID, req.VoterID, lc.At)
	if err != nil {
		writeError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.EligibilityResponse{
		Eligible: verdict.Eligible,
		Age:      verdict.Age,
		Reason:   verdict.Reason,
	})
}

// CastVote handles POST /elections/{id}/votes
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	e, lc, ok := h.loadElection(w, r)
	if !ok {
		return
	}
	if !lc.VotingOpen {
		h.reject(metrics.RejectClosed)
		middleware.ErrorResponse(w, http.StatusForbidden, "Voting is not open for this election.")
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	candidateID := strings.TrimSpace(req.CandidateID)
	if candidateID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate_id required")
		return
	}

	verdict, err := election.CheckEligibility(r.Context(), h.Store, e.ID, req.VoterID, lc.At)
	if err != nil {
		h.reject(metrics.RejectIneligible)
		writeError(w, err)
		return
	}
	if !verdict.Eligible {
		h.reject(metrics.RejectIneligible)
		middleware.ErrorResponse(w, http.StatusForbidden, "Not eligible to vote: "+verdict.Reason+".")
		return
	}

	c, err := h.Store.GetCandidate(r.Context(), candidateID)
	if errors.Is(err, election.ErrNotFound) || (err == nil && (c.ElectionID != e.ID || !c.Approved)) {
		h.reject(metrics.RejectCandidate)
		middleware.ErrorResponse(w, http.StatusBadRequest, "Select an approved candidate in this election.")
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	vote := models.Vote{
		ID:          uuid.NewString(),
		ElectionID:  e.ID,
		VoterID:     verdict.Voter.VoterID,
		CandidateID: c.ID,
		CreatedAt:   h.now().UTC(),
	}
	if err := h.Store.InsertVote(r.Context(), vote); err != nil {
		if errors.Is(err, election.ErrDuplicateVote) {
			h.reject(metrics.RejectDuplicate)
		}
		writeError(w, err)
		return
	}

	h.Metrics.VotesCast.Inc()
	slog.Info("vote cast", "election_id", e.ID, "vote_id", vote.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		VoteID:  vote.ID,
		Message: "Your vote has been recorded.",
	})
}

func (h *VotingHandler) reject(reason string) {
	h.Metrics.VotesRejected.WithLabelValues(reason).Inc()
}

// List handles GET /admin/elections/{id}/votes
func (h *VotingHandler) List(w http.ResponseWriter, r *http.Request) {
	e, _, ok := h.loadElection(w, r)
	if !ok {
		return
	}
	page, perPage, err := parsePage(r)
	if err != nil {
		writeError(w, err)
		return
	}
	votes, err := h.Store.ListVotes(r.Context(), e.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, paginate(votes, page, perPage))
}

// Delete handles DELETE /admin/votes/{id}
func (h *VotingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	n, err := h.Store.DeleteVotes(r.Context(), []string{id})
	if err != nil {
		writeError(w, err)
		return
	}
	if n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "vote not found")
		return
	}

	h.Audit.Record(r.Context(), audit.ActionDeleteVote, models.EntityVote, id, nil)
	slog.Info("vote deleted", "vote_id", id)

	middleware.JSONResponse(w, http.StatusOK, models.DeleteResponse{Deleted: n})
}
