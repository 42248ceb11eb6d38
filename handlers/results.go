// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/ballot-desk/audit"
	"github.com/danielhkuo/ballot-desk/election"
	"github.com/danielhkuo/ballot-desk/middleware"
	"github.com/danielhkuo/ballot-desk/models"
)

type ResultsHandler struct {
	Services
}

func NewResultsHandler(svc Services) *ResultsHandler {
	return &ResultsHandler{Services: svc}
}

// rankRows numbers tallied rows with standard competition ranking, so tied
// candidates share a rank and the next rank skips (1, 1, 3).
func rankRows(rows []election.CandidateTally) []models.TallyRow {
	out := make([]models.TallyRow, len(rows))
	for i, row := range rows {
		rank := i + 1
		if i > 0 && row.Votes == rows[i-1].Votes {
			rank = out[i-1].Rank
		}
		out[i] = models.TallyRow{Rank: rank, Candidate: row.Candidate, Votes: row.Votes}
	}
	return out
}

func (h *ResultsHandler) results(ctx context.Context, e models.Election) (models.ResultsResponse, error) {
	approved := true
	candidates, err := h.Store.ListCandidates(ctx, models.CandidateFilter{ElectionID: e.ID, Approved: &approved})
	if err != nil {
		return models.ResultsResponse{}, err
	}
	votes, err := h.Store.ListVotes(ctx, e.ID)
	if err != nil {
		return models.ResultsResponse{}, err
	}

	rows := election.Tally(votes, candidates)
	return models.ResultsResponse{
		Election:   e,
		Rankings:   rankRows(rows),
		Winners:    election.Winners(rows),
		TotalVotes: election.Counted(rows),
	}, nil
}

// Public handles GET /elections/{id}/results
func (h *ResultsHandler) Public(w http.ResponseWriter, r *http.Request) {
	e, lc, ok := h.loadElection(w, r)
	if !ok {
		return
	}
	if !lc.ResultsVisible || !e.ResultPublished {
		middleware.ErrorResponse(w, http.StatusForbidden, "Results have not been published yet.")
		return
	}

	res, err := h.results(r.Context(), e)
	if err != nil {
		writeError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, res)
}

// Admin handles GET /admin/elections/{id}/results
// The tally is computed whatever the election's status.
func (h *ResultsHandler) Admin(w http.ResponseWriter, r *http.Request) {
	e, _, ok := h.loadElection(w, r)
	if !ok {
		return
	}
	res, err := h.results(r.Context(), e)
	if err != nil {
		writeError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, res)
}

// Stats handles GET /admin/elections/{id}/stats
func (h *ResultsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	e, _, ok := h.loadElection(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	voters, err := h.Store.ListVoters(ctx, models.VoterFilter{ElectionID: e.ID})
	if err != nil {
		writeError(w, err)
		return
	}
	approvedVoters := 0
	for _, v := range voters {
		if v.Approved {
			approvedVoters++
		}
	}
	candidates, err := h.Store.ListCandidates(ctx, models.CandidateFilter{ElectionID: e.ID})
	if err != nil {
		writeError(w, err)
		return
	}
	votes, err := h.Store.ListVotes(ctx, e.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.StatsResponse{
		ElectionID:     e.ID,
		Voters:         len(voters),
		ApprovedVoters: approvedVoters,
		Candidates:     len(candidates),
		Votes:          len(votes),
		Turnout:        election.Turnout(len(votes), approvedVoters),
	})
}

// Publish handles POST /admin/elections/{id}/publish
func (h *ResultsHandler) Publish(w http.ResponseWriter, r *http.Request) {
	e, lc, ok := h.loadElection(w, r)
	if !ok {
		return
	}
	if !lc.ResultsPublishable {
		msg := "Results can only be published after voting ends."
		if e.ResultPublished {
			msg = "Results are already published."
		}
		middleware.ErrorResponse(w, http.StatusConflict, msg)
		return
	}

	if err := h.Store.SetResultPublished(r.Context(), e.ID, true); err != nil {
		writeError(w, err)
		return
	}
	e.ResultPublished = true

	res, err := h.results(r.Context(), e)
	if err != nil {
		writeError(w, err)
		return
	}

	h.Audit.Record(r.Context(), audit.ActionPublishResult, models.EntityElection, e.ID, map[string]any{
		"total_votes": res.TotalVotes,
		"winners":     res.Winners,
	})
	slog.Info("results published", "election_id", e.ID, "total_votes", res.TotalVotes)

	middleware.JSONResponse(w, http.StatusOK, res)
}
