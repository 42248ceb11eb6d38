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
	"github.com/danielhkuo/ballot-desk/middleware"
	"github.com/danielhkuo/ballot-desk/models"
	"github.com/danielhkuo/ballot-desk/store"
)

type VoterHandler struct {
	Services
}

func NewVoterHandler(svc Services) *VoterHandler {
	return &VoterHandler{Services: svc}
}

// validateRegistration checks the identity fields and normalizes the dates.
func validateRegistration(req *models.RegisterVoterRequest) error {
	req.FullName = strings.TrimSpace(req.FullName)
	req.CitizenshipNo = strings.TrimSpace(req.CitizenshipNo)

	var missing []string
	for _, f := range []struct{ field, value string }{
		{"full_name", req.FullName},
		{"dob", req.DOB},
		{"citizenship_no", req.CitizenshipNo},
		{"issue_date", req.IssueDate},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.field)
		}
	}
	if len(missing) > 0 {
		return election.Errorf(election.InvalidInput, "%s required", strings.Join(missing, ", "))
	}

	dob, ok := election.ParseTimestamp(req.DOB)
	if !ok {
		return election.Errorf(election.InvalidInput, "dob is not a valid date: %q", req.DOB)
	}
	issued, ok := election.ParseTimestamp(req.IssueDate)
	if !ok {
		return election.Errorf(election.InvalidInput, "issue_date is not a valid date: %q", req.IssueDate)
	}
	if issued.Before(dob) {
		return election.Errorf(election.InvalidInput, "issue_date cannot be before dob")
	}
	req.DOB = dob.Format("2006-01-02")
	req.IssueDate = issued.Format("2006-01-02")
	return nil
}

// Register handles POST /elections/{id}/voters
// The voter id is only returned here, so the response must reach the voter.
func (h *VoterHandler) Register(w http.ResponseWriter, r *http.Request) {
	e, lc, ok := h.loadElection(w, r)
	if !ok {
		return
	}
	if !lc.RegistrationOpen {
		middleware.ErrorResponse(w, http.StatusForbidden, "Voter registration is closed for this election.")
		return
	}

	var req models.RegisterVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := validateRegistration(&req); err != nil {
		writeError(w, err)
		return
	}
	loc, err := h.Geo.Resolve(req.Location)
	if err != nil {
		writeError(w, err)
		return
	}

	v := models.Voter{
		ID:            uuid.NewString(),
		ElectionID:    e.ID,
		FullName:      req.FullName,
		DOB:           req.DOB,
		CitizenshipNo: req.CitizenshipNo,
		IssueDate:     req.IssueDate,
		Location:      loc,
		CreatedAt:     h.now().UTC(),
	}

	// Retry on the (election_id, voter_id) unique constraint only.
	attempts := h.voterIDAttempts()
	for i := 0; ; i++ {
		if i == attempts {
			slog.Error("voter id space exhausted", "election_id", e.ID, "attempts", attempts)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Could not allocate a voter id, please try again.")
			return
		}
		v.VoterID, err = h.newVoterID()
		if err != nil {
			slog.Error("failed to generate voter id", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register voter")
			return
		}
		err = h.Store.InsertVoter(r.Context(), v)
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrDuplicate) {
			writeError(w, err)
			return
		}
		h.Metrics.VoterIDCollisions.Inc()
		slog.Warn("voter id collision", "election_id", e.ID, "attempt", i+1)
	}

	h.Metrics.VoterRegistrations.Inc()
	slog.Info("voter registered", "election_id", e.ID, "id", v.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterVoterResponse{
		ID:      v.ID,
		VoterID: v.VoterID,
		Message: "Registration submitted. Keep your voter ID; you will need it to vote once approved.",
	})
}

// List handles GET /admin/elections/{id}/voters
func (h *VoterHandler) List(w http.ResponseWriter, r *http.Request) {
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

	voters, err := h.Store.ListVoters(r.Context(), models.VoterFilter{ElectionID: e.ID, Approved: approved})
	if err != nil {
		writeError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, paginate(voters, page, perPage))
}

// Approve handles POST /admin/voters/{id}/approve
func (h *VoterHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.setApproved(w, r, true)
}

// Unapprove handles POST /admin/voters/{id}/unapprove
func (h *VoterHandler) Unapprove(w http.ResponseWriter, r *http.Request) {
	h.setApproved(w, r, false)
}

func (h *VoterHandler) setApproved(w http.ResponseWriter, r *http.Request, approved bool) {
	id := r.PathValue("id")
	if err := h.Store.SetVoterApproved(r.Context(), id, approved); err != nil {
		writeError(w, err)
		return
	}
	v, err := h.Store.GetVoter(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	action := audit.ActionApproveVoter
	if !approved {
		action = audit.ActionUnapproveVoter
	}
	h.Audit.Record(r.Context(), action, models.EntityVoter, v.ID, map[string]any{
		"election_id": v.ElectionID,
		"voter_id":    v.VoterID,
	})

	middleware.JSONResponse(w, http.StatusOK, v)
}

// Delete handles DELETE /admin/voters/{id}
func (h *VoterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.deleteVoters(w, r, []string{r.PathValue("id")})
}

// BulkDelete handles POST /admin/voters/delete
func (h *VoterHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req models.BulkDeleteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	h.deleteVoters(w, r, req.IDs)
}

func (h *VoterHandler) deleteVoters(w http.ResponseWriter, r *http.Request, ids []string) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "ids required")
		return
	}
	n, err := h.Store.DeleteVoters(r.Context(), ids)
	if err != nil {
		writeError(w, err)
		return
	}
	if n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "voter not found")
		return
	}

	for _, id := range ids {
		h.Audit.Record(r.Context(), audit.ActionDeleteVoter, models.EntityVoter, id, nil)
	}
	slog.Info("voters deleted", "requested", len(ids), "deleted", n)

	middleware.JSONResponse(w, http.StatusOK, models.DeleteResponse{Deleted: n})
}
