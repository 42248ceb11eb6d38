// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/danielhkuo/ballot-desk/audit"
	"github.com/danielhkuo/ballot-desk/election"
	"github.com/danielhkuo/ballot-desk/models"
	tu "github.com/danielhkuo/ballot-desk/testutil"
)

func registration() models.RegisterVoterRequest {
	return models.RegisterVoterRequest{
		FullName:      "  Sita Sharma ",
		DOB:           "1995-04-12",
		CitizenshipNo: "12-34-567",
		IssueDate:     "2013-08-01",
		Location:      tu.Selection(),
	}
}

func TestRegisterVoter(t *testing.T) {
	svc, st, _ := newTestServices(t)
	h := NewVoterHandler(svc)
	e := tu.CreateTestElection(t, st, tu.Nominating)

	req := tu.MakeRequest(http.MethodPost, "/elections/"+e.ID+"/voters", registration(), nil)
	w := serve(h.Register, req, e.ID)
	tu.AssertStatus(t, w, http.StatusCreated)

	var resp models.RegisterVoterResponse
	tu.AssertJSON(t, w, &resp)
	if err := election.ValidateVoterID(resp.VoterID); err != nil {
		t.Errorf("voter id %q: %v", resp.VoterID, err)
	}

	v, err := st.GetVoter(context.Background(), resp.ID)
	if err != nil {
		t.Fatal(err)
	}
	if v.Approved {
		t.Error("new registrations should be pending")
	}
	if v.FullName != "Sita Sharma" {
		t.Errorf("full name = %q", v.FullName)
	}
	want := models.Location{Province: "Koshi", District: "Jhapa", Municipality: "Mechinagar", LocalArea: "Ward 4"}
	if v.Location != want {
		t.Errorf("location = %+v, want %+v", v.Location, want)
	}
	if got := testutil.ToFloat64(svc.Metrics.VoterRegistrations); got != 1 {
		t.Errorf("registrations metric = %v", got)
	}
}

func TestRegisterVoterValidation(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*models.RegisterVoterRequest)
		wantStatus int
	}{
		{"missing name", func(r *models.RegisterVoterRequest) { r.FullName = " " }, http.StatusBadRequest},
		{"bad dob", func(r *models.RegisterVoterRequest) { r.DOB = "12/04/1995" }, http.StatusBadRequest},
		{"issued before birth", func(r *models.RegisterVoterRequest) { r.IssueDate = "1990-01-01" }, http.StatusBadRequest},
		{"unknown province", func(r *models.RegisterVoterRequest) { r.Location.ProvinceID = "99" }, http.StatusBadRequest},
		{"district of another province", func(r *models.RegisterVoterRequest) { r.Location.DistrictID = tu.OtherDistrict }, http.StatusBadRequest},
		{"missing municipality", func(r *models.RegisterVoterRequest) { r.Location.MunicipalityID = "" }, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, st, _ := newTestServices(t)
			h := NewVoterHandler(svc)
			e := tu.CreateTestElection(t, st, tu.Nominating)

			body := registration()
			tt.mutate(&body)
			w := serve(h.Register, tu.MakeRequest(http.MethodPost, "/", body, nil), e.ID)
			tu.AssertStatus(t, w, tt.wantStatus)

			voters, _ := st.ListVoters(context.Background(), models.VoterFilter{ElectionID: e.ID})
			if len(voters) != 0 {
				t.Errorf("rejected registration was stored")
			}
		})
	}
}

func TestRegisterVoterWindow(t *testing.T) {
	tests := []struct {
		phase      tu.Phase
		wantStatus int
	}{
		{tu.Nominating, http.StatusCreated},
		{tu.Upcoming, http.StatusCreated},
		{tu.Voting, http.StatusCreated},
		{tu.Ended, http.StatusForbidden},
	}
	for _, tt := range tests {
		svc, st, _ := newTestServices(t)
		h := NewVoterHandler(svc)
		e := tu.CreateTestElection(t, st, tt.phase)

		w := serve(h.Register, tu.MakeRequest(http.MethodPost, "/", registration(), nil), e.ID)
		tu.AssertStatus(t, w, tt.wantStatus)
	}
}

func TestRegisterVoterRetriesOnCollision(t *testing.T) {
	svc, st, _ := newTestServices(t)
	e := tu.CreateTestElection(t, st, tu.Nominating)
	tu.CreateTestVoter(t, st, e.ID, "1111111111", false)

	ids := []string{"1111111111", "1111111111", "2222222222"}
	svc.VoterIDs = func() (string, error) {
		id := ids[0]
		ids = ids[1:]
		return id, nil
	}
	h := NewVoterHandler(svc)

	w := serve(h.Register, tu.MakeRequest(http.MethodPost, "/", registration(), nil), e.ID)
	tu.AssertStatus(t, w, http.StatusCreated)

	var resp models.RegisterVoterResponse
	tu.AssertJSON(t, w, &resp)
	if resp.VoterID != "2222222222" {
		t.Errorf("voter id = %q, want the first free id", resp.VoterID)
	}
	if got := testutil.ToFloat64(svc.Metrics.VoterIDCollisions); got != 2 {
		t.Errorf("collisions metric = %v, want 2", got)
	}
}

func TestRegisterVoterCollisionExhausted(t *testing.T) {
	svc, st, _ := newTestServices(t)
	e := tu.CreateTestElection(t, st, tu.Nominating)
	tu.CreateTestVoter(t, st, e.ID, "1111111111", false)

	calls := 0
	svc.VoterIDs = func() (string, error) {
		calls++
		return "1111111111", nil
	}
	svc.Config.VoterIDAttempts = 3
	h := NewVoterHandler(svc)

	w := serve(h.Register, tu.MakeRequest(http.MethodPost, "/", registration(), nil), e.ID)
	tu.AssertStatus(t, w, http.StatusInternalServerError)
	if calls != 3 {
		t.Errorf("generator called %d times, want 3", calls)
	}
}

func TestRegisterVoterSameIDInOtherElection(t *testing.T) {
	svc, st, _ := newTestServices(t)
	other := tu.CreateTestElection(t, st, tu.Nominating)
	tu.CreateTestVoter(t, st, other.ID, "1111111111", false)
	e := tu.CreateTestElection(t, st, tu.Nominating)

	svc.VoterIDs = func() (string, error) { return "1111111111", nil }
	h := NewVoterHandler(svc)

	w := serve(h.Register, tu.MakeRequest(http.MethodPost, "/", registration(), nil), e.ID)
	tu.AssertStatus(t, w, http.StatusCreated)
}

func TestListVoters(t *testing.T) {
	svc, st, _ := newTestServices(t)
	h := NewVoterHandler(svc)
	e := tu.CreateTestElection(t, st, tu.Voting)
	for i, id := range []string{"1000000001", "1000000002", "1000000003", "1000000004", "1000000005"} {
		tu.CreateTestVoter(t, st, e.ID, id, i%2 == 0)
	}

	w := serve(h.List, httptest.NewRequest(http.MethodGet, "/?per_page=2&page=2", nil), e.ID)
	tu.AssertStatus(t, w, http.StatusOK)
	var page models.Page[models.Voter]
	tu.AssertJSON(t, w, &page)
	if page.Total != 5 || page.TotalPages != 3 || len(page.Items) != 2 {
		t.Errorf("page = total %d pages %d items %d", page.Total, page.TotalPages, len(page.Items))
	}

	w = serve(h.List, httptest.NewRequest(http.MethodGet, "/?approved=false", nil), e.ID)
	tu.AssertStatus(t, w, http.StatusOK)
	page = models.Page[models.Voter]{}
	tu.AssertJSON(t, w, &page)
	if page.Total != 2 {
		t.Errorf("pending voters = %d, want 2", page.Total)
	}
	for _, v := range page.Items {
		if v.Approved {
			t.Errorf("approved voter %s in pending list", v.VoterID)
		}
	}

	w = serve(h.List, httptest.NewRequest(http.MethodGet, "/?approved=perhaps", nil), e.ID)
	tu.AssertStatus(t, w, http.StatusBadRequest)
}

func TestApproveVoter(t *testing.T) {
	svc, st, rec := newTestServices(t)
	h := NewVoterHandler(svc)
	e := tu.CreateTestElection(t, st, tu.Voting)
	v := tu.CreateTestVoter(t, st, e.ID, "1000000001", false)

	w := serve(h.Approve, httptest.NewRequest(http.MethodPost, "/", nil), v.ID)
	tu.AssertStatus(t, w, http.StatusOK)
	var got models.Voter
	tu.AssertJSON(t, w, &got)
	if !got.Approved {
		t.Error("voter should be approved")
	}

	w = serve(h.Unapprove, httptest.NewRequest(http.MethodPost, "/", nil), v.ID)
	tu.AssertStatus(t, w, http.StatusOK)
	stored, _ := st.GetVoter(context.Background(), v.ID)
	if stored.Approved {
		t.Error("voter should be unapproved")
	}

	w = serve(h.Approve, httptest.NewRequest(http.MethodPost, "/", nil), "missing")
	tu.AssertStatus(t, w, http.StatusNotFound)

	acts := rec.actions()
	if len(acts) != 2 || acts[0] != audit.ActionApproveVoter || acts[1] != audit.ActionUnapproveVoter {
		t.Errorf("audit = %v", acts)
	}
}

func TestDeleteVoters(t *testing.T) {
	svc, st, rec := newTestServices(t)
	h := NewVoterHandler(svc)
	e := tu.CreateTestElection(t, st, tu.Voting)
	a := tu.CreateTestVoter(t, st, e.ID, "1000000001", true)
	b := tu.CreateTestVoter(t, st, e.ID, "1000000002", true)
	c := tu.CreateTestVoter(t, st, e.ID, "1000000003", true)

	w := serve(h.Delete, httptest.NewRequest(http.MethodDelete, "/", nil), a.ID)
	tu.AssertStatus(t, w, http.StatusOK)

	body := models.BulkDeleteRequest{IDs: []string{b.ID, c.ID, b.ID, "missing"}}
	w = serve(h.BulkDelete, tu.MakeRequest(http.MethodPost, "/", body, nil), "")
	tu.AssertStatus(t, w, http.StatusOK)
	var resp models.DeleteResponse
	tu.AssertJSON(t, w, &resp)
	if resp.Deleted != 2 {
		t.Errorf("deleted = %d, want 2", resp.Deleted)
	}

	if _, err := st.GetVoter(context.Background(), c.ID); !errors.Is(err, election.ErrNotFound) {
		t.Errorf("voter should be gone, got %v", err)
	}

	w = serve(h.BulkDelete, tu.MakeRequest(http.MethodPost, "/", models.BulkDeleteRequest{}, nil), "")
	tu.AssertStatus(t, w, http.StatusBadRequest)

	w = serve(h.Delete, httptest.NewRequest(http.MethodDelete, "/", nil), a.ID)
	tu.AssertStatus(t, w, http.StatusNotFound)

	if n := len(rec.actions()); n != 4 {
		t.Errorf("expected 4 audit entries (one per requested id), got %d", n)
	}
}
