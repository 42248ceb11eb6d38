// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/ballot-desk/audit"
	"github.com/danielhkuo/ballot-desk/election"
	"github.com/danielhkuo/ballot-desk/models"
	"github.com/danielhkuo/ballot-desk/testutil"
)

func TestCreateElection(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{
			name: "valid election",
			body: models.CreateElectionRequest{
				Name:          "Ward Chair",
				StartDate:     "2025-07-01T06:00:00Z",
				NominationEnd: "2025-06-25",
				VotingEnd:     "2025-07-01T18:00:00Z",
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing fields",
			body:       models.CreateElectionRequest{Name: "No dates"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unparseable date",
			body: models.CreateElectionRequest{
				Name:          "Bad",
				StartDate:     "next tuesday",
				NominationEnd: "2025-06-25",
				VotingEnd:     "2025-07-01",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "nomination after start",
			body: models.CreateElectionRequest{
				Name:          "Late nominations",
				StartDate:     "2025-07-01",
				NominationEnd: "2025-07-02",
				VotingEnd:     "2025-07-03",
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "invalid JSON",
			body:       "not an object",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, st, rec := newTestServices(t)
			h := NewElectionHandler(svc)

			req := testutil.MakeRequest(http.MethodPost, "/admin/elections", tt.body, nil)
			w := serve(h.CreateElection, req, "")
			testutil.AssertStatus(t, w, tt.wantStatus)

			if tt.wantStatus != http.StatusCreated {
				if len(rec.actions()) != 0 {
					t.Errorf("failed create should not be audited, got %v", rec.actions())
				}
				return
			}

			var resp models.ElectionSummary
			testutil.AssertJSON(t, w, &resp)
			if resp.Election.ID == "" {
				t.Error("expected an election id")
			}
			if resp.Election.Status != models.StatusUpcoming || !resp.Lifecycle.NominationOpen {
				t.Errorf("unexpected lifecycle %+v", resp.Lifecycle)
			}
			if resp.Election.NominationEnd != "2025-06-25T00:00:00Z" {
				t.Errorf("nomination_end should be normalized, got %q", resp.Election.NominationEnd)
			}

			if _, err := st.GetElection(context.Background(), resp.Election.ID); err != nil {
				t.Errorf("election not stored: %v", err)
			}
			if acts := rec.actions(); len(acts) != 1 || acts[0] != audit.ActionCreateElection {
				t.Errorf("audit = %v", acts)
			}
		})
	}
}

func TestListElections(t *testing.T) {
	svc, st, _ := newTestServices(t)
	h := NewElectionHandler(svc)

	voting := testutil.CreateTestElection(t, st, testutil.Voting)
	testutil.CreateTestElection(t, st, testutil.Ended)

	broken := voting
	broken.ID = "broken"
	broken.VotingEnd = "whenever"
	if err := st.InsertElection(context.Background(), broken); err != nil {
		t.Fatal(err)
	}

	w := serve(h.ListElections, httptest.NewRequest(http.MethodGet, "/elections", nil), "")
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp []models.ElectionSummary
	testutil.AssertJSON(t, w, &resp)
	if len(resp) != 2 {
		t.Fatalf("expected 2 elections (invalid one skipped), got %d", len(resp))
	}
	for _, s := range resp {
		if s.Election.ID == voting.ID {
			if !s.Lifecycle.VotingOpen {
				t.Error("voting election should report voting_open")
			}
			if !strings.HasSuffix(s.EndsIn, "from now") || !strings.HasSuffix(s.StartsIn, "ago") {
				t.Errorf("relative times = %q / %q", s.StartsIn, s.EndsIn)
			}
		}
	}
}

func TestGetElection(t *testing.T) {
	svc, st, _ := newTestServices(t)
	h := NewElectionHandler(svc)
	e := testutil.CreateTestElection(t, st, testutil.Ended)

	w := serve(h.GetElection, httptest.NewRequest(http.MethodGet, "/elections/"+e.ID, nil), e.ID)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.ElectionSummary
	testutil.AssertJSON(t, w, &resp)
	if !resp.Lifecycle.ResultsPublishable || resp.Lifecycle.VotingOpen {
		t.Errorf("ended election lifecycle = %+v", resp.Lifecycle)
	}

	w = serve(h.GetElection, httptest.NewRequest(http.MethodGet, "/elections/missing", nil), "missing")
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestGetElectionUsesTimestampsOverStoredStatus(t *testing.T) {
	svc, st, _ := newTestServices(t)
	h := NewElectionHandler(svc)

	e := testutil.CreateTestElection(t, st, testutil.Voting)
	if err := st.SetElectionStatus(context.Background(), e.ID, models.StatusUpcoming); err != nil {
		t.Fatal(err)
	}

	w := serve(h.GetElection, httptest.NewRequest(http.MethodGet, "/elections/"+e.ID, nil), e.ID)
	var resp models.ElectionSummary
	testutil.AssertJSON(t, w, &resp)
	if resp.Election.Status != models.StatusActive {
		t.Errorf("status = %q, want active", resp.Election.Status)
	}
}

func TestDeleteElection(t *testing.T) {
	svc, st, rec := newTestServices(t)
	h := NewElectionHandler(svc)

	e := testutil.CreateTestElection(t, st, testutil.Upcoming)
	v := testutil.CreateTestVoter(t, st, e.ID, "1000000001", true)
	c := testutil.CreateTestCandidate(t, st, e.ID, "Asha", true)
	testutil.CastTestVote(t, st, e.ID, v.VoterID, c.ID)

	w := serve(h.DeleteElection, httptest.NewRequest(http.MethodDelete, "/admin/elections/"+e.ID, nil), e.ID)
	testutil.AssertStatus(t, w, http.StatusOK)

	ctx := context.Background()
	if _, err := st.GetElection(ctx, e.ID); !errors.Is(err, election.ErrNotFound) {
		t.Errorf("election should be gone, got %v", err)
	}
	if _, err := st.GetVoter(ctx, v.ID); !errors.Is(err, election.ErrNotFound) {
		t.Errorf("voter should be gone, got %v", err)
	}
	votes, _ := st.ListVotes(ctx, e.ID)
	if len(votes) != 0 {
		t.Errorf("votes should be gone, got %d", len(votes))
	}
	if acts := rec.actions(); len(acts) != 1 || acts[0] != audit.ActionDeleteElection {
		t.Errorf("audit = %v", acts)
	}
}

func TestDeleteElectionAfterStart(t *testing.T) {
	for _, phase := range []testutil.Phase{testutil.Voting, testutil.Ended} {
		svc, st, rec := newTestServices(t)
		h := NewElectionHandler(svc)
		e := testutil.CreateTestElection(t, st, phase)

		w := serve(h.DeleteElection, httptest.NewRequest(http.MethodDelete, "/admin/elections/"+e.ID, nil), e.ID)
		testutil.AssertStatus(t, w, http.StatusConflict)

		if _, err := st.GetElection(context.Background(), e.ID); err != nil {
			t.Errorf("phase %d: election should remain: %v", phase, err)
		}
		if acts := rec.actions(); len(acts) != 0 {
			t.Errorf("phase %d: audit = %v, want none", phase, acts)
		}
	}
}

func TestDeleteElectionDuringNomination(t *testing.T) {
	svc, st, _ := newTestServices(t)
	h := NewElectionHandler(svc)
	e := testutil.CreateTestElection(t, st, testutil.Nominating)

	w := serve(h.DeleteElection, httptest.NewRequest(http.MethodDelete, "/admin/elections/"+e.ID, nil), e.ID)
	testutil.AssertStatus(t, w, http.StatusOK)
}
