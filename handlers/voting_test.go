// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/danielhkuo/ballot-desk/audit"
	"github.com/danielhkuo/ballot-desk/metrics"
	"github.com/danielhkuo/ballot-desk/models"
	tu "github.com/danielhkuo/ballot-desk/testutil"
)

func TestEligibility(t *testing.T) {
	svc, st, _ := newTestServices(t)
	h := NewVotingHandler(svc)
	e := tu.CreateTestElection(t, st, tu.Voting)
	tu.CreateTestVoter(t, st, e.ID, "1000000001", true)
	tu.CreateTestVoter(t, st, e.ID, "1000000002", false)

	minor := models.Voter{
		ID: uuid.NewString(), VoterID: "1000000003", ElectionID: e.ID,
		FullName: "Young", DOB: "2010-01-01", CitizenshipNo: "x", IssueDate: "2024-01-01",
		Approved: true, CreatedAt: tu.Now,
	}
	if err := st.InsertVoter(context.Background(), minor); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name         string
		voterID      string
		wantStatus   int
		wantEligible bool
	}{
		{"approved adult", "1000000001", http.StatusOK, true},
		{"pending approval", "1000000002", http.StatusOK, false},
		{"under 18", "1000000003", http.StatusOK, false},
		{"unknown voter", "1999999999", http.StatusNotFound, false},
		{"malformed id", "12345", http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := models.EligibilityRequest{VoterID: tt.voterID}
			w := serve(h.Eligibility, tu.MakeRequest(http.MethodPost, "/", body, nil), e.ID)
			tu.AssertStatus(t, w, tt.wantStatus)
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp models.EligibilityResponse
			tu.AssertJSON(t, w, &resp)
			if resp.Eligible != tt.wantEligible {
				t.Errorf("eligible = %v, want %v (reason %q)", resp.Eligible, tt.wantEligible, resp.Reason)
			}
			if !resp.Eligible && resp.Reason == "" {
				t.Error("ineligible verdict should carry a reason")
			}
		})
	}
}

func TestEligibilityOutsideVoting(t *testing.T) {
	svc, st, _ := newTestServices(t)
	h := NewVotingHandler(svc)
	e := tu.CreateTestElection(t, st, tu.Upcoming)
	tu.CreateTestVoter(t, st, e.ID, "1000000001", true)

	body := models.EligibilityRequest{VoterID: "1000000001"}
	w := serve(h.Eligibility, tu.MakeRequest(http.MethodPost, "/", body, nil), e.ID)
	tu.AssertStatus(t, w, http.StatusForbidden)
}

func TestCastVote(t *testing.T) {
	svc, st, _ := newTestServices(t)
	h := NewVotingHandler(svc)
	e := tu.CreateTestElection(t, st, tu.Voting)
	v := tu.CreateTestVoter(t, st, e.ID, "1000000001", true)
	c := tu.CreateTestCandidate(t, st, e.ID, "Asha", true)

	body := models.CastVoteRequest{VoterID: v.VoterID, CandidateID: c.ID}
	w := serve(h.CastVote, tu.MakeRequest(http.MethodPost, "/", body, nil), e.ID)
	tu.AssertStatus(t, w, http.StatusCreated)

	var resp models.CastVoteResponse
	tu.AssertJSON(t, w, &resp)
	votes, _ := st.ListVotes(context.Background(), e.ID)
	if len(votes) != 1 || votes[0].ID != resp.VoteID || votes[0].CandidateID != c.ID {
		t.Errorf("stored votes = %+v", votes)
	}

	// Second ballot from the same voter
	w = serve(h.CastVote, tu.MakeRequest(http.MethodPost, "/", body, nil), e.ID)
	tu.AssertStatus(t, w, http.StatusConflict)
	var errResp models.ErrorResponse
	tu.AssertJSON(t, w, &errResp)
	if errResp.Error != "You have already voted in this election." {
		t.Errorf("duplicate message = %q", errResp.Error)
	}

	if got := testutil.ToFloat64(svc.Metrics.VotesCast); got != 1 {
		t.Errorf("votes cast metric = %v", got)
	}
	if got := testutil.ToFloat64(svc.Metrics.VotesRejected.WithLabelValues(metrics.RejectDuplicate)); got != 1 {
		t.Errorf("duplicate rejections = %v", got)
	}
}

func TestCastVoteRejections(t *testing.T) {
	svc, st, _ := newTestServices(t)
	h := NewVotingHandler(svc)
	e := tu.CreateTestElection(t, st, tu.Voting)
	other := tu.CreateTestElection(t, st, tu.Voting)

	voter := tu.CreateTestVoter(t, st, e.ID, "1000000001", true)
	pending := tu.CreateTestVoter(t, st, e.ID, "1000000002", false)
	approved := tu.CreateTestCandidate(t, st, e.ID, "Asha", true)
	unapproved := tu.CreateTestCandidate(t, st, e.ID, "Binod", false)
	foreign := tu.CreateTestCandidate(t, st, other.ID, "Chandra", true)

	tests := []struct {
		name       string
		body       models.CastVoteRequest
		wantStatus int
		reason     string
	}{
		{"pending voter", models.CastVoteRequest{VoterID: pending.VoterID, CandidateID: approved.ID}, http.StatusForbidden, metrics.RejectIneligible},
		{"unknown voter", models.CastVoteRequest{VoterID: "1999999999", CandidateID: approved.ID}, http.StatusNotFound, metrics.RejectIneligible},
		{"unapproved candidate", models.CastVoteRequest{VoterID: voter.VoterID, CandidateID: unapproved.ID}, http.StatusBadRequest, metrics.RejectCandidate},
		{"candidate in another election", models.CastVoteRequest{VoterID: voter.VoterID, CandidateID: foreign.ID}, http.StatusBadRequest, metrics.RejectCandidate},
		{"missing candidate", models.CastVoteRequest{VoterID: voter.VoterID, CandidateID: "nobody"}, http.StatusBadRequest, metrics.RejectCandidate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(svc.Metrics.VotesRejected.WithLabelValues(tt.reason))
			w := serve(h.CastVote, tu.MakeRequest(http.MethodPost, "/", tt.body, nil), e.ID)
			tu.AssertStatus(t, w, tt.wantStatus)
			after := testutil.ToFloat64(svc.Metrics.VotesRejected.WithLabelValues(tt.reason))
			if after-before != 1 {
				t.Errorf("%s rejections went from %v to %v", tt.reason, before, after)
			}
		})
	}

	votes, _ := st.ListVotes(context.Background(), e.ID)
	if len(votes) != 0 {
		t.Errorf("no rejected vote should be stored, got %d", len(votes))
	}
}

func TestCastVoteOutsideVoting(t *testing.T) {
	for _, phase := range []tu.Phase{tu.Nominating, tu.Upcoming, tu.Ended} {
		svc, st, _ := newTestServices(t)
		h := NewVotingHandler(svc)
		e := tu.CreateTestElection(t, st, phase)
		v := tu.CreateTestVoter(t, st, e.ID, "1000000001", true)
		c := tu.CreateTestCandidate(t, st, e.ID, "Asha", true)

		body := models.CastVoteRequest{VoterID: v.VoterID, CandidateID: c.ID}
		w := serve(h.CastVote, tu.MakeRequest(http.MethodPost, "/", body, nil), e.ID)
		tu.AssertStatus(t, w, http.StatusForbidden)
		if got := testutil.ToFloat64(svc.Metrics.VotesRejected.WithLabelValues(metrics.RejectClosed)); got != 1 {
			t.Errorf("closed rejections = %v", got)
		}
	}
}

// TestConcurrentVotesSameVoter verifies the store's unique constraint lets
// exactly one of many simultaneous ballots from one voter through.
func TestConcurrentVotesSameVoter(t *testing.T) {
	svc, st, _ := newTestServices(t)
	h := NewVotingHandler(svc)
	e := tu.CreateTestElection(t, st, tu.Voting)
	v := tu.CreateTestVoter(t, st, e.ID, "1000000001", true)
	c1 := tu.CreateTestCandidate(t, st, e.ID, "Asha", true)
	c2 := tu.CreateTestCandidate(t, st, e.ID, "Binod", true)

	var created, conflicts atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cid := c1.ID
			if i%2 == 1 {
				cid = c2.ID
			}
			body := models.CastVoteRequest{VoterID: v.VoterID, CandidateID: cid}
			w := serve(h.CastVote, tu.MakeRequest(http.MethodPost, "/", body, nil), e.ID)
			switch w.Code {
			case http.StatusCreated:
				created.Add(1)
			case http.StatusConflict:
				conflicts.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if created.Load() != 1 || conflicts.Load() != 19 {
		t.Errorf("created = %d conflicts = %d, want 1 and 19", created.Load(), conflicts.Load())
	}
	votes, _ := st.ListVotes(context.Background(), e.ID)
	if len(votes) != 1 {
		t.Errorf("stored votes = %d, want 1", len(votes))
	}
}

func TestAdminVotes(t *testing.T) {
	svc, st, rec := newTestServices(t)
	h := NewVotingHandler(svc)
	e := tu.CreateTestElection(t, st, tu.Ended)
	c := tu.CreateTestCandidate(t, st, e.ID, "Asha", true)
	var ids []string
	for _, voterID := range []string{"1000000001", "1000000002", "1000000003"} {
		tu.CreateTestVoter(t, st, e.ID, voterID, true)
		ids = append(ids, tu.CastTestVote(t, st, e.ID, voterID, c.ID).ID)
	}

	w := serve(h.List, httptest.NewRequest(http.MethodGet, "/?per_page=2", nil), e.ID)
	tu.AssertStatus(t, w, http.StatusOK)
	var page models.Page[models.Vote]
	tu.AssertJSON(t, w, &page)
	if page.Total != 3 || len(page.Items) != 2 || page.TotalPages != 2 {
		t.Errorf("page = %+v", page)
	}

	w = serve(h.Delete, httptest.NewRequest(http.MethodDelete, "/", nil), ids[0])
	tu.AssertStatus(t, w, http.StatusOK)
	w = serve(h.Delete, httptest.NewRequest(http.MethodDelete, "/", nil), ids[0])
	tu.AssertStatus(t, w, http.StatusNotFound)

	votes, _ := st.ListVotes(context.Background(), e.ID)
	if len(votes) != 2 {
		t.Errorf("remaining votes = %d, want 2", len(votes))
	}
	if acts := rec.actions(); len(acts) != 1 || acts[0] != audit.ActionDeleteVote {
		t.Errorf("audit = %v", acts)
	}
}
