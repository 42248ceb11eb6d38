// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/ballot-desk/auth"
	"github.com/danielhkuo/ballot-desk/cliparse"
	"github.com/danielhkuo/ballot-desk/geo"
	"github.com/danielhkuo/ballot-desk/models"
	"github.com/danielhkuo/ballot-desk/store"
)

// TestSecret signs admin tokens in tests.
const TestSecret = "test-admin-secret-0123456789"

// Location ids present in the tree returned by GeoTree.
const (
	ProvinceID     = "1"
	DistrictID     = "101"
	MunicipalityID = "10101"
	OtherDistrict  = "301"
)

// Now is the instant every fixture is placed around.
var Now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// Clock is an adjustable election.Clock.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func NewClock(t time.Time) *Clock {
	return &Clock{t: t}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

const locationsJSON = `{
  "provinceList": [
    {"id": 1, "name": "Koshi", "districtList": [
      {"id": 101, "name": "Jhapa", "municipalityList": [
        {"id": 10101, "name": "Mechinagar"},
        {"id": 10102, "name": "Birtamod"}
      ]}
    ]},
    {"id": 3, "name": "Bagmati", "districtList": [
      {"id": 301, "name": "Kathmandu", "municipalityList": [
        {"id": 30101, "name": "Kathmandu Metropolitan"}
      ]}
    ]}
  ]
}`

// GeoTree returns a small two-province location tree.
func GeoTree(t *testing.T) *geo.Tree {
	t.Helper()
	tree, err := geo.Parse([]byte(locationsJSON))
	if err != nil {
		t.Fatalf("Failed to parse location data: %v", err)
	}
	return tree
}

// Selection picks Koshi / Jhapa / Mechinagar.
func Selection() models.LocationSelection {
	return models.LocationSelection{
		ProvinceID:     ProvinceID,
		DistrictID:     DistrictID,
		MunicipalityID: MunicipalityID,
		LocalArea:      "Ward 4",
	}
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:            cliparse.DefaultPort,
		DatabaseType:    "memory",
		AdminSecret:     TestSecret,
		StatusInterval:  cliparse.DefaultStatusInterval,
		VoteRatePerSec:  cliparse.DefaultVoteRatePerSec,
		VoteRateBurst:   cliparse.DefaultVoteRateBurst,
		VoterIDAttempts: cliparse.DefaultVoterIDAttempts,
	}
}

// Phase places a test election relative to Now.
type Phase int

const (
	// Nominating: nominations and registration open, voting not started.
	Nominating Phase = iota
	// Upcoming: nominations closed, voting not started.
	Upcoming
	// Voting: voting window contains Now.
	Voting
	// Ended: voting closed before Now.
	Ended
)

func schedule(p Phase) (start, nomEnd, votEnd time.Time) {
	day := 24 * time.Hour
	switch p {
	case Nominating:
		return Now.Add(3 * day), Now.Add(day), Now.Add(5 * day)
	case Upcoming:
		return Now.Add(3 * day), Now.Add(-day), Now.Add(5 * day)
	case Voting:
		return Now.Add(-day), Now.Add(-2 * day), Now.Add(day)
	default:
		return Now.Add(-5 * day), Now.Add(-6 * day), Now.Add(-day)
	}
}

// CreateTestElection stores an election in the given phase and returns it.
func CreateTestElection(t *testing.T, st *store.Memory, p Phase) models.Election {
	t.Helper()
	start, nomEnd, votEnd := schedule(p)
	status := models.StatusUpcoming
	switch p {
	case Voting:
		status = models.StatusActive
	case Ended:
		status = models.StatusEnded
	}
	e := models.Election{
		ID:            uuid.NewString(),
		Name:          "Test Election",
		StartDate:     start.Format(time.RFC3339),
		NominationEnd: nomEnd.Format(time.RFC3339),
		VotingEnd:     votEnd.Format(time.RFC3339),
		Status:        status,
		CreatedAt:     Now.Add(-10 * 24 * time.Hour),
	}
	if err := st.InsertElection(context.Background(), e); err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}
	return e
}

// CreateTestVoter stores a voter born in 1990 and returns it.
func CreateTestVoter(t *testing.T, st *store.Memory, electionID, voterID string, approved bool) models.Voter {
	t.Helper()
	v := models.Voter{
		ID:            uuid.NewString(),
		VoterID:       voterID,
		ElectionID:    electionID,
		FullName:      "Test Voter " + voterID,
		DOB:           "1990-01-01",
		CitizenshipNo: "CIT-" + voterID,
		IssueDate:     "2010-01-01",
		Location:      models.Location{Province: "Koshi", District: "Jhapa", Municipality: "Mechinagar"},
		Approved:      approved,
		CreatedAt:     Now,
	}
	if err := st.InsertVoter(context.Background(), v); err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}
	return v
}

// CreateTestCandidate stores a candidate and returns it.
func CreateTestCandidate(t *testing.T, st *store.Memory, electionID, name string, approved bool) models.Candidate {
	t.Helper()
	c := models.Candidate{
		ID:         uuid.NewString(),
		ElectionID: electionID,
		Name:       name,
		Party:      "Test Party",
		Location:   models.Location{Province: "Koshi", District: "Jhapa", Municipality: "Mechinagar"},
		Approved:   approved,
		CreatedAt:  Now,
	}
	if err := st.InsertCandidate(context.Background(), c); err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}
	return c
}

// CastTestVote stores a vote directly, bypassing the voting rules.
func CastTestVote(t *testing.T, st *store.Memory, electionID, voterID, candidateID string) models.Vote {
	t.Helper()
	v := models.Vote{
		ID:          uuid.NewString(),
		ElectionID:  electionID,
		VoterID:     voterID,
		CandidateID: candidateID,
		CreatedAt:   Now,
	}
	if err := st.InsertVote(context.Background(), v); err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}
	return v
}

// AdminToken issues a token for admin signed with TestSecret.
func AdminToken(t *testing.T, admin string) string {
	t.Helper()
	issuer, err := auth.NewIssuer(TestSecret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to create issuer: %v", err)
	}
	token, err := issuer.Issue(admin)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return token
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
