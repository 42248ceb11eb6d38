// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"time"
)

// Election status labels. The stored label is informational only; the
// authoritative status is always derived from the election's timestamps.
const (
	StatusUpcoming = "upcoming"
	StatusActive   = "active"
	StatusEnded    = "ended"
)

// Audit entity types
const (
	EntityElection  = "election"
	EntityVoter     = "voter"
	EntityCandidate = "candidate"
	EntityVote      = "vote"
)

// Domain types

type Election struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	StartDate       string    `json:"start_date"`
	NominationEnd   string    `json:"nomination_end"`
	VotingEnd       string    `json:"voting_end"`
	Status          string    `json:"status"`
	ResultPublished bool      `json:"result_published"`
	CreatedAt       time.Time `json:"created_at"`
}

// Location is the human-readable address stamped onto voter and candidate
// records at submission time.
type Location struct {
	Province     string `json:"province"`
	District     string `json:"district"`
	Municipality string `json:"municipality"`
	LocalArea    string `json:"local_area,omitempty"`
}

type Voter struct {
	ID            string    `json:"id"`
	VoterID       string    `json:"voter_id"`
	ElectionID    string    `json:"election_id"`
	FullName      string    `json:"full_name"`
	DOB           string    `json:"dob"`
	CitizenshipNo string    `json:"citizenship_no"`
	IssueDate     string    `json:"issue_date"`
	Location      Location  `json:"location"`
	Approved      bool      `json:"approved"`
	CreatedAt     time.Time `json:"created_at"`
}

type SocialLinks struct {
	Facebook string `json:"facebook,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	Website  string `json:"website,omitempty"`
}

type FinancialDisclosure struct {
	Assets      string `json:"assets,omitempty"`
	Income      string `json:"income,omitempty"`
	Liabilities string `json:"liabilities,omitempty"`
}

// CandidateProfile holds the nomination details that are displayed but never
// queried on.
type CandidateProfile struct {
	Gender         string              `json:"gender,omitempty"`
	DOB            string              `json:"dob,omitempty"`
	CitizenshipNo  string              `json:"citizenship_no,omitempty"`
	Education      string              `json:"education,omitempty"`
	Qualifications string              `json:"qualifications,omitempty"`
	Experience     string              `json:"experience,omitempty"`
	Manifesto      string              `json:"manifesto,omitempty"`
	Financial      FinancialDisclosure `json:"financial,omitempty"`
	Social         SocialLinks         `json:"social,omitempty"`
	PhotoURL       string              `json:"photo_url,omitempty"`
}

type Candidate struct {
	ID         string           `json:"id"`
	ElectionID string           `json:"election_id"`
	Name       string           `json:"name"`
	Party      string           `json:"party"`
	Symbol     string           `json:"symbol,omitempty"`
	Location   Location         `json:"location"`
	Profile    CandidateProfile `json:"profile"`
	Approved   bool             `json:"approved"`
	CreatedAt  time.Time        `json:"created_at"`
}

type Vote struct {
	ID          string    `json:"id"`
	ElectionID  string    `json:"election_id"`
	VoterID     string    `json:"voter_id"`
	CandidateID string    `json:"candidate_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type AuditEntry struct {
	ID         string          `json:"id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   *string         `json:"entity_id,omitempty"`
	Details    json.RawMessage `json:"details"`
	Admin      string          `json:"admin"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Filters

// VoterFilter narrows admin voter listings. A nil Approved matches both.
type VoterFilter struct {
	ElectionID string
	Approved   *bool
}

type CandidateFilter struct {
	ElectionID string
	Approved   *bool
}

// Request types

type CreateElectionRequest struct {
	Name          string `json:"name"`
	StartDate     string `json:"start_date"`
	NominationEnd string `json:"nomination_end"`
	VotingEnd     string `json:"voting_end"`
}

// LocationSelection carries the cascading dropdown ids chosen by the user.
type LocationSelection struct {
	ProvinceID     string `json:"province_id"`
	DistrictID     string `json:"district_id"`
	MunicipalityID string `json:"municipality_id"`
	LocalArea      string `json:"local_area"`
}

type RegisterVoterRequest struct {
	FullName      string            `json:"full_name"`
	DOB           string            `json:"dob"`
	CitizenshipNo string            `json:"citizenship_no"`
	IssueDate     string            `json:"issue_date"`
	Location      LocationSelection `json:"location"`
}

type NominateCandidateRequest struct {
	Name     string            `json:"name"`
	Party    string            `json:"party"`
	Symbol   string            `json:"symbol"`
	Location LocationSelection `json:"location"`
	Profile  CandidateProfile  `json:"profile"`
}

type EligibilityRequest struct {
	VoterID string `json:"voter_id"`
}

type CastVoteRequest struct {
	VoterID     string `json:"voter_id"`
	CandidateID string `json:"candidate_id"`
}

type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// Response types

type LifecycleView struct {
	Status             string `json:"status"`
	NominationOpen     bool   `json:"nomination_open"`
	RegistrationOpen   bool   `json:"registration_open"`
	VotingOpen         bool   `json:"voting_open"`
	ResultsVisible     bool   `json:"results_visible"`
	ResultsPublishable bool   `json:"results_publishable"`
	ScheduleEditable   bool   `json:"schedule_editable"`
}

type ElectionSummary struct {
	Election  Election      `json:"election"`
	Lifecycle LifecycleView `json:"lifecycle"`
	StartsIn  string        `json:"starts,omitempty"`
	EndsIn    string        `json:"ends,omitempty"`
}

type RegisterVoterResponse struct {
	ID      string `json:"id"`
	VoterID string `json:"voter_id"`
	Message string `json:"message"`
}

type NominateCandidateResponse struct {
	CandidateID string `json:"candidate_id"`
	Message     string `json:"message"`
}

type EligibilityResponse struct {
	Eligible bool   `json:"eligible"`
	Age      int    `json:"age"`
	Reason   string `json:"reason,omitempty"`
}

type CastVoteResponse struct {
	VoteID  string `json:"vote_id"`
	Message string `json:"message"`
}

type TallyRow struct {
	Rank      int       `json:"rank"`
	Candidate Candidate `json:"candidate"`
	Votes     int       `json:"votes"`
}

type ResultsResponse struct {
	Election   Election   `json:"election"`
	Rankings   []TallyRow `json:"rankings"`
	Winners    []string   `json:"winners"`
	TotalVotes int        `json:"total_votes"`
}

type StatsResponse struct {
	ElectionID     string  `json:"election_id"`
	Voters         int     `json:"voters"`
	ApprovedVoters int     `json:"approved_voters"`
	Candidates     int     `json:"candidates"`
	Votes          int     `json:"votes"`
	Turnout        float64 `json:"turnout"`
}

type Page[T any] struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
	Items      []T `json:"items"`
}

type DeleteResponse struct {
	Deleted int `json:"deleted"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
