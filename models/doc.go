// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines record, request, and response types for the API.

# Records

  - Election: name plus three schedule timestamps kept as text exactly as stored
  - Voter: registration for one election, identified by a 10-digit voter_id
  - Candidate: nomination for one election with a free-form profile
  - Vote: one (election, voter) pair pointing at a candidate
  - AuditEntry: append-only record of an admin action

Election timestamps stay strings here on purpose: the election package parses
them and reports unparseable values as invalid records instead of guessing.

# Request Types

  - CreateElectionRequest: name, start_date, nomination_end, voting_end
  - RegisterVoterRequest: identity fields and a LocationSelection
  - NominateCandidateRequest: name, party, symbol, location, profile
  - EligibilityRequest, CastVoteRequest: voter_id (and candidate_id)
  - BulkDeleteRequest: ids

# Response Types

  - ElectionSummary: election plus derived LifecycleView
  - ResultsResponse: ranked TallyRow list and winners
  - StatsResponse: counts and turnout percentage
  - Page: generic paginated listing
  - ErrorResponse: error, message

# Constants

Status labels:

	StatusUpcoming = "upcoming"
	StatusActive   = "active"
	StatusEnded    = "ended"
*/
package models
