// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the ballot-desk API.

# Handler Types

Each handler embeds the shared Services bundle (store, location tree,
clock, audit recorder, metrics and config):

  - ElectionHandler: Listing, creating and deleting elections
  - VoterHandler: Registration and admin review of voters
  - CandidateHandler: Nominations and admin review of candidates
  - VotingHandler: Eligibility checks, ballots and admin vote listing
  - ResultsHandler: Tallies, statistics and publishing
  - LocationHandler: Cascading province/district/municipality lists
  - AuditHandler: The admin action log

	svc := handlers.Services{Store: st, Geo: tree, Audit: rec, Metrics: m, Config: cfg}
	voterHandler := handlers.NewVoterHandler(svc)

# Election Windows

Every request re-derives the election's lifecycle from its stored
timestamps and the clock. A closed window answers 403:

	POST /elections/{id}/candidates  → Nominate (before nomination_end)
	POST /elections/{id}/voters      → Register (until voting ends)
	POST /elections/{id}/eligibility → Eligibility (while voting)
	POST /elections/{id}/votes       → CastVote (while voting)
	GET  /elections/{id}/results     → Public (ended and published)

Publishing before voting ends, or twice, answers 409. A second vote by the
same voter is rejected by the store's unique constraint and answers 409.

# Errors

Failures carry an election.Kind which writeError maps to a status:
InvalidInput 400, InvalidSchedule 422, NotFound 404, DuplicateVote 409,
InvalidRecord and StoreError 500. Messages are passed through unchanged.

# Pagination

Admin listings accept page (1-based) and per_page (default 10, capped at
100) and return a models.Page.
*/
package handlers
