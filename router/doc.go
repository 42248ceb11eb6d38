// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the ballot-desk API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(svc, issuer, limiter, registry)

Every handler is wrapped in request logging. Voter-facing writes pass
through the per-IP rate limiter and /admin routes require a bearer token.

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Locations:

	GET /locations/provinces
	GET /locations/provinces/{id}/districts
	GET /locations/districts/{id}/municipalities

Elections (public):

	GET  /elections                    - Elections with lifecycle flags
	GET  /elections/{id}               - One election
	GET  /elections/{id}/candidates    - Approved candidates
	POST /elections/{id}/candidates    - Nominate
	POST /elections/{id}/voters        - Register (rate limited)
	POST /elections/{id}/eligibility   - Check a voter id (rate limited)
	POST /elections/{id}/votes         - Cast a ballot (rate limited)
	GET  /elections/{id}/results       - Published results

Admin (Authorization: Bearer <token>):

	POST   /admin/elections
	DELETE /admin/elections/{id}
	POST   /admin/elections/{id}/publish
	GET    /admin/elections/{id}/results
	GET    /admin/elections/{id}/stats
	GET    /admin/elections/{id}/voters
	GET    /admin/elections/{id}/candidates
	GET    /admin/elections/{id}/votes
	POST   /admin/voters/{id}/approve
	POST   /admin/voters/{id}/unapprove
	DELETE /admin/voters/{id}
	POST   /admin/voters/delete
	POST   /admin/candidates/{id}/approve
	POST   /admin/candidates/{id}/unapprove
	DELETE /admin/candidates/{id}
	POST   /admin/candidates/delete
	DELETE /admin/votes/{id}
	GET    /admin/audit
*/
package router
