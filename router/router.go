// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielhkuo/ballot-desk/handlers"
	"github.com/danielhkuo/ballot-desk/metrics"
	"github.com/danielhkuo/ballot-desk/middleware"
)

func NewRouter(svc handlers.Services, verifier middleware.TokenVerifier, limiter *middleware.RateLimiter, gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	electionHandler := handlers.NewElectionHandler(svc)
	voterHandler := handlers.NewVoterHandler(svc)
	candidateHandler := handlers.NewCandidateHandler(svc)
	votingHandler := handlers.NewVotingHandler(svc)
	resultsHandler := handlers.NewResultsHandler(svc)
	locationHandler := handlers.NewLocationHandler(svc)
	auditHandler := handlers.NewAuditHandler(svc)

	public := middleware.WithLogging
	limited := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(limiter.Wrap(h))
	}
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAdmin(verifier, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", metrics.Handler(gatherer))

	// Location dropdowns
	mux.HandleFunc("GET /locations/provinces", public(locationHandler.Provinces))
	mux.HandleFunc("GET /locations/provinces/{id}/districts", public(locationHandler.Districts))
	mux.HandleFunc("GET /locations/districts/{id}/municipalities", public(locationHandler.Municipalities))

	// Elections (public)
	mux.HandleFunc("GET /elections", public(electionHandler.ListElections))
	mux.HandleFunc("GET /elections/{id}", public(electionHandler.GetElection))
	mux.HandleFunc("GET /elections/{id}/candidates", public(candidateHandler.ListApproved))
	mux.HandleFunc("POST /elections/{id}/candidates", public(candidateHandler.Nominate))
	mux.HandleFunc("GET /elections/{id}/results", public(resultsHandler.Public))

	// Voter operations (public, rate limited per IP)
	mux.HandleFunc("POST /elections/{id}/voters", limited(voterHandler.Register))
	mux.HandleFunc("POST /elections/{id}/eligibility", limited(votingHandler.Eligibility))
	mux.HandleFunc("POST /elections/{id}/votes", limited(votingHandler.CastVote))

	// Election management (admin, requires a bearer token)
	mux.HandleFunc("POST /admin/elections", admin(electionHandler.CreateElection))
	mux.HandleFunc("DELETE /admin/elections/{id}", admin(electionHandler.DeleteElection))
	mux.HandleFunc("POST /admin/elections/{id}/publish", admin(resultsHandler.Publish))
	mux.HandleFunc("GET /admin/elections/{id}/results", admin(resultsHandler.Admin))
	mux.HandleFunc("GET /admin/elections/{id}/stats", admin(resultsHandler.Stats))

	// Voter review
	mux.HandleFunc("GET /admin/elections/{id}/voters", admin(voterHandler.List))
	mux.HandleFunc("POST /admin/voters/{id}/approve", admin(voterHandler.Approve))
	mux.HandleFunc("POST /admin/voters/{id}/unapprove", admin(voterHandler.Unapprove))
	mux.HandleFunc("DELETE /admin/voters/{id}", admin(voterHandler.Delete))
	mux.HandleFunc("POST /admin/voters/delete", admin(voterHandler.BulkDelete))

	// Candidate review
	mux.HandleFunc("GET /admin/elections/{id}/candidates", admin(candidateHandler.List))
	mux.HandleFunc("POST /admin/candidates/{id}/approve", admin(candidateHandler.Approve))
	mux.HandleFunc("POST /admin/candidates/{id}/unapprove", admin(candidateHandler.Unapprove))
	mux.HandleFunc("DELETE /admin/candidates/{id}", admin(candidateHandler.Delete))
	mux.HandleFunc("POST /admin/candidates/delete", admin(candidateHandler.BulkDelete))

	// Votes and audit log
	mux.HandleFunc("GET /admin/elections/{id}/votes", admin(votingHandler.List))
	mux.HandleFunc("DELETE /admin/votes/{id}", admin(votingHandler.Delete))
	mux.HandleFunc("GET /admin/audit", admin(auditHandler.List))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ballot-desk API v1"))
	})

	return mux
}
