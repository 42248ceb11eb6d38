// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status, duration_ms).

# CORS Middleware

Enable cross-origin requests for the voter and admin frontends:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, DELETE, OPTIONS with headers Content-Type and
Authorization.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

ParseJSONBody decodes exactly one JSON object of at most MaxBodyBytes.

# Admin Guard

	mux.HandleFunc("POST /admin/elections", middleware.RequireAdmin(issuer, h.CreateElection))

Requires "Authorization: Bearer <token>" and puts the token subject on the
request context for auditing.

# Rate Limiting

	limiter := middleware.NewRateLimiter(5, 10)
	mux.HandleFunc("POST /elections/{id}/votes", limiter.Wrap(h.CastVote))

One token bucket per client IP (see ClientIP). Requests over the limit get
429 with Retry-After. The bucket key is the connecting peer address unless
that peer is a configured proxy:

	limiter.TrustProxies(netip.MustParsePrefix("10.0.0.0/8"))

GetClientIP reads forwarded headers unconditionally and is only used for
log fields.
*/
package middleware
