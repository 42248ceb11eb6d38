// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/ballot-desk/auth"
)

// TokenVerifier checks an admin bearer token.
type TokenVerifier interface {
	Parse(token string) (*auth.Claims, error)
}

// RequireAdmin rejects requests without a valid admin token and stores the
// token subject on the request context.
func RequireAdmin(v TokenVerifier, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.BearerToken(r.Header.Get("Authorization"))
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
			ErrorResponse(w, http.StatusUnauthorized, "Admin token required")
			return
		}

		claims, err := v.Parse(token)
		if err != nil {
			slog.Warn("rejected admin token", "remote", GetClientIP(r), "error", err)
			w.Header().Set("WWW-Authenticate", `Bearer realm="admin", error="invalid_token"`)
			ErrorResponse(w, http.StatusUnauthorized, "Invalid admin token")
			return
		}

		next(w, r.WithContext(auth.ContextWithAdmin(r.Context(), claims.Subject)))
	}
}
