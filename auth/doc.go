// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth issues and verifies admin bearer tokens.

# Admin Tokens

Tokens are HS256 JWTs signed with ADMIN_TOKEN_SECRET:

	issuer, err := auth.NewIssuer(secret, auth.DefaultTokenTTL)
	token, err := issuer.Issue("returning-officer")
	claims, err := issuer.Parse(token)

The subject is the admin identity. Parse checks signature, issuer and expiry
and reports every verification failure as ErrInvalidToken, so callers cannot
tell a forged token from an expired one.

# Request Identity

The admin guard in package middleware stores the verified subject with
ContextWithAdmin; the audit recorder reads it back with AdminFromContext.
*/
package auth
