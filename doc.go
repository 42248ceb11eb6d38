// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the ballot-desk API server.

ballot-desk runs single-choice elections: admins schedule an election,
candidates are nominated and voters register, admins approve both, approved
adult voters cast one ballot each, and after voting ends the admin publishes
the tally.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	ADMIN_TOKEN_SECRET=... DATABASE_URL=file:ballot.db go run .

Or with flags:

	go run . -p 3318 -t pgx -d "postgres://..." -admin-secret ...

An in-memory store is available for local runs:

	go run . -t memory -admin-secret ...

Admin requests carry a bearer token printed by:

	go run . -admin-secret ... -issue-token officer

# Configuration

Required settings:

  - ADMIN_TOKEN_SECRET (-admin-secret): Admin token signing secret
  - DATABASE_URL (-d): Database URL, unless the type is memory

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite, postgres, pgx or memory (default: sqlite)
  - GEO_DATA_PATH (-geo): Location reference file (default: nepal-data.json)
  - TRUSTED_PROXIES (-trusted-proxies): Proxies allowed to set X-Forwarded-For

Values from a .env file in the working directory are used when the
variable is not already set. See package cliparse for the full list.

# Architecture

The server uses a handler-based architecture with dependency injection:

  - election: Lifecycle, eligibility, admission and tally rules
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers, rate limiting, admin auth
  - store: SQL and in-memory record stores
  - db: Driver selection and schema creation
  - geo: Province, district and municipality reference data
  - audit: Asynchronous admin action log
  - metrics: Prometheus collectors
  - auth: Admin token issue and validation
  - models: Records and request/response types
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
