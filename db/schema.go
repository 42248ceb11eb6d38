// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Statements stay within the subset shared by PostgreSQL and SQLite:
// timestamps are fixed-width RFC3339 text written by the application.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS elections (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    start_date TEXT NOT NULL,
    nomination_end TEXT NOT NULL,
    voting_end TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'upcoming',
    result_published BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TEXT NOT NULL
)`,

	`CREATE TABLE IF NOT EXISTS voters (
    id TEXT PRIMARY KEY,
    voter_id TEXT NOT NULL,
    election_id TEXT NOT NULL REFERENCES elections(id) ON DELETE CASCADE,
    full_name TEXT NOT NULL,
    dob TEXT NOT NULL,
    citizenship_no TEXT NOT NULL,
    issue_date TEXT NOT NULL,
    province TEXT NOT NULL,
    district TEXT NOT NULL,
    municipality TEXT NOT NULL,
    local_area TEXT NOT NULL DEFAULT '',
    approved BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TEXT NOT NULL,
    UNIQUE (election_id, voter_id)
)`,
	`CREATE INDEX IF NOT EXISTS idx_voters_election_id ON voters(election_id)`,

	`CREATE TABLE IF NOT EXISTS candidates (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES elections(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    party TEXT NOT NULL DEFAULT '',
    symbol TEXT NOT NULL DEFAULT '',
    province TEXT NOT NULL,
    district TEXT NOT NULL,
    municipality TEXT NOT NULL,
    local_area TEXT NOT NULL DEFAULT '',
    profile TEXT NOT NULL DEFAULT '{}',
    approved BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_candidates_election_id ON candidates(election_id)`,

	`CREATE TABLE IF NOT EXISTS votes (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES elections(id) ON DELETE CASCADE,
    voter_id TEXT NOT NULL,
    candidate_id TEXT NOT NULL,
    created_at TEXT NOT NULL,
    UNIQUE (election_id, voter_id)
)`,
	`CREATE INDEX IF NOT EXISTS idx_votes_candidate_id ON votes(candidate_id)`,

	`CREATE TABLE IF NOT EXISTS audit_log (
    id TEXT PRIMARY KEY,
    action TEXT NOT NULL,
    entity_type TEXT NOT NULL,
    entity_id TEXT,
    details TEXT NOT NULL DEFAULT '{}',
    admin TEXT NOT NULL,
    created_at TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_log_created_at ON audit_log(created_at)`,
}
