// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

	if err := cliparse.LoadDotEnv(".env"); err != nil {
		// malformed .env
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])

LoadDotEnv never overrides variables already present in the environment.

# Flags and Environment Variables

	-p                  PORT                  Server port (default 3318)
	-d                  DATABASE_URL          Database URL (required unless memory)
	-t                  DATABASE_TYPE         sqlite, postgres, pgx or memory (default sqlite)
	-admin-secret       ADMIN_TOKEN_SECRET    Admin token signing secret (required)
	-geo                GEO_DATA_PATH         Reference file, JSON or YAML (default nepal-data.json)
	-status-interval    STATUS_SYNC_INTERVAL  Status refresh, clamped to 10s..60s (default 30s)
	-vote-rps           VOTE_RATE_PER_SEC     Per-IP rate on voter endpoints (default 5)
	-vote-burst         VOTE_RATE_BURST       Per-IP burst (default 10)
	-voter-id-attempts  VOTER_ID_ATTEMPTS     Voter id collision retries (default 5)
	-trusted-proxies    TRUSTED_PROXIES       Proxy IPs/CIDRs whose X-Forwarded-For is used (default none)
	-issue-token        (none)                Print an admin token and exit

CLI flags take precedence over environment variables.
*/
package cliparse
