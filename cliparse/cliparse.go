// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort            = 3318
	DefaultGeoDataPath     = "nepal-data.json"
	DefaultStatusInterval  = 30 * time.Second
	MinStatusInterval      = 10 * time.Second
	MaxStatusInterval      = 60 * time.Second
	DefaultVoteRatePerSec  = 5
	DefaultVoteRateBurst   = 10
	DefaultVoterIDAttempts = 5
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	AdminSecret  string
	GeoDataPath  string

	// StatusInterval is how often stored status labels are refreshed.
	StatusInterval time.Duration

	// Per-IP limits on registration, eligibility checks and voting.
	VoteRatePerSec float64
	VoteRateBurst  int

	// TrustedProxies are peers whose X-Forwarded-For the rate limiter
	// believes. Empty means the limiter keys on the connecting address.
	TrustedProxies []netip.Prefix

	// VoterIDAttempts bounds retries when a generated voter id collides.
	VoterIDAttempts int

	// IssueToken, when set, prints an admin token for this identity and exits.
	IssueToken string
}

// LoadDotEnv loads variables from path into the environment without
// overriding ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ParseFlags reads flags, falling back to environment variables and then
// defaults.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var interval, proxies string

	fs := flag.NewFlagSet("ballot-desk", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite, postgres, pgx or memory)")
	fs.StringVar(&cfg.GeoDataPath, "geo", "", "Path to the province/district/municipality reference file")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminSecret, "admin-secret", "", "Admin token signing secret (prefer env)")

	fs.StringVar(&interval, "status-interval", "", "Status refresh interval, 10s to 60s")
	fs.Float64Var(&cfg.VoteRatePerSec, "vote-rps", 0, "Requests per second per IP on voter endpoints")
	fs.IntVar(&cfg.VoteRateBurst, "vote-burst", 0, "Burst per IP on voter endpoints")
	fs.StringVar(&proxies, "trusted-proxies", "", "Comma-separated proxy IPs or CIDRs whose forwarded headers are trusted")
	fs.IntVar(&cfg.VoterIDAttempts, "voter-id-attempts", 0, "Attempts to find an unused voter id")
	fs.StringVar(&cfg.IssueToken, "issue-token", "", "Print an admin token for this identity and exit")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		port, err := envInt("PORT", DefaultPort)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = envString("DATABASE_TYPE", "sqlite")
	}
	switch cfg.DatabaseType {
	case "sqlite", "postgres", "pgx", "memory":
	default:
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" && cfg.DatabaseType != "memory" && cfg.IssueToken == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.GeoDataPath == "" {
		cfg.GeoDataPath = envString("GEO_DATA_PATH", DefaultGeoDataPath)
	}

	// Secrets - MUST be provided
	if cfg.AdminSecret == "" {
		cfg.AdminSecret = os.Getenv("ADMIN_TOKEN_SECRET")
	}
	if cfg.AdminSecret == "" {
		return Config{}, errors.New("ADMIN_TOKEN_SECRET required")
	}

	if interval == "" {
		interval = os.Getenv("STATUS_SYNC_INTERVAL")
	}
	d, err := parseInterval(interval)
	if err != nil {
		return Config{}, err
	}
	cfg.StatusInterval = d

	if cfg.VoteRatePerSec == 0 {
		v, err := envFloat("VOTE_RATE_PER_SEC", DefaultVoteRatePerSec)
		if err != nil {
			return Config{}, err
		}
		cfg.VoteRatePerSec = v
	}
	if cfg.VoteRatePerSec <= 0 {
		return Config{}, errors.New("vote rate must be positive")
	}
	if cfg.VoteRateBurst == 0 {
		v, err := envInt("VOTE_RATE_BURST", DefaultVoteRateBurst)
		if err != nil {
			return Config{}, err
		}
		cfg.VoteRateBurst = v
	}
	if proxies == "" {
		proxies = os.Getenv("TRUSTED_PROXIES")
	}
	trusted, err := parseProxies(proxies)
	if err != nil {
		return Config{}, err
	}
	cfg.TrustedProxies = trusted

	if cfg.VoterIDAttempts == 0 {
		v, err := envInt("VOTER_ID_ATTEMPTS", DefaultVoterIDAttempts)
		if err != nil {
			return Config{}, err
		}
		cfg.VoterIDAttempts = v
	}
	if cfg.VoteRateBurst < 1 || cfg.VoterIDAttempts < 1 {
		return Config{}, errors.New("vote burst and voter id attempts must be at least 1")
	}

	return cfg, nil
}

// parseInterval accepts a Go duration or a whole number of seconds and
// clamps the result to [MinStatusInterval, MaxStatusInterval].
func parseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultStatusInterval, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		secs, convErr := strconv.Atoi(s)
		if convErr != nil {
			return 0, fmt.Errorf("invalid status interval %q", s)
		}
		d = time.Duration(secs) * time.Second
	}
	return min(max(d, MinStatusInterval), MaxStatusInterval), nil
}

// parseProxies reads a comma-separated list of addresses and prefixes. A bare
// address is a single-host prefix.
func parseProxies(s string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "/") {
			p, err := netip.ParsePrefix(part)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", part)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(part)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q", part)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return f, nil
}
