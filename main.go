package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielhkuo/ballot-desk/audit"
	"github.com/danielhkuo/ballot-desk/auth"
	"github.com/danielhkuo/ballot-desk/cliparse"
	"github.com/danielhkuo/ballot-desk/db"
	"github.com/danielhkuo/ballot-desk/election"
	"github.com/danielhkuo/ballot-desk/geo"
	"github.com/danielhkuo/ballot-desk/handlers"
	"github.com/danielhkuo/ballot-desk/metrics"
	"github.com/danielhkuo/ballot-desk/middleware"
	"github.com/danielhkuo/ballot-desk/router"
	"github.com/danielhkuo/ballot-desk/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var err error

	// Load .env before reading flags so its values act as env fallbacks
	if err := cliparse.LoadDotEnv(".env"); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	issuer, err := auth.NewIssuer(cfg.AdminSecret, auth.DefaultTokenTTL)
	if err != nil {
		slog.Error("admin token setup failed", "error", err)
		os.Exit(1)
	}

	// Print an admin token and exit
	if cfg.IssueToken != "" {
		token, err := issuer.Issue(cfg.IssueToken)
		if err != nil {
			slog.Error("failed to issue admin token", "error", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	ctx := context.Background()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("store setup failed", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	tree, err := geo.Load(cfg.GeoDataPath)
	if err != nil {
		slog.Error("location data failed to load", "path", cfg.GeoDataPath, "error", err)
		os.Exit(1)
	}
	slog.Info("Location data ready", "provinces", len(tree.Provinces()))

	// Metrics
	reg := prometheus.NewRegistry()
	m := metrics.New()
	if err := m.Register(reg); err != nil {
		slog.Error("metrics registration failed", "error", err)
		os.Exit(1)
	}

	recorder := audit.NewRecorder(st, nil, m.AuditFailures)

	// Keep the stored status labels current for listings
	ticker := election.StartTicker(election.SystemClock, cfg.StatusInterval, func(now time.Time) {
		changed, err := election.SyncStatuses(ctx, st, now)
		if err != nil {
			slog.Error("status sync failed", "error", err)
		}
		for _, tr := range changed {
			m.StatusTransitions.WithLabelValues(tr.To).Inc()
			slog.Info("election status changed", "election_id", tr.ElectionID, "from", tr.From, "to", tr.To)
		}
	})

	svc := handlers.Services{
		Store:   st,
		Geo:     tree,
		Clock:   election.SystemClock,
		Audit:   recorder,
		Metrics: m,
		Config:  cfg,
	}
	limiter := middleware.NewRateLimiter(cfg.VoteRatePerSec, cfg.VoteRateBurst).TrustProxies(cfg.TrustedProxies...)

	// Create router
	mux := router.NewRouter(svc, issuer, limiter, reg)

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(m.Instrument(mux)),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "store", cfg.DatabaseType)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}

	ticker.Stop()
	recorder.Close()
}

// recordStore is what the server needs from its backing store.
type recordStore interface {
	handlers.Store
	election.StatusStore
}

// openStore connects the configured backend. The returned func releases it.
func openStore(ctx context.Context, cfg cliparse.Config) (recordStore, func(), error) {
	if cfg.DatabaseType == db.TypeMemory {
		slog.Warn("Using in-memory store; data is lost on exit")
		return store.NewMemory(), func() {}, nil
	}

	dbConn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		dbConn.Close()
		return nil, nil, fmt.Errorf("schema creation failed: %w", err)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	return store.NewSQL(dbConn), func() { dbConn.Close() }, nil
}
