// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package audit records admin actions without blocking or failing the
// request that triggered them.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	mathrand "math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielhkuo/ballot-desk/auth"
	"github.com/danielhkuo/ballot-desk/models"
)

// Admin actions.
const (
	ActionCreateElection     = "create_election"
	ActionDeleteElection     = "delete_election"
	ActionPublishResult      = "publish_result"
	ActionApproveVoter       = "approve_voter"
	ActionUnapproveVoter     = "unapprove_voter"
	ActionDeleteVoter        = "delete_voter"
	ActionApproveCandidate   = "approve_candidate"
	ActionUnapproveCandidate = "unapprove_candidate"
	ActionDeleteCandidate    = "delete_candidate"
	ActionDeleteVote         = "delete_vote"
)

// unknownAdmin is stored when no identity is attached to the request.
const unknownAdmin = "system"

const writeTimeout = 5 * time.Second

// Sink persists audit entries.
type Sink interface {
	InsertAudit(ctx context.Context, entry models.AuditEntry) error
}

// Recorder writes entries to a Sink in the background. Failures are logged
// and counted, never returned.
type Recorder struct {
	sink     Sink
	logger   *slog.Logger
	failures prometheus.Counter

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup

	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy
}

// NewRecorder returns a Recorder. A nil logger uses slog.Default and a nil
// failures counter disables counting.
func NewRecorder(sink Sink, logger *slog.Logger, failures prometheus.Counter) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		sink:     sink,
		logger:   logger,
		failures: failures,
		entropy:  ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0),
	}
}

func (r *Recorder) newID(now time.Time) string {
	r.entropyMu.Lock()
	defer r.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), r.entropy).String()
}

// Record builds an entry for the admin on ctx and writes it asynchronously.
// An empty entityID is stored as NULL; details is marshaled to JSON.
func (r *Recorder) Record(ctx context.Context, action, entityType, entityID string, details any) {
	now := time.Now().UTC()
	entry := models.AuditEntry{
		ID:         r.newID(now),
		Action:     strings.TrimSpace(action),
		EntityType: entityType,
		Admin:      unknownAdmin,
		CreatedAt:  now,
		Details:    json.RawMessage(`{}`),
	}
	if admin, ok := auth.AdminFromContext(ctx); ok {
		entry.Admin = admin
	}
	if entityID != "" {
		id := entityID
		entry.EntityID = &id
	}
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			r.fail("failed to encode audit details", entry, err)
		} else {
			entry.Details = data
		}
	}

	r.logger.Info("audit",
		"action", entry.Action,
		"entity_type", entry.EntityType,
		"entity_id", entityID,
		"admin", entry.Admin,
		"details", string(entry.Details),
	)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.logger.Warn("audit recorder closed, dropping entry", "action", entry.Action)
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	// The request context is usually cancelled once the response is written.
	writeCtx := context.WithoutCancel(ctx)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
		defer cancel()
		if err := r.sink.InsertAudit(ctx, entry); err != nil {
			r.fail("failed to write audit entry", entry, err)
		}
	}()
}

func (r *Recorder) fail(msg string, entry models.AuditEntry, err error) {
	r.logger.Error(msg, "action", entry.Action, "error", err)
	if r.failures != nil {
		r.failures.Inc()
	}
}

// Close waits for in-flight writes. Entries recorded afterwards are
// dropped.
func (r *Recorder) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.wg.Wait()
}
