// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/ballot-desk/auth"
	"github.com/danielhkuo/ballot-desk/models"
)

type sinkStub struct {
	mu      sync.Mutex
	entries []models.AuditEntry
	err     error
}

func (s *sinkStub) InsertAudit(ctx context.Context, e models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, e)
	return nil
}

func quietLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}

func TestRecordWritesEntry(t *testing.T) {
	sink := &sinkStub{}
	var buf bytes.Buffer
	r := NewRecorder(sink, quietLogger(&buf), nil)

	ctx := auth.ContextWithAdmin(context.Background(), "officer")
	r.Record(ctx, ActionApproveVoter, models.EntityVoter, "v-1", map[string]any{"approved": true})
	r.Close()

	require.Len(t, sink.entries, 1)
	e := sink.entries[0]
	assert.Equal(t, ActionApproveVoter, e.Action)
	assert.Equal(t, models.EntityVoter, e.EntityType)
	require.NotNil(t, e.EntityID)
	assert.Equal(t, "v-1", *e.EntityID)
	assert.Equal(t, "officer", e.Admin)
	assert.JSONEq(t, `{"approved":true}`, string(e.Details))
	assert.Len(t, e.ID, 26, "ulid string")

	var logged map[string]any
	require.NoError(t, json.Unmarshal(bytes.SplitN(buf.Bytes(), []byte("\n"), 2)[0], &logged))
	assert.Equal(t, "audit", logged["msg"])
	assert.Equal(t, "officer", logged["admin"])
}

func TestRecordDefaults(t *testing.T) {
	sink := &sinkStub{}
	var buf bytes.Buffer
	r := NewRecorder(sink, quietLogger(&buf), nil)

	r.Record(context.Background(), ActionDeleteVote, models.EntityVote, "", nil)
	r.Close()

	require.Len(t, sink.entries, 1)
	assert.Nil(t, sink.entries[0].EntityID)
	assert.Equal(t, unknownAdmin, sink.entries[0].Admin)
	assert.JSONEq(t, `{}`, string(sink.entries[0].Details))
}

func TestRecordSurvivesCancelledRequest(t *testing.T) {
	sink := &sinkStub{}
	var buf bytes.Buffer
	r := NewRecorder(sink, quietLogger(&buf), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Record(ctx, ActionPublishResult, models.EntityElection, "e-1", nil)
	r.Close()

	assert.Len(t, sink.entries, 1)
}

func TestRecordFailureIsCounted(t *testing.T) {
	sink := &sinkStub{err: errors.New("disk full")}
	var buf bytes.Buffer
	failures := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_audit_failures_total"})
	r := NewRecorder(sink, quietLogger(&buf), failures)

	r.Record(context.Background(), ActionDeleteVoter, models.EntityVoter, "v-1", nil)
	r.Record(context.Background(), ActionDeleteVoter, models.EntityVoter, "v-2", func() {})
	r.Close()

	// v-2 fails twice: its details cannot be encoded and the write fails.
	assert.Equal(t, float64(3), testutil.ToFloat64(failures))
	assert.Contains(t, buf.String(), "disk full")
}

func TestRecordAfterCloseIsDropped(t *testing.T) {
	sink := &sinkStub{}
	var buf bytes.Buffer
	r := NewRecorder(sink, quietLogger(&buf), nil)
	r.Close()

	r.Record(context.Background(), ActionCreateElection, models.EntityElection, "e-1", nil)
	r.Close()

	assert.Empty(t, sink.entries)
}

func TestIDsAreUniqueAndOrdered(t *testing.T) {
	sink := &sinkStub{}
	var buf bytes.Buffer
	r := NewRecorder(sink, quietLogger(&buf), nil)

	for i := 0; i < 100; i++ {
		r.Record(context.Background(), ActionApproveCandidate, models.EntityCandidate, "c", nil)
	}
	r.Close()

	ids := make(map[string]bool)
	for _, e := range sink.entries {
		ids[e.ID] = true
	}
	assert.Len(t, ids, 100)

	now := time.Now()
	first, second := r.newID(now), r.newID(now)
	assert.Greater(t, second, first)
}
