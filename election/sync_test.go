// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"errors"
	"testing"

	"github.com/danielhkuo/ballot-desk/models"
)

type statusStoreStub struct {
	elections []models.Election
	updates   map[string]string
	failOn    string
}

func (s *statusStoreStub) ListElections(context.Context) ([]models.Election, error) {
	return s.elections, nil
}

func (s *statusStoreStub) SetElectionStatus(_ context.Context, id, status string) error {
	if id == s.failOn {
		return errors.New("write failed")
	}
	if s.updates == nil {
		s.updates = map[string]string{}
	}
	s.updates[id] = status
	return nil
}

func TestSyncStatuses(t *testing.T) {
	current := testElection()
	current.ID = "current"
	current.Status = models.StatusUpcoming

	unchanged := testElection()
	unchanged.ID = "unchanged"
	unchanged.Status = models.StatusActive

	broken := testElection()
	broken.ID = "broken"
	broken.VotingEnd = "garbage"

	st := &statusStoreStub{elections: []models.Election{current, unchanged, broken}}

	changed, err := SyncStatuses(context.Background(), st, testStart)
	if err != nil {
		t.Fatalf("SyncStatuses() error = %v", err)
	}
	if len(changed) != 1 || changed[0].ElectionID != "current" || changed[0].To != models.StatusActive {
		t.Errorf("changed = %+v, want only current -> active", changed)
	}
	if len(st.updates) != 1 || st.updates["current"] != models.StatusActive {
		t.Errorf("updates = %v", st.updates)
	}
}

func TestSyncStatusesWriteFailure(t *testing.T) {
	e := testElection()
	e.Status = models.StatusUpcoming
	st := &statusStoreStub{elections: []models.Election{e}, failOn: e.ID}

	if _, err := SyncStatuses(context.Background(), st, testEnd.Add(1)); err == nil {
		t.Error("expected error when the status update fails")
	}
}
