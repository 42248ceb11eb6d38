// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/ballot-desk/models"
)

// StatusStore is the slice of the record store the status sync needs.
type StatusStore interface {
	ListElections(ctx context.Context) ([]models.Election, error)
	SetElectionStatus(ctx context.Context, id, status string) error
}

// Transition describes one refreshed status label.
type Transition struct {
	ElectionID string
	From       string
	To         string
}

// SyncStatuses refreshes the informational status label of every election
// whose derived status changed. Elections with unparseable timestamps are
// logged and skipped so one bad row does not stall the rest.
func SyncStatuses(ctx context.Context, st StatusStore, now time.Time) ([]Transition, error) {
	elections, err := st.ListElections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list elections: %w", err)
	}

	var changed []Transition
	for _, e := range elections {
		lc, err := DeriveStatus(e, now)
		if err != nil {
			slog.Warn("skipping election with invalid schedule", "election_id", e.ID, "error", err)
			continue
		}
		label := lc.Status.String()
		if label == e.Status {
			continue
		}
		if err := st.SetElectionStatus(ctx, e.ID, label); err != nil {
			return changed, fmt.Errorf("failed to update status of election %s: %w", e.ID, err)
		}
		changed = append(changed, Transition{ElectionID: e.ID, From: e.Status, To: label})
	}
	return changed, nil
}
