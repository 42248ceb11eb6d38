// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"strings"
	"time"

	"github.com/danielhkuo/ballot-desk/models"
)

// ValidateNewElection gates election creation and returns the record to
// insert, with timestamps normalized to RFC3339 UTC. The caller assigns ID
// and CreatedAt.
func ValidateNewElection(name, start, nominationEnd, votingEnd string) (models.Election, error) {
	name = strings.TrimSpace(name)
	required := []struct{ field, value string }{
		{"name", name},
		{"start_date", start},
		{"nomination_end", nominationEnd},
		{"voting_end", votingEnd},
	}
	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.field)
		}
	}
	if len(missing) > 0 {
		return models.Election{}, Errorf(InvalidInput, "%s required", strings.Join(missing, ", "))
	}

	var s Schedule
	for _, f := range []struct {
		field, value string
		dst          *time.Time
	}{
		{"start_date", start, &s.Start},
		{"nomination_end", nominationEnd, &s.NominationEnd},
		{"voting_end", votingEnd, &s.VotingEnd},
	} {
		t, ok := ParseTimestamp(f.value)
		if !ok {
			return models.Election{}, Errorf(InvalidInput, "%s is not a valid date: %q", f.field, f.value)
		}
		*f.dst = t
	}

	// One combined check; the message still names each broken constraint.
	if !s.NominationEnd.Before(s.Start) || !s.VotingEnd.After(s.Start) {
		var broken []string
		if !s.NominationEnd.Before(s.Start) {
			broken = append(broken, "nomination_end must be before start_date")
		}
		if !s.VotingEnd.After(s.Start) {
			broken = append(broken, "voting_end must be after start_date")
		}
		return models.Election{}, Errorf(InvalidSchedule, "%s", strings.Join(broken, "; "))
	}

	return models.Election{
		Name:          name,
		StartDate:     s.Start.UTC().Format(time.RFC3339),
		NominationEnd: s.NominationEnd.UTC().Format(time.RFC3339),
		VotingEnd:     s.VotingEnd.UTC().Format(time.RFC3339),
		Status:        models.StatusUpcoming,
	}, nil
}
