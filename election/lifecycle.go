// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"strings"
	"time"

	"github.com/danielhkuo/ballot-desk/models"
)

// Status is the derived three-way election state.
type Status int

const (
	Upcoming Status = iota
	Active
	Ended
)

func (s Status) String() string {
	switch s {
	case Active:
		return models.StatusActive
	case Ended:
		return models.StatusEnded
	default:
		return models.StatusUpcoming
	}
}

// Clock supplies the current time so lifecycle checks can be tested.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
var SystemClock Clock = systemClock{}

// Schedule is the parsed form of an election's three timestamps.
type Schedule struct {
	Start         time.Time
	NominationEnd time.Time
	VotingEnd     time.Time
}

// Lifecycle is everything the surrounding system gates on, evaluated at one
// instant.
type Lifecycle struct {
	Status Status
	At     time.Time

	NominationOpen     bool
	RegistrationOpen   bool
	VotingOpen         bool
	ResultsVisible     bool
	ResultsPublishable bool
	ScheduleEditable   bool
}

// View converts the lifecycle into its JSON shape.
func (l Lifecycle) View() models.LifecycleView {
	return models.LifecycleView{
		Status:             l.Status.String(),
		NominationOpen:     l.NominationOpen,
		RegistrationOpen:   l.RegistrationOpen,
		VotingOpen:         l.VotingOpen,
		ResultsVisible:     l.ResultsVisible,
		ResultsPublishable: l.ResultsPublishable,
		ScheduleEditable:   l.ScheduleEditable,
	}
}

// Layouts accepted for election and birth timestamps, most specific first.
// Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses s using the accepted layouts.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ScheduleOf parses the persisted timestamps of e. Any unparseable field is
// an InvalidRecord error; the schedule ordering is not checked here.
func ScheduleOf(e models.Election) (Schedule, error) {
	var s Schedule
	fields := []struct {
		name  string
		value string
		dst   *time.Time
	}{
		{"start_date", e.StartDate, &s.Start},
		{"nomination_end", e.NominationEnd, &s.NominationEnd},
		{"voting_end", e.VotingEnd, &s.VotingEnd},
	}
	for _, f := range fields {
		t, ok := ParseTimestamp(f.value)
		if !ok {
			return Schedule{}, Errorf(InvalidRecord, "election %s has unparseable %s %q", e.ID, f.name, f.value)
		}
		*f.dst = t
	}
	return s, nil
}

// Evaluate derives the lifecycle of a parsed schedule at now.
// Voting is open on the closed interval [Start, VotingEnd].
func (s Schedule) Evaluate(now time.Time, resultPublished bool) Lifecycle {
	status := Upcoming
	switch {
	case now.After(s.VotingEnd):
		status = Ended
	case !now.Before(s.Start):
		status = Active
	}

	return Lifecycle{
		Status:             status,
		At:                 now,
		NominationOpen:     now.Before(s.NominationEnd),
		RegistrationOpen:   status != Ended,
		VotingOpen:         status == Active,
		ResultsVisible:     status == Ended,
		ResultsPublishable: status == Ended && !resultPublished,
		ScheduleEditable:   status == Upcoming,
	}
}

// DeriveStatus evaluates e at now. It does not validate the schedule
// ordering; that happens once at creation.
func DeriveStatus(e models.Election, now time.Time) (Lifecycle, error) {
	s, err := ScheduleOf(e)
	if err != nil {
		return Lifecycle{}, err
	}
	return s.Evaluate(now, e.ResultPublished), nil
}
