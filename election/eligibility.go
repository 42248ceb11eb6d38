// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/danielhkuo/ballot-desk/models"
)

// MinVotingAge is the minimum age in whole years.
const MinVotingAge = 18

// daysPerYear approximates a year. Ages computed this way can be off by one
// within a day of a birthday near leap years; that is accepted.
const daysPerYear = 365.25

// VoterIDLength is the exact length of a voter identifier.
const VoterIDLength = 10

// Verdict is the outcome of an eligibility check. Not being eligible is a
// normal result, not an error.
type Verdict struct {
	Eligible bool
	Age      int
	Reason   string
	Voter    models.Voter
}

// VoterFinder resolves a voter by exact voter id within one election.
// It returns an error matching ErrNotFound on a miss.
type VoterFinder interface {
	FindVoter(ctx context.Context, electionID, voterID string) (models.Voter, error)
}

// ValidateVoterID reports InvalidInput unless id is exactly ten ASCII digits.
func ValidateVoterID(id string) error {
	if len(id) != VoterIDLength {
		return Errorf(InvalidInput, "voter id must be exactly %d digits", VoterIDLength)
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return Errorf(InvalidInput, "voter id must be exactly %d digits", VoterIDLength)
		}
	}
	return nil
}

// AgeAt returns whole years elapsed between dob and now.
func AgeAt(dob, now time.Time) int {
	days := now.Sub(dob).Hours() / 24
	return int(math.Floor(days / daysPerYear))
}

// Eligibility evaluates an already-resolved voter record.
func Eligibility(v models.Voter, now time.Time) (Verdict, error) {
	dob, ok := ParseTimestamp(v.DOB)
	if !ok {
		return Verdict{}, Errorf(InvalidRecord, "voter %s has unparseable birth date %q", v.VoterID, v.DOB)
	}

	age := AgeAt(dob, now)
	verdict := Verdict{Age: age, Voter: v}
	switch {
	case age < MinVotingAge:
		verdict.Reason = "voter is under 18"
	case !v.Approved:
		verdict.Reason = "voter registration is not approved yet"
	default:
		verdict.Eligible = true
	}
	return verdict, nil
}

// CheckEligibility validates voterID, resolves it within electionID and
// evaluates the record.
func CheckEligibility(ctx context.Context, finder VoterFinder, electionID, voterID string, now time.Time) (Verdict, error) {
	if err := ValidateVoterID(voterID); err != nil {
		return Verdict{}, err
	}

	v, err := finder.FindVoter(ctx, electionID, voterID)
	if errors.Is(err, ErrNotFound) {
		return Verdict{}, Errorf(NotFound, "no voter with id %s is registered for this election", voterID)
	}
	if err != nil {
		return Verdict{}, err
	}
	return Eligibility(v, now)
}
