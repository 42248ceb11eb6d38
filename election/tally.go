// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"math"
	"sort"

	"github.com/danielhkuo/ballot-desk/models"
)

// CandidateTally is one row of a ranked result.
type CandidateTally struct {
	Candidate models.Candidate
	Votes     int
}

// Tally counts votes per approved candidate and ranks them by count,
// highest first. Equal counts keep the order of approved.
//
// Votes for a candidate outside approved (unapproved or deleted) are
// counted under their own key and then dropped: no ghost rows are shown and
// they never add to a displayed candidate.
func Tally(votes []models.Vote, approved []models.Candidate) []CandidateTally {
	counts := make(map[string]int, len(approved))
	for _, v := range votes {
		counts[v.CandidateID]++
	}

	rows := make([]CandidateTally, 0, len(approved))
	for _, c := range approved {
		rows = append(rows, CandidateTally{Candidate: c, Votes: counts[c.ID]})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Votes > rows[j].Votes
	})
	return rows
}

// Winners returns the ids of every candidate sharing the top count. An
// election where nobody received a vote has no winner.
func Winners(rows []CandidateTally) []string {
	if len(rows) == 0 || rows[0].Votes == 0 {
		return []string{}
	}
	top := rows[0].Votes
	var ids []string
	for _, r := range rows {
		if r.Votes != top {
			break
		}
		ids = append(ids, r.Candidate.ID)
	}
	return ids
}

// Counted sums the votes across rows, which excludes dropped stray votes.
func Counted(rows []CandidateTally) int {
	total := 0
	for _, r := range rows {
		total += r.Votes
	}
	return total
}

// Turnout is voteCount/voterCount as a percentage rounded to two decimals,
// and 0 when there are no voters.
func Turnout(voteCount, voterCount int) float64 {
	if voterCount <= 0 {
		return 0
	}
	pct := float64(voteCount) / float64(voterCount) * 100
	return math.Round(pct*100) / 100
}
