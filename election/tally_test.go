// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"strconv"
	"testing"

	"github.com/danielhkuo/ballot-desk/models"
)

func votesFor(ids ...string) []models.Vote {
	votes := make([]models.Vote, len(ids))
	for i, id := range ids {
		votes[i] = models.Vote{ID: "v" + strconv.Itoa(i), VoterID: strconv.Itoa(1000000000 + i), CandidateID: id}
	}
	return votes
}

func candidates(ids ...string) []models.Candidate {
	cs := make([]models.Candidate, len(ids))
	for i, id := range ids {
		cs[i] = models.Candidate{ID: id, Name: "Candidate " + id, Approved: true}
	}
	return cs
}

func TestTally(t *testing.T) {
	got := Tally(votesFor("A", "A", "B", "C", "A"), candidates("A", "B", "C", "D"))

	want := []struct {
		id    string
		votes int
	}{{"A", 3}, {"B", 1}, {"C", 1}, {"D", 0}}

	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Candidate.ID != w.id || got[i].Votes != w.votes {
			t.Errorf("row %d = (%s,%d), want (%s,%d)", i, got[i].Candidate.ID, got[i].Votes, w.id, w.votes)
		}
	}
}

func TestTallyKeepsStoreOrderForTies(t *testing.T) {
	got := Tally(votesFor("C", "B", "D", "D"), candidates("B", "C", "A", "D"))

	order := []string{"D", "B", "C", "A"}
	for i, id := range order {
		if got[i].Candidate.ID != id {
			t.Errorf("position %d = %s, want %s", i, got[i].Candidate.ID, id)
		}
	}
}

func TestTallyDropsStrayVotes(t *testing.T) {
	got := Tally(votesFor("A", "ghost", "ghost", "ghost"), candidates("A", "B"))

	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	for _, row := range got {
		if row.Candidate.ID == "ghost" {
			t.Error("stray votes produced a ghost candidate row")
		}
	}
	if got[0].Candidate.ID != "A" || got[0].Votes != 1 {
		t.Errorf("top row = (%s,%d), want (A,1)", got[0].Candidate.ID, got[0].Votes)
	}
	if Counted(got) != 1 {
		t.Errorf("Counted() = %d, want 1", Counted(got))
	}
}

func TestTallyEmpty(t *testing.T) {
	if got := Tally(nil, nil); len(got) != 0 {
		t.Errorf("Tally(nil, nil) = %v, want empty", got)
	}
	got := Tally(nil, candidates("A", "B"))
	if len(got) != 2 || got[0].Votes != 0 || got[1].Votes != 0 {
		t.Errorf("zero-vote tally = %+v", got)
	}
}

func TestWinners(t *testing.T) {
	tests := []struct {
		name  string
		votes []string
		want  []string
	}{
		{"single winner", []string{"A", "A", "B"}, []string{"A"}},
		{"tie", []string{"A", "B"}, []string{"A", "B"}},
		{"no votes", nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Winners(Tally(votesFor(tt.votes...), candidates("A", "B", "C")))
			if len(got) != len(tt.want) {
				t.Fatalf("Winners() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Winners()[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTurnout(t *testing.T) {
	tests := []struct {
		votes, voters int
		want          float64
	}{
		{0, 0, 0},
		{5, 0, 0},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{3, 3, 100},
		{7, 8, 87.5},
	}
	for _, tt := range tests {
		if got := Turnout(tt.votes, tt.voters); got != tt.want {
			t.Errorf("Turnout(%d, %d) = %v, want %v", tt.votes, tt.voters, got, tt.want)
		}
	}
}
