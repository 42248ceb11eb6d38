// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/danielhkuo/ballot-desk/election"
	"github.com/danielhkuo/ballot-desk/models"
)

// Memory is an in-process record store with the same ordering and
// uniqueness rules as SQL. It backs DATABASE_TYPE=memory and the handler
// tests.
type Memory struct {
	mu         sync.RWMutex
	elections  map[string]models.Election
	voters     map[string]models.Voter
	candidates map[string]models.Candidate
	votes      map[string]models.Vote
	audit      []models.AuditEntry
}

func NewMemory() *Memory {
	return &Memory{
		elections:  make(map[string]models.Election),
		voters:     make(map[string]models.Voter),
		candidates: make(map[string]models.Candidate),
		votes:      make(map[string]models.Vote),
	}
}

func memDuplicate(constraint string) error {
	return election.Wrap(election.StoreError, duplicateError{errors.New("UNIQUE constraint failed: " + constraint)})
}

func notFound(msg string) error {
	return election.Errorf(election.NotFound, "%s", msg)
}

// Elections

func (m *Memory) InsertElection(_ context.Context, e models.Election) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.elections[e.ID]; ok {
		return memDuplicate("elections.id")
	}
	m.elections[e.ID] = e
	return nil
}

func (m *Memory) GetElection(_ context.Context, id string) (models.Election, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.elections[id]
	if !ok {
		return models.Election{}, notFound("election not found")
	}
	return e, nil
}

func (m *Memory) ListElections(_ context.Context) ([]models.Election, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Election, 0, len(m.elections))
	for _, e := range m.elections {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *Memory) SetElectionStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.elections[id]
	if !ok {
		return notFound("election not found")
	}
	e.Status = status
	m.elections[id] = e
	return nil
}

func (m *Memory) SetResultPublished(_ context.Context, id string, published bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.elections[id]
	if !ok {
		return notFound("election not found")
	}
	e.ResultPublished = published
	m.elections[id] = e
	return nil
}

func (m *Memory) DeleteElection(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.elections[id]; !ok {
		return notFound("election not found")
	}
	for k, v := range m.votes {
		if v.ElectionID == id {
			delete(m.votes, k)
		}
	}
	for k, c := range m.candidates {
		if c.ElectionID == id {
			delete(m.candidates, k)
		}
	}
	for k, v := range m.voters {
		if v.ElectionID == id {
			delete(m.voters, k)
		}
	}
	delete(m.elections, id)
	return nil
}

// Voters

func (m *Memory) InsertVoter(_ context.Context, v models.Voter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.voters[v.ID]; ok {
		return memDuplicate("voters.id")
	}
	for _, existing := range m.voters {
		if existing.ElectionID == v.ElectionID && existing.VoterID == v.VoterID {
			return memDuplicate("voters.election_id, voters.voter_id")
		}
	}
	m.voters[v.ID] = v
	return nil
}

func (m *Memory) GetVoter(_ context.Context, id string) (models.Voter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.voters[id]
	if !ok {
		return models.Voter{}, notFound("voter not found")
	}
	return v, nil
}

func (m *Memory) FindVoter(_ context.Context, electionID, voterID string) (models.Voter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.voters {
		if v.ElectionID == electionID && v.VoterID == voterID {
			return v, nil
		}
	}
	return models.Voter{}, notFound("Voter ID not found.")
}

func (m *Memory) ListVoters(_ context.Context, f models.VoterFilter) ([]models.Voter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Voter{}
	for _, v := range m.voters {
		if v.ElectionID != f.ElectionID {
			continue
		}
		if f.Approved != nil && v.Approved != *f.Approved {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) SetVoterApproved(_ context.Context, id string, approved bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.voters[id]
	if !ok {
		return notFound("voter not found")
	}
	v.Approved = approved
	m.voters[id] = v
	return nil
}

func (m *Memory) DeleteVoters(_ context.Context, ids []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, id := range ids {
		if _, ok := m.voters[id]; ok {
			delete(m.voters, id)
			n++
		}
	}
	return n, nil
}

// Candidates

func (m *Memory) InsertCandidate(_ context.Context, c models.Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.candidates[c.ID]; ok {
		return memDuplicate("candidates.id")
	}
	m.candidates[c.ID] = c
	return nil
}

func (m *Memory) GetCandidate(_ context.Context, id string) (models.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.candidates[id]
	if !ok {
		return models.Candidate{}, notFound("candidate not found")
	}
	return c, nil
}

func (m *Memory) ListCandidates(_ context.Context, f models.CandidateFilter) ([]models.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Candidate{}
	for _, c := range m.candidates {
		if c.ElectionID != f.ElectionID {
			continue
		}
		if f.Approved != nil && c.Approved != *f.Approved {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) SetCandidateApproved(_ context.Context, id string, approved bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.candidates[id]
	if !ok {
		return notFound("candidate not found")
	}
	c.Approved = approved
	m.candidates[id] = c
	return nil
}

func (m *Memory) DeleteCandidates(_ context.Context, ids []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, id := range ids {
		if _, ok := m.candidates[id]; ok {
			delete(m.candidates, id)
			n++
		}
	}
	return n, nil
}

// Votes

func (m *Memory) InsertVote(_ context.Context, v models.Vote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.votes[v.ID]; ok {
		return memDuplicate("votes.id")
	}
	for _, existing := range m.votes {
		if existing.ElectionID == v.ElectionID && existing.VoterID == v.VoterID {
			return duplicateVote(errors.New("UNIQUE constraint failed: votes.election_id, votes.voter_id"))
		}
	}
	m.votes[v.ID] = v
	return nil
}

func (m *Memory) ListVotes(_ context.Context, electionID string) ([]models.Vote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Vote{}
	for _, v := range m.votes {
		if v.ElectionID == electionID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) DeleteVotes(_ context.Context, ids []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, id := range ids {
		if _, ok := m.votes[id]; ok {
			delete(m.votes, id)
			n++
		}
	}
	return n, nil
}

// Audit log

func (m *Memory) InsertAudit(_ context.Context, a models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(a.Details) == 0 {
		a.Details = []byte(`{}`)
	}
	m.audit = append(m.audit, a)
	return nil
}

func (m *Memory) ListAudit(_ context.Context, limit int) ([]models.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.AuditEntry, len(m.audit))
	copy(out, m.audit)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
