// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/danielhkuo/ballot-desk/election"
	"github.com/danielhkuo/ballot-desk/models"
)

// SQL is the record store over database/sql. Queries use $N placeholders,
// which both PostgreSQL drivers and modernc sqlite accept.
type SQL struct {
	db *sql.DB
}

func NewSQL(db *sql.DB) *SQL {
	return &SQL{db: db}
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// timeLayout is fixed width so created_at text sorts in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, ok := election.ParseTimestamp(s)
	if !ok {
		return time.Time{}, election.Errorf(election.InvalidRecord, "invalid stored timestamp %q", s)
	}
	return t, nil
}

// placeholders returns "$start, $start+1, ..." for n arguments.
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}

func stringArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// affected turns a zero-row update into NotFound.
func affected(res sql.Result, notFound string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return election.Wrap(election.StoreError, err)
	}
	if n == 0 {
		return election.Errorf(election.NotFound, "%s", notFound)
	}
	return nil
}

// Elections

const electionColumns = `id, name, start_date, nomination_end, voting_end, status, result_published, created_at`

func scanElection(row scanner) (models.Election, error) {
	var e models.Election
	var createdAt string
	if err := row.Scan(&e.ID, &e.Name, &e.StartDate, &e.NominationEnd, &e.VotingEnd,
		&e.Status, &e.ResultPublished, &createdAt); err != nil {
		return e, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return e, err
	}
	e.CreatedAt = t
	return e, nil
}

func (s *SQL) InsertElection(ctx context.Context, e models.Election) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO elections (`+electionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, e.ID, e.Name, e.StartDate, e.NominationEnd, e.VotingEnd, e.Status, e.ResultPublished, formatTime(e.CreatedAt))
	return classify(err, "election not found")
}

func (s *SQL) GetElection(ctx context.Context, id string) (models.Election, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+electionColumns+` FROM elections WHERE id = $1`, id)
	e, err := scanElection(row)
	if err != nil {
		return models.Election{}, classifyScan(err, "election not found")
	}
	return e, nil
}

// ListElections returns every election, newest first.
func (s *SQL) ListElections(ctx context.Context) ([]models.Election, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+electionColumns+` FROM elections ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, classify(err, "")
	}
	defer rows.Close()

	elections := []models.Election{}
	for rows.Next() {
		e, err := scanElection(rows)
		if err != nil {
			return nil, classifyScan(err, "")
		}
		elections = append(elections, e)
	}
	return elections, classify(rows.Err(), "")
}

func (s *SQL) SetElectionStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE elections SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return classify(err, "")
	}
	return affected(res, "election not found")
}

func (s *SQL) SetResultPublished(ctx context.Context, id string, published bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE elections SET result_published = $1 WHERE id = $2`, published, id)
	if err != nil {
		return classify(err, "")
	}
	return affected(res, "election not found")
}

// DeleteElection removes the election and every voter, candidate and vote
// belonging to it in one transaction.
func (s *SQL) DeleteElection(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err, "")
	}
	defer tx.Rollback()

	for _, table := range []string{"votes", "candidates", "voters"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE election_id = $1`, id); err != nil {
			return classify(err, "")
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM elections WHERE id = $1`, id)
	if err != nil {
		return classify(err, "")
	}
	if err := affected(res, "election not found"); err != nil {
		return err
	}
	return classify(tx.Commit(), "")
}

// Voters

const voterColumns = `id, voter_id, election_id, full_name, dob, citizenship_no, issue_date,
	province, district, municipality, local_area, approved, created_at`

func scanVoter(row scanner) (models.Voter, error) {
	var v models.Voter
	var createdAt string
	if err := row.Scan(&v.ID, &v.VoterID, &v.ElectionID, &v.FullName, &v.DOB, &v.CitizenshipNo, &v.IssueDate,
		&v.Location.Province, &v.Location.District, &v.Location.Municipality, &v.Location.LocalArea,
		&v.Approved, &createdAt); err != nil {
		return v, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return v, err
	}
	v.CreatedAt = t
	return v, nil
}

// InsertVoter stores a registration. A voter id already used in the same
// election fails with an error matching ErrDuplicate.
func (s *SQL) InsertVoter(ctx context.Context, v models.Voter) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO voters (`+voterColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, v.ID, v.VoterID, v.ElectionID, v.FullName, v.DOB, v.CitizenshipNo, v.IssueDate,
		v.Location.Province, v.Location.District, v.Location.Municipality, v.Location.LocalArea,
		v.Approved, formatTime(v.CreatedAt))
	return classify(err, "")
}

func (s *SQL) GetVoter(ctx context.Context, id string) (models.Voter, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+voterColumns+` FROM voters WHERE id = $1`, id)
	v, err := scanVoter(row)
	if err != nil {
		return models.Voter{}, classifyScan(err, "voter not found")
	}
	return v, nil
}

// FindVoter looks a voter up by the public voter id within one election.
func (s *SQL) FindVoter(ctx context.Context, electionID, voterID string) (models.Voter, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+voterColumns+` FROM voters WHERE election_id = $1 AND voter_id = $2`, electionID, voterID)
	v, err := scanVoter(row)
	if err != nil {
		return models.Voter{}, classifyScan(err, "Voter ID not found.")
	}
	return v, nil
}

func (s *SQL) ListVoters(ctx context.Context, f models.VoterFilter) ([]models.Voter, error) {
	query := `SELECT ` + voterColumns + ` FROM voters WHERE election_id = $1`
	args := []any{f.ElectionID}
	if f.Approved != nil {
		query += ` AND approved = $2`
		args = append(args, *f.Approved)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, "")
	}
	defer rows.Close()

	voters := []models.Voter{}
	for rows.Next() {
		v, err := scanVoter(rows)
		if err != nil {
			return nil, classifyScan(err, "")
		}
		voters = append(voters, v)
	}
	return voters, classify(rows.Err(), "")
}

func (s *SQL) SetVoterApproved(ctx context.Context, id string, approved bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE voters SET approved = $1 WHERE id = $2`, approved, id)
	if err != nil {
		return classify(err, "")
	}
	return affected(res, "voter not found")
}

// DeleteVoters removes the given voters and reports how many existed.
func (s *SQL) DeleteVoters(ctx context.Context, ids []string) (int, error) {
	return s.deleteIDs(ctx, "voters", ids)
}

// Candidates

const candidateColumns = `id, election_id, name, party, symbol, province, district, municipality,
	local_area, profile, approved, created_at`

func scanCandidate(row scanner) (models.Candidate, error) {
	var c models.Candidate
	var profile, createdAt string
	if err := row.Scan(&c.ID, &c.ElectionID, &c.Name, &c.Party, &c.Symbol,
		&c.Location.Province, &c.Location.District, &c.Location.Municipality, &c.Location.LocalArea,
		&profile, &c.Approved, &createdAt); err != nil {
		return c, err
	}
	if profile != "" {
		if err := json.Unmarshal([]byte(profile), &c.Profile); err != nil {
			return c, election.Errorf(election.InvalidRecord, "invalid stored candidate profile: %v", err)
		}
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return c, err
	}
	c.CreatedAt = t
	return c, nil
}

func (s *SQL) InsertCandidate(ctx context.Context, c models.Candidate) error {
	profile, err := json.Marshal(c.Profile)
	if err != nil {
		return election.Wrap(election.StoreError, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO candidates (`+candidateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, c.ID, c.ElectionID, c.Name, c.Party, c.Symbol,
		c.Location.Province, c.Location.District, c.Location.Municipality, c.Location.LocalArea,
		string(profile), c.Approved, formatTime(c.CreatedAt))
	return classify(err, "")
}

func (s *SQL) GetCandidate(ctx context.Context, id string) (models.Candidate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id)
	c, err := scanCandidate(row)
	if err != nil {
		return models.Candidate{}, classifyScan(err, "candidate not found")
	}
	return c, nil
}

// ListCandidates orders by name, then id. The tally relies on this order
// being stable.
func (s *SQL) ListCandidates(ctx context.Context, f models.CandidateFilter) ([]models.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE election_id = $1`
	args := []any{f.ElectionID}
	if f.Approved != nil {
		query += ` AND approved = $2`
		args = append(args, *f.Approved)
	}
	query += ` ORDER BY name, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, "")
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, classifyScan(err, "")
		}
		candidates = append(candidates, c)
	}
	return candidates, classify(rows.Err(), "")
}

func (s *SQL) SetCandidateApproved(ctx context.Context, id string, approved bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE candidates SET approved = $1 WHERE id = $2`, approved, id)
	if err != nil {
		return classify(err, "")
	}
	return affected(res, "candidate not found")
}

func (s *SQL) DeleteCandidates(ctx context.Context, ids []string) (int, error) {
	return s.deleteIDs(ctx, "candidates", ids)
}

// Votes

const voteColumns = `id, election_id, voter_id, candidate_id, created_at`

func scanVote(row scanner) (models.Vote, error) {
	var v models.Vote
	var createdAt string
	if err := row.Scan(&v.ID, &v.ElectionID, &v.VoterID, &v.CandidateID, &createdAt); err != nil {
		return v, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return v, err
	}
	v.CreatedAt = t
	return v, nil
}

// InsertVote records a ballot. The (election_id, voter_id) constraint is the
// only thing that decides between two concurrent ballots from one voter.
func (s *SQL) InsertVote(ctx context.Context, v models.Vote) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO votes (`+voteColumns+`)
		VALUES ($1, $2, $3, $4, $5)
	`, v.ID, v.ElectionID, v.VoterID, v.CandidateID, formatTime(v.CreatedAt))
	if IsUniqueViolation(err) {
		return duplicateVote(err)
	}
	return classify(err, "")
}

func (s *SQL) ListVotes(ctx context.Context, electionID string) ([]models.Vote, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+voteColumns+` FROM votes WHERE election_id = $1 ORDER BY created_at, id`, electionID)
	if err != nil {
		return nil, classify(err, "")
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		v, err := scanVote(rows)
		if err != nil {
			return nil, classifyScan(err, "")
		}
		votes = append(votes, v)
	}
	return votes, classify(rows.Err(), "")
}

func (s *SQL) DeleteVotes(ctx context.Context, ids []string) (int, error) {
	return s.deleteIDs(ctx, "votes", ids)
}

// Audit log

func (s *SQL) InsertAudit(ctx context.Context, a models.AuditEntry) error {
	details := a.Details
	if len(details) == 0 {
		details = json.RawMessage(`{}`)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, action, entity_type, entity_id, details, admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, a.Action, a.EntityType, a.EntityID, string(details), a.Admin, formatTime(a.CreatedAt))
	return classify(err, "")
}

// ListAudit returns up to limit entries, newest first. limit <= 0 means all.
func (s *SQL) ListAudit(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	query := `SELECT id, action, entity_type, entity_id, details, admin, created_at
		FROM audit_log ORDER BY created_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, "")
	}
	defer rows.Close()

	entries := []models.AuditEntry{}
	for rows.Next() {
		var a models.AuditEntry
		var entityID sql.NullString
		var details, createdAt string
		if err := rows.Scan(&a.ID, &a.Action, &a.EntityType, &entityID, &details, &a.Admin, &createdAt); err != nil {
			return nil, classify(err, "")
		}
		if entityID.Valid {
			id := entityID.String
			a.EntityID = &id
		}
		a.Details = json.RawMessage(details)
		t, err := parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		a.CreatedAt = t
		entries = append(entries, a)
	}
	return entries, classify(rows.Err(), "")
}

func (s *SQL) deleteIDs(ctx context.Context, table string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE id IN (`+placeholders(1, len(ids))+`)`, stringArgs(ids)...)
	if err != nil {
		return 0, classify(err, "")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, election.Wrap(election.StoreError, err)
	}
	return int(n), nil
}

// classifyScan passes through errors that are already tagged, such as a bad
// stored timestamp, and classifies the rest.
func classifyScan(err error, notFound string) error {
	if election.KindOf(err) != election.KindUnknown {
		return err
	}
	return classify(err, notFound)
}
