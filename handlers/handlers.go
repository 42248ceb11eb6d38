// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/ballot-desk/cliparse"
	"github.com/danielhkuo/ballot-desk/election"
	"github.com/danielhkuo/ballot-desk/geo"
	"github.com/danielhkuo/ballot-desk/metrics"
	"github.com/danielhkuo/ballot-desk/middleware"
	"github.com/danielhkuo/ballot-desk/models"
)

// Store is the record store the handlers work against. store.SQL and
// store.Memory both satisfy it.
type Store interface {
	InsertElection(ctx context.Context, e models.Election) error
	GetElection(ctx context.Context, id string) (models.Election, error)
	ListElections(ctx context.Context) ([]models.Election, error)
	SetElectionStatus(ctx context.Context, id, status string) error
	SetResultPublished(ctx context.Context, id string, published bool) error
	DeleteElection(ctx context.Context, id string) error

	InsertVoter(ctx context.Context, v models.Voter) error
	GetVoter(ctx context.Context, id string) (models.Voter, error)
	FindVoter(ctx context.Context, electionID, voterID string) (models.Voter, error)
	ListVoters(ctx context.Context, f models.VoterFilter) ([]models.Voter, error)
	SetVoterApproved(ctx context.Context, id string, approved bool) error
	DeleteVoters(ctx context.Context, ids []string) (int, error)

	InsertCandidate(ctx context.Context, c models.Candidate) error
	GetCandidate(ctx context.Context, id string) (models.Candidate, error)
	ListCandidates(ctx context.Context, f models.CandidateFilter) ([]models.Candidate, error)
	SetCandidateApproved(ctx context.Context, id string, approved bool) error
	DeleteCandidates(ctx context.Context, ids []string) (int, error)

	InsertVote(ctx context.Context, v models.Vote) error
	ListVotes(ctx context.Context, electionID string) ([]models.Vote, error)
	DeleteVotes(ctx context.Context, ids []string) (int, error)

	InsertAudit(ctx context.Context, a models.AuditEntry) error
	ListAudit(ctx context.Context, limit int) ([]models.AuditEntry, error)
}

// Auditor records admin actions. audit.Recorder satisfies it.
type Auditor interface {
	Record(ctx context.Context, action, entityType, entityID string, details any)
}

// Services bundles the dependencies shared by every handler.
type Services struct {
	Store   Store
	Geo     *geo.Tree
	Clock   election.Clock
	Audit   Auditor
	Metrics *metrics.Metrics
	Config  cliparse.Config

	// VoterIDs generates candidate voter ids. Nil uses election.GenerateVoterID.
	VoterIDs func() (string, error)
}

func (s Services) now() time.Time {
	if s.Clock == nil {
		return election.SystemClock.Now()
	}
	return s.Clock.Now()
}

func (s Services) newVoterID() (string, error) {
	if s.VoterIDs == nil {
		return election.GenerateVoterID()
	}
	return s.VoterIDs()
}

func (s Services) voterIDAttempts() int {
	if s.Config.VoterIDAttempts < 1 {
		return cliparse.DefaultVoterIDAttempts
	}
	return s.Config.VoterIDAttempts
}

// loadElection fetches the election named by the {id} path value and
// evaluates its lifecycle. On failure the response has been written.
func (s Services) loadElection(w http.ResponseWriter, r *http.Request) (models.Election, election.Lifecycle, bool) {
	e, err := s.Store.GetElection(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return models.Election{}, election.Lifecycle{}, false
	}
	lc, err := election.DeriveStatus(e, s.now())
	if err != nil {
		writeError(w, err)
		return models.Election{}, election.Lifecycle{}, false
	}
	return e, lc, true
}

// writeError maps the error taxonomy onto HTTP statuses. User-facing kinds
// carry their message; internal failures are logged.
func writeError(w http.ResponseWriter, err error) {
	switch election.KindOf(err) {
	case election.InvalidInput:
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case election.InvalidSchedule:
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
	case election.NotFound:
		middleware.ErrorResponse(w, http.StatusNotFound, err.Error())
	case election.DuplicateVote:
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
	case election.InvalidRecord:
		slog.Error("invalid stored record", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
	case election.StoreError:
		slog.Error("store operation failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
	default:
		slog.Error("unexpected error", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}

// Pagination
const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// maxPage keeps (page-1)*perPage inside int.
const maxPage = math.MaxInt / maxPerPage

// parsePage reads page and per_page. per_page is capped at maxPerPage.
func parsePage(r *http.Request) (page, perPage int, err error) {
	page, perPage = 1, defaultPerPage
	if v := r.URL.Query().Get("page"); v != "" {
		page, err = strconv.Atoi(v)
		if err != nil || page < 1 {
			return 0, 0, election.Errorf(election.InvalidInput, "page must be a positive integer")
		}
		if page > maxPage {
			return 0, 0, election.Errorf(election.InvalidInput, "page must be at most %d", maxPage)
		}
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		perPage, err = strconv.Atoi(v)
		if err != nil || perPage < 1 {
			return 0, 0, election.Errorf(election.InvalidInput, "per_page must be a positive integer")
		}
	}
	return page, min(perPage, maxPerPage), nil
}

// paginate slices items for the requested page. Pages past the end are
// empty rather than an error.
func paginate[T any](items []T, page, perPage int) models.Page[T] {
	total := len(items)
	p := models.Page[T]{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
		Items:      []T{},
	}
	if page-1 >= p.TotalPages {
		return p
	}
	start := (page - 1) * perPage
	end := min(start+perPage, total)
	p.Items = items[start:end]
	return p
}

// parseApproved reads the optional approved filter.
func parseApproved(r *http.Request) (*bool, error) {
	v := r.URL.Query().Get("approved")
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, election.Errorf(election.InvalidInput, "approved must be true or false")
	}
	return &b, nil
}

// uniqueIDs trims, drops blanks and removes repeats, keeping order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
