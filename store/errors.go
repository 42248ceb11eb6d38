// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/ballot-desk/election"
)

// ErrDuplicate matches any uniqueness violation reported by the store,
// whichever driver produced it.
var ErrDuplicate = errors.New("duplicate key")

const uniqueViolation = "23505"

// duplicateError keeps the driver error as the cause and the message, and
// matches ErrDuplicate.
type duplicateError struct{ cause error }

func (e duplicateError) Error() string        { return e.cause.Error() }
func (e duplicateError) Unwrap() error        { return e.cause }
func (e duplicateError) Is(target error) bool { return target == ErrDuplicate }

// IsUniqueViolation recognizes unique constraint failures from lib/pq, pgx
// and modernc sqlite, falling back to the message text.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicate) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}

	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}

// classify converts a driver error into the error taxonomy. notFound is
// used as the message for sql.ErrNoRows.
func classify(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return election.Errorf(election.NotFound, "%s", notFound)
	case IsUniqueViolation(err):
		return election.Wrap(election.StoreError, duplicateError{err})
	default:
		return election.Wrap(election.StoreError, err)
	}
}

// duplicateVote is the error for a second vote by the same voter.
func duplicateVote(cause error) error {
	return &election.Error{
		Kind: election.DuplicateVote,
		Msg:  "You have already voted in this election.",
		Err:  duplicateError{cause},
	}
}
