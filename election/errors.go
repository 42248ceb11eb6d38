// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the engine and its record store can report.
type Kind int

const (
	KindUnknown Kind = iota
	InvalidInput
	InvalidSchedule
	InvalidRecord
	NotFound
	DuplicateVote
	StoreError
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid input"
	case InvalidSchedule:
		return "invalid schedule"
	case InvalidRecord:
		return "invalid record"
	case NotFound:
		return "not found"
	case DuplicateVote:
		return "duplicate vote"
	case StoreError:
		return "store error"
	default:
		return "unknown error"
	}
}

// Error is the tagged error value returned across package boundaries.
// Msg is shown to end users as-is.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below work with
// errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Msg == "" && t.Err == nil
}

var (
	ErrInvalidInput    = &Error{Kind: InvalidInput}
	ErrInvalidSchedule = &Error{Kind: InvalidSchedule}
	ErrInvalidRecord   = &Error{Kind: InvalidRecord}
	ErrNotFound        = &Error{Kind: NotFound}
	ErrDuplicateVote   = &Error{Kind: DuplicateVote}
	ErrStore           = &Error{Kind: StoreError}
)

// Errorf builds an *Error of the given kind with a formatted message.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap tags a lower-level error. The original message is kept verbatim so it
// can be displayed unchanged.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: err.Error(), Err: err}
}

// KindOf reports the kind of err, or KindUnknown for untagged errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
