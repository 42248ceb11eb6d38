// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package store persists elections, voters, candidates, votes and the audit
// log.
//
// SQL works over any database/sql handle opened by package db; Memory keeps
// everything in process. Both return errors from the election package's
// taxonomy: misses are NotFound, a second ballot from the same voter is
// DuplicateVote, and any other driver failure is StoreError carrying the
// driver's message unchanged. Uniqueness violations also match ErrDuplicate.
package store

import "github.com/danielhkuo/ballot-desk/election"

var (
	_ election.StatusStore = (*SQL)(nil)
	_ election.StatusStore = (*Memory)(nil)
	_ election.VoterFinder = (*SQL)(nil)
	_ election.VoterFinder = (*Memory)(nil)
)
