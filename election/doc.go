// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package election is the lifecycle and tally engine.

Everything here is a pure function of its inputs plus an injected clock;
no function touches storage directly. Callers pass records in and get
status, gating flags, verdicts, and ranked tallies back.

# Lifecycle

An election has three timestamps and is evaluated at an instant:

	upcoming   now < start
	active     start <= now <= voting_end
	ended      now > voting_end

Nomination is open strictly before nomination_end. The stored status
label is informational; DeriveStatus is authoritative.

	lc, err := election.DeriveStatus(e, clock.Now())
	if lc.VotingOpen { ... }

Because nothing pushes "time has passed" to a caller, StartTicker re-runs a
computation on an interval and SyncStatuses refreshes stored labels.

# Errors

All failures are *Error values tagged with a Kind (InvalidInput,
InvalidSchedule, InvalidRecord, NotFound, DuplicateVote, StoreError).
Match with errors.Is against the Err* sentinels or use KindOf.
*/
package election
