// Copyright (c) 2025 the Agora authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package eligibility decides whether a user may answer a poll.

The Gate interface is the capability query consumed by the vote recorder:

	type Gate interface {
		CanAnswer(ctx, q, user, poll) (bool, error)
		VotedInBooth(ctx, q, user, poll) (bool, error)
		InAllowedGeozone(ctx, q, user, poll) (bool, error)
	}

The Querier parameter accepts either *sql.DB or *sql.Tx, so the recorder
can re-consult the gate inside its transaction without taking a second
connection.

Checker is the standard implementation. CanAnswer requires all of:

  - the user is fully verified (level two)
  - the poll window is current (models.Poll.StatusAt)
  - the user's geozone is in the poll's allowed set, when restricted
  - no booth vote is on record for (user, poll)

Poll status itself is a pure time-window classification on models.Poll, so
it needs no database access.
*/
package eligibility
