// Copyright (c) 2025 the Agora authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package eligibility

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/opencivic/agora/models"
)

// Querier is the read surface the gate needs. Both *sql.DB and *sql.Tx
// satisfy it, so callers can consult the gate inside or outside a
// transaction.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Gate answers "may this user answer this poll right now?". The vote
// recorder consumes a negative answer as a rejected submission and performs
// no writes. Concrete rule sets live behind this interface so they can vary
// without touching the engine.
type Gate interface {
	CanAnswer(ctx context.Context, q Querier, user models.User, poll models.Poll) (bool, error)
	VotedInBooth(ctx context.Context, q Querier, user models.User, poll models.Poll) (bool, error)
	InAllowedGeozone(ctx context.Context, q Querier, user models.User, poll models.Poll) (bool, error)
}

// Checker is the standard Gate: a user may answer when they are fully
// verified, the poll window is current, the user's geozone is allowed, and
// no booth vote is on record.
type Checker struct {
	// now is swappable for tests
	now func() time.Time
}

func NewChecker() *Checker {
	return &Checker{now: time.Now}
}

// NewCheckerAt pins the gate's clock, for tests exercising window edges.
func NewCheckerAt(now func() time.Time) *Checker {
	return &Checker{now: now}
}

func (c *Checker) CanAnswer(ctx context.Context, q Querier, user models.User, poll models.Poll) (bool, error) {
	if !user.Verified() {
		return false, nil
	}
	if !poll.Current(c.now()) {
		return false, nil
	}

	ok, err := c.InAllowedGeozone(ctx, q, user, poll)
	if err != nil || !ok {
		return false, err
	}

	booth, err := c.VotedInBooth(ctx, q, user, poll)
	if err != nil {
		return false, err
	}
	return !booth, nil
}

// VotedInBooth reports whether an officer has recorded an offline vote for
// this user in this poll. Booth voters share the poll_voter table with web
// voters; the uniqueness invariant spans both origins.
func (c *Checker) VotedInBooth(ctx context.Context, q Querier, user models.User, poll models.Poll) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM poll_voter
			WHERE poll_id = $1 AND user_id = $2 AND origin = $3
		)
	`, poll.ID, user.ID, models.OriginBooth).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check booth vote: %w", err)
	}
	return exists, nil
}

// InAllowedGeozone reports whether the user's geozone satisfies the poll's
// restriction. Unrestricted polls accept everyone.
func (c *Checker) InAllowedGeozone(ctx context.Context, q Querier, user models.User, poll models.Poll) (bool, error) {
	if !poll.GeozoneRestricted {
		return true, nil
	}
	if user.GeozoneID == nil {
		return false, nil
	}

	var allowed bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM poll_geozone
			WHERE poll_id = $1 AND geozone_id = $2
		)
	`, poll.ID, *user.GeozoneID).Scan(&allowed)
	if err != nil {
		return false, fmt.Errorf("failed to check geozone: %w", err)
	}
	return allowed, nil
}
