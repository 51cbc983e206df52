// Copyright (c) 2025 the Agora authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vote

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/opencivic/agora/models"
)

// ensureVoter returns the voter row for (user, poll), creating it with origin
// web if it does not exist. Concurrent calls for the same pair race on the
// (user_id, poll_id) uniqueness constraint; the loser of the race re-reads
// the winner's row instead of failing. Runs inside the caller's transaction.
func ensureVoter(ctx context.Context, tx *sql.Tx, poll models.Poll, user models.User) (models.Voter, error) {
	voter, err := findVoter(ctx, tx, poll.ID, user.ID)
	if err == nil {
		return voter, nil
	}
	if err != sql.ErrNoRows {
		return models.Voter{}, fmt.Errorf("failed to query voter: %w", err)
	}

	voter = models.Voter{
		ID:             uuid.NewString(),
		PollID:         poll.ID,
		UserID:         user.ID,
		DocumentNumber: user.DocumentNumber,
		Origin:         models.OriginWeb,
		CreatedAt:      time.Now(),
	}

	if err := validateVoter(voter); err != nil {
		return models.Voter{}, err
	}

	inserted, err := insertVoter(ctx, tx, voter)
	if err != nil {
		return models.Voter{}, err
	}
	if !inserted {
		// A concurrent submission created the row first. That is the
		// outcome we wanted; re-read it. One retry only.
		slog.Debug("voter insert lost race, re-reading", "poll_id", poll.ID, "user_id", user.ID)
		voter, err = findVoter(ctx, tx, poll.ID, user.ID)
		if err != nil {
			return models.Voter{}, fmt.Errorf("failed to re-read voter after collision: %w", err)
		}
	}

	return voter, nil
}

// insertVoter adds the voter row, reporting false without error when a row
// for the same (user, poll) already exists. ON CONFLICT DO NOTHING keeps a
// collision from raising: on postgres a raised unique violation aborts the
// enclosing transaction, which would doom the recovery read that follows.
func insertVoter(ctx context.Context, tx *sql.Tx, v models.Voter) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO poll_voter (id, poll_id, user_id, document_number, origin, officer_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NULL, $6)
		ON CONFLICT (user_id, poll_id) DO NOTHING
	`, v.ID, v.PollID, v.UserID, v.DocumentNumber, v.Origin, v.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to insert voter: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read voter insert result: %w", err)
	}
	return affected > 0, nil
}

func findVoter(ctx context.Context, tx *sql.Tx, pollID, userID string) (models.Voter, error) {
	var v models.Voter
	err := tx.QueryRowContext(ctx, `
		SELECT id, poll_id, user_id, document_number, origin, officer_id, created_at
		FROM poll_voter
		WHERE poll_id = $1 AND user_id = $2
	`, pollID, userID).Scan(&v.ID, &v.PollID, &v.UserID, &v.DocumentNumber, &v.Origin, &v.OfficerID, &v.CreatedAt)
	if err != nil {
		return models.Voter{}, err
	}
	return v, nil
}

// validateVoter checks the domain rules for a new web voter. Duplication is
// not checked here; the storage constraint owns that.
func validateVoter(v models.Voter) error {
	if v.UserID == "" || v.PollID == "" {
		return fmt.Errorf("%w: missing user or poll reference", ErrVoterInvalid)
	}
	if v.DocumentNumber == "" {
		return fmt.Errorf("%w: missing document number snapshot", ErrVoterInvalid)
	}
	if v.Origin != models.OriginWeb {
		return fmt.Errorf("%w: web votes must have origin %q", ErrVoterInvalid, models.OriginWeb)
	}
	if v.OfficerID != nil {
		return fmt.Errorf("%w: web votes cannot carry an officer", ErrVoterInvalid)
	}
	return nil
}
