// Copyright (c) 2025 the Agora authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vote

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opencivic/agora/models"
)

// replaceAnswers makes the author's stored answer set for the question
// exactly optionIDs. Rows for options outside the new set are deleted, rows
// for new options are inserted, rows for options present in both are left
// untouched. The set may be empty, which clears the question. Runs inside
// the caller's transaction, so a partial replacement is never observable.
// Returns the final option set in submission order.
func replaceAnswers(ctx context.Context, tx *sql.Tx, question models.Question, authorID string, optionIDs []string) ([]string, error) {
	selected := dedupe(optionIDs)

	if err := validateSelection(question, selected); err != nil {
		return nil, err
	}

	existing, err := answeredOptions(ctx, tx, question.ID, authorID)
	if err != nil {
		return nil, err
	}

	inSelected := make(map[string]bool, len(selected))
	for _, id := range selected {
		inSelected[id] = true
	}

	for _, id := range existing {
		if inSelected[id] {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			DELETE FROM poll_answer
			WHERE author_id = $1 AND question_id = $2 AND option_id = $3
		`, authorID, question.ID, id)
		if err != nil {
			return nil, fmt.Errorf("failed to delete answer: %w", err)
		}
	}

	inExisting := make(map[string]bool, len(existing))
	for _, id := range existing {
		inExisting[id] = true
	}

	for _, id := range selected {
		if inExisting[id] {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO poll_answer (id, poll_id, question_id, option_id, author_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.NewString(), question.PollID, question.ID, id, authorID, time.Now())
		if err != nil {
			return nil, fmt.Errorf("failed to insert answer: %w", err)
		}
	}

	return selected, nil
}

// validateSelection checks the submitted set against the question's option
// set and max_votes bound.
func validateSelection(question models.Question, selected []string) error {
	if len(selected) > question.MaxVotes {
		return fmt.Errorf("%w: question %s allows at most %d options, got %d",
			ErrInvalidSelection, question.ID, question.MaxVotes, len(selected))
	}

	valid := make(map[string]bool, len(question.Options))
	for _, opt := range question.Options {
		valid[opt.ID] = true
	}
	for _, id := range selected {
		if !valid[id] {
			return fmt.Errorf("%w: option %s does not belong to question %s",
				ErrInvalidSelection, id, question.ID)
		}
	}
	return nil
}

func answeredOptions(ctx context.Context, tx *sql.Tx, questionID, authorID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT option_id FROM poll_answer
		WHERE author_id = $1 AND question_id = $2
	`, authorID, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query answers: %w", err)
	}
	defer rows.Close()

	var optionIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		optionIDs = append(optionIDs, id)
	}
	return optionIDs, rows.Err()
}

// dedupe removes repeated ids, keeping first-occurrence order. A double-sent
// option counts once against max_votes.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
