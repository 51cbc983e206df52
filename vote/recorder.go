// Copyright (c) 2025 the Agora authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vote

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	agoradb "github.com/opencivic/agora/db"
	"github.com/opencivic/agora/eligibility"
	"github.com/opencivic/agora/models"
)

// Result is the confirmation payload for a recorded submission: the voter
// row (created or found) and the final answer set per question.
type Result struct {
	Voter   models.Voter
	Answers map[string][]string
}

// Recorder is the coordinator for vote submissions. One Record call is one
// transaction: eligibility gate, voter registration, and answer-set
// replacement for every question of the poll either all commit or all roll
// back. Recorder is safe for concurrent use; correctness under concurrent
// submissions for the same (user, poll) rests on the storage constraints
// and row locking, not on in-process synchronization.
type Recorder struct {
	db      *sql.DB
	dialect agoradb.Dialect
	gate    eligibility.Gate
}

func NewRecorder(db *sql.DB, dialect agoradb.Dialect, gate eligibility.Gate) *Recorder {
	return &Recorder{db: db, dialect: dialect, gate: gate}
}

// Record durably records that user voted in poll with the given selections.
// selections maps question id to the submitted option ids; a question absent
// from the map is treated as an explicit empty set, clearing any prior
// answers for it while the voter row is retained. Calling Record twice with
// identical selections leaves the same observable state as calling it once.
func (r *Recorder) Record(ctx context.Context, poll models.Poll, user models.User, selections map[string][]string) (*Result, error) {
	if err := r.checkEligibility(ctx, r.db, user, poll); err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	voter, err := ensureVoter(ctx, tx, poll, user)
	if err != nil {
		return nil, err
	}

	// Serialize concurrent submissions for this (user, poll): the row lock
	// makes the loser's replace see the winner's committed answers, so the
	// final set is always exactly one submitted set.
	if err := r.lockVoter(ctx, tx, voter.ID); err != nil {
		return nil, err
	}

	questions, err := loadQuestions(ctx, tx, poll.ID)
	if err != nil {
		return nil, err
	}

	result := &Result{Voter: voter, Answers: make(map[string][]string, len(questions))}

	// Iterate all of the poll's questions, not just the submitted ones:
	// omission clears.
	for _, question := range questions {
		if err := r.checkQuestionEligibility(ctx, tx, user, poll, question); err != nil {
			return nil, err
		}

		final, err := replaceAnswers(ctx, tx, question, user.ID, selections[question.ID])
		if err != nil {
			return nil, err
		}
		result.Answers[question.ID] = final
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit vote: %w", err)
	}

	slog.Info("vote recorded", "poll_id", poll.ID, "user_id", user.ID, "voter_id", voter.ID)

	return result, nil
}

// checkEligibility is the fail-fast gate consultation before any write.
func (r *Recorder) checkEligibility(ctx context.Context, q eligibility.Querier, user models.User, poll models.Poll) error {
	ok, err := r.gate.CanAnswer(ctx, q, user, poll)
	if err != nil {
		return fmt.Errorf("eligibility check failed: %w", err)
	}
	if !ok {
		return ErrNotEligible
	}

	booth, err := r.gate.VotedInBooth(ctx, q, user, poll)
	if err != nil {
		return fmt.Errorf("booth check failed: %w", err)
	}
	if booth {
		return fmt.Errorf("%w: already voted in booth", ErrNotEligible)
	}
	return nil
}

// checkQuestionEligibility re-consults the gate per question before writing
// its answers, through the transaction. Eligibility can change
// mid-submission (a booth vote recorded by an officer, a poll closing);
// re-checking inside the transaction keeps a stale submission from landing.
func (r *Recorder) checkQuestionEligibility(ctx context.Context, tx *sql.Tx, user models.User, poll models.Poll, question models.Question) error {
	ok, err := r.gate.CanAnswer(ctx, tx, user, poll)
	if err != nil {
		return fmt.Errorf("eligibility check failed for question %s: %w", question.ID, err)
	}
	if !ok {
		return ErrNotEligible
	}
	return nil
}

func (r *Recorder) lockVoter(ctx context.Context, tx *sql.Tx, voterID string) error {
	var id string
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM poll_voter WHERE id = $1`+r.dialect.LockSuffix(),
		voterID).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to lock voter row: %w", err)
	}
	return nil
}

func loadQuestions(ctx context.Context, tx *sql.Tx, pollID string) ([]models.Question, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, poll_id, title, max_votes
		FROM poll_question
		WHERE poll_id = $1
		ORDER BY id
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.PollID, &q.Title, &q.MaxVotes); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read questions: %w", err)
	}

	for i := range questions {
		opts, err := loadOptions(ctx, tx, questions[i].ID)
		if err != nil {
			return nil, err
		}
		questions[i].Options = opts
	}

	return questions, nil
}

func loadOptions(ctx context.Context, tx *sql.Tx, questionID string) ([]models.Option, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, question_id, title, read_more_url
		FROM question_option
		WHERE question_id = $1
		ORDER BY id
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	var options []models.Option
	for rows.Next() {
		var o models.Option
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Title, &o.ReadMoreURL); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, o)
	}
	return options, rows.Err()
}
