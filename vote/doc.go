// Copyright (c) 2025 the Agora authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package vote implements the vote-recording engine: given a user, a poll, and
a set of question-to-option selections, it durably records "this user voted
in this poll" exactly once and makes the user's stored answer set for each
question exactly the submitted set.

# Entry Point

The sole public operation is Recorder.Record:

	recorder := vote.NewRecorder(conn, dialect, gate)
	result, err := recorder.Record(ctx, poll, user, map[string][]string{
		questionID: {optionA, optionB},
	})

One call is one transaction. Any failure rolls back everything, including
the voter row, so a rejected submission never marks the user as having
voted.

# Submission Semantics

  - A question omitted from the selections is an explicit empty set: prior
    answers for it are deleted, the voter row is retained.
  - Replacement is a set operation, not a merge. Options dropped from the
    set are deleted, new options are inserted, unchanged options are left
    alone.
  - Identical resubmission is idempotent, sequentially and under concurrent
    double submission.

# Concurrency

Submissions run in independent request-handling units with no shared
memory, so the engine takes no in-process locks. Correctness rests on the
storage layer:

  - poll_voter's (user_id, poll_id) uniqueness constraint guarantees at
    most one voter per pair. The insert does not raise on a collision
    (ON CONFLICT DO NOTHING); a lost race means a concurrent submission
    won, and the winner's row is re-read in the same transaction.
  - After the voter row exists the recorder locks it (SELECT FOR UPDATE on
    postgres; sqlite's writer lock serializes transactions), so concurrent
    replacements for the same user settle to exactly one submitted set,
    never a union or a partial mix.
  - poll_answer's (author_id, question_id, option_id) constraint stops
    duplicated rows for one option if replacements ever interleave.

# Errors

	ErrNotEligible      the user cannot vote in this poll at all
	ErrInvalidSelection max_votes exceeded or foreign option id
	ErrVoterInvalid     voter failed validation (missing document snapshot)

All three abort the submission and roll back the transaction. Duplicate-key
conflicts are internal and never returned.
*/
package vote
