// Copyright (c) 2025 the Agora authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Agora API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - UserHandler: registration and verification
  - PollHandler: poll administration and poll detail retrieval
  - VotingHandler: vote submission and prior-answer retrieval

Handlers are created via constructor functions that accept *sql.DB and
Config; VotingHandler additionally takes the db.Dialect because the vote
recorder's row locking differs per backend.

# Administration

Admin operations require the X-Admin-Key header:

	POST /users/{id}/verify      → UserHandler.Verify
	POST /polls                  → PollHandler.CreatePoll
	POST /polls/{id}/questions   → PollHandler.AddQuestion
	POST /questions/{id}/options → PollHandler.AddOption

# Voting Flow

Participants authenticate with X-User-ID plus X-Session-Token:

	POST /users                  → UserHandler.Register (returns session_token)
	GET  /polls/{id}             → PollHandler.GetPoll (session optional)
	POST /polls/{id}/answers     → VotingHandler.SubmitAnswers
	GET  /polls/{id}/my-answers  → VotingHandler.GetMyAnswers

SubmitAnswers delegates to vote.Recorder; the handler itself only resolves
the caller, parses the body, and maps the engine's typed errors:

	vote.ErrNotEligible      → 403
	vote.ErrInvalidSelection → 422
	vote.ErrVoterInvalid     → 422
*/
package handlers
