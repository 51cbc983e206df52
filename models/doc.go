// Copyright (c) 2025 the Agora authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - RegisterUserRequest: username, document_number, geozone_id
  - CreatePollRequest: name, summary, description, window, geozone_ids
  - AddQuestionRequest: title, max_votes
  - AddOptionRequest: title, read_more_url
  - SubmitAnswersRequest: answers (map[string][]string)

# Response Types

Types for JSON responses:

  - RegisterUserResponse: user_id, session_token
  - CreatePollResponse: poll_id, admin_key
  - AddQuestionResponse: question_id
  - AddOptionResponse: option_id
  - SubmitAnswersResponse: voter_id, answers, message
  - MyAnswersResponse: answers
  - PollDetailResponse: poll, questions, access_status, window
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - User: registered participant with verification level and geozone
  - Geozone: geographic zone used for poll restrictions
  - Poll: poll metadata with voting window and geozone restriction
  - Question: belongs to a poll; max_votes bounds simultaneous options
  - Option: selectable choice with optional read-more reference
  - Voter: asserts a user has cast a ballot in a poll
  - Answer: one selected option by one user for one question

# Constants

Poll status (derived from the time window):

	StatusUpcoming = "upcoming"
	StatusCurrent  = "current"
	StatusExpired  = "expired"

Voter origin:

	OriginWeb   = "web"
	OriginBooth = "booth"

Verification levels:

	LevelUnverified   = 0
	LevelHalfVerified = 1
	LevelVerified     = 2
*/
package models
