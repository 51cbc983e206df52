// Copyright (c) 2025 the Agora authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vote

import "errors"

var (
	// ErrNotEligible is returned when the user cannot vote in the poll at
	// all: expired window, unverified account, wrong geozone, or a booth
	// vote already on record. No writes happen when it is returned.
	ErrNotEligible = errors.New("user is not eligible to vote in this poll")

	// ErrInvalidSelection is returned when a submitted selection exceeds a
	// question's max_votes or references an option outside the question.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrVoterInvalid is returned when the voter record fails validation
	// for a reason other than duplication. The whole submission rolls back.
	ErrVoterInvalid = errors.New("voter record is invalid")
)
