// Copyright (c) 2025 the Agora authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Poll status constants, derived from the poll's time window
const (
	StatusUpcoming = "upcoming"
	StatusCurrent  = "current"
	StatusExpired  = "expired"
)

// Voter origin constants
const (
	OriginWeb   = "web"
	OriginBooth = "booth"
)

// User verification levels
const (
	LevelUnverified   = 0
	LevelHalfVerified = 1
	LevelVerified     = 2
)

// Access status values returned with poll details
const (
	AccessNotLoggedIn   = "not-logged-in"
	AccessUnverified    = "unverified"
	AccessCantAnswer    = "cant-answer"
	AccessAlreadyAnswer = "already-answer"
	AccessOK            = "ok"
)

// Request types

type RegisterUserRequest struct {
	Username       string `json:"username"`
	DocumentNumber string `json:"document_number"`
	GeozoneID      string `json:"geozone_id"`
}

type CreatePollRequest struct {
	Name        string    `json:"name"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	GeozoneIDs  []string  `json:"geozone_ids"`
}

type AddQuestionRequest struct {
	Title    string `json:"title"`
	MaxVotes int    `json:"max_votes"`
}

type AddOptionRequest struct {
	Title       string `json:"title"`
	ReadMoreURL string `json:"read_more_url"`
}

// question_id -> selected option_ids (empty or absent clears the question)
type SubmitAnswersRequest struct {
	Answers map[string][]string `json:"answers"`
}

// Response types

type RegisterUserResponse struct {
	UserID       string `json:"user_id"`
	SessionToken string `json:"session_token"`
}

type CreatePollResponse struct {
	PollID   string `json:"poll_id"`
	AdminKey string `json:"admin_key"`
}

type AddQuestionResponse struct {
	QuestionID string `json:"question_id"`
}

type AddOptionResponse struct {
	OptionID string `json:"option_id"`
}

type SubmitAnswersResponse struct {
	VoterID string              `json:"voter_id"`
	Answers map[string][]string `json:"answers"`
	Message string              `json:"message"`
}

type MyAnswersResponse struct {
	Answers map[string][]string `json:"answers"`
}

type PollDetailResponse struct {
	Poll         Poll       `json:"poll"`
	Questions    []Question `json:"questions"`
	AccessStatus string     `json:"access_status"`
	Window       string     `json:"window"`
}

// Domain types

type Geozone struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	DocumentNumber    string    `json:"-"` // Never expose in JSON
	VerificationLevel int       `json:"verification_level"`
	GeozoneID         *string   `json:"geozone_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Verified reports whether the user has reached the verification level
// required to cast web votes.
func (u User) Verified() bool {
	return u.VerificationLevel >= LevelVerified
}

type Poll struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Summary           string    `json:"summary"`
	Description       string    `json:"description"`
	StartsAt          time.Time `json:"starts_at"`
	EndsAt            time.Time `json:"ends_at"`
	GeozoneRestricted bool      `json:"geozone_restricted"`
	CreatedAt         time.Time `json:"created_at"`
}

// StatusAt classifies the poll's time window at the given instant.
func (p Poll) StatusAt(now time.Time) string {
	switch {
	case now.Before(p.StartsAt):
		return StatusUpcoming
	case now.After(p.EndsAt):
		return StatusExpired
	default:
		return StatusCurrent
	}
}

// Current reports whether the poll accepts votes at the given instant.
func (p Poll) Current(now time.Time) bool {
	return p.StatusAt(now) == StatusCurrent
}

type Question struct {
	ID       string   `json:"id"`
	PollID   string   `json:"poll_id"`
	Title    string   `json:"title"`
	MaxVotes int      `json:"max_votes"`
	Options  []Option `json:"options,omitempty"`
}

// MultipleChoice reports whether the question allows more than one
// simultaneous option.
func (q Question) MultipleChoice() bool {
	return q.MaxVotes > 1
}

type Option struct {
	ID          string  `json:"id"`
	QuestionID  string  `json:"question_id"`
	Title       string  `json:"title"`
	ReadMoreURL *string `json:"read_more_url,omitempty"`
}

type Voter struct {
	ID             string    `json:"id"`
	PollID         string    `json:"poll_id"`
	UserID         string    `json:"user_id"`
	DocumentNumber string    `json:"-"` // Never expose in JSON
	Origin         string    `json:"origin"`
	OfficerID      *string   `json:"-"` // Never expose in JSON
	IPHash         *string   `json:"-"` // Never expose in JSON
	CreatedAt      time.Time `json:"created_at"`
}

type Answer struct {
	ID         string    `json:"id"`
	PollID     string    `json:"poll_id"`
	QuestionID string    `json:"question_id"`
	OptionID   string    `json:"option_id"`
	AuthorID   string    `json:"author_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
