// Copyright (c) 2025 the Agora authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/opencivic/agora/auth"
	"github.com/opencivic/agora/cliparse"
	"github.com/opencivic/agora/models"
)

var (
	errNoSession   = errors.New("missing session headers")
	errBadSession  = errors.New("invalid session")
	errUserUnknown = errors.New("unknown user")
)

// currentUser resolves the authenticated user from the X-User-ID and
// X-Session-Token headers.
func currentUser(db *sql.DB, cfg cliparse.Config, r *http.Request) (models.User, error) {
	userID := r.Header.Get("X-User-ID")
	token := r.Header.Get("X-Session-Token")
	if userID == "" || token == "" {
		return models.User{}, errNoSession
	}

	if err := auth.ValidateSessionToken(userID, token, cfg.SessionTokenSalt); err != nil {
		return models.User{}, errBadSession
	}

	user, err := loadUser(db, userID)
	if err == sql.ErrNoRows {
		return models.User{}, errUserUnknown
	}
	return user, err
}

func loadUser(db *sql.DB, userID string) (models.User, error) {
	var u models.User
	err := db.QueryRow(`
		SELECT id, username, document_number, verification_level, geozone_id, created_at
		FROM app_user WHERE id = $1
	`, userID).Scan(&u.ID, &u.Username, &u.DocumentNumber, &u.VerificationLevel, &u.GeozoneID, &u.CreatedAt)
	return u, err
}

func loadPoll(db *sql.DB, pollID string) (models.Poll, error) {
	var p models.Poll
	err := db.QueryRow(`
		SELECT id, name, summary, description, starts_at, ends_at, geozone_restricted, created_at
		FROM poll WHERE id = $1
	`, pollID).Scan(&p.ID, &p.Name, &p.Summary, &p.Description, &p.StartsAt, &p.EndsAt, &p.GeozoneRestricted, &p.CreatedAt)
	return p, err
}

// userAnswers collects the user's current per-question option sets for a
// poll, for pre-checking the voting form.
func userAnswers(db *sql.DB, pollID, userID string) (map[string][]string, error) {
	rows, err := db.Query(`
		SELECT question_id, option_id FROM poll_answer
		WHERE poll_id = $1 AND author_id = $2
		ORDER BY question_id, option_id
	`, pollID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answers := make(map[string][]string)
	for rows.Next() {
		var questionID, optionID string
		if err := rows.Scan(&questionID, &optionID); err != nil {
			return nil, err
		}
		answers[questionID] = append(answers[questionID], optionID)
	}
	return answers, rows.Err()
}
