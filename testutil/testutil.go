// Copyright (c) 2025 the Agora authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/opencivic/agora/auth"
	"github.com/opencivic/agora/cliparse"
	"github.com/opencivic/agora/db"
	"github.com/opencivic/agora/models"
)

// SetupTestDB creates a fresh in-memory sqlite database with the full
// schema. Each call gets its own database; it lives as long as the
// connection pool holds its connection, so close it when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// A unique name keeps parallel tests from sharing state.
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"

	conn, err := db.Open(db.DialectSQLite, dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:             3240,
		DatabaseURL:      ":memory:",
		DatabaseType:     "sqlite",
		AdminKeySalt:     "test-admin-salt",
		SessionTokenSalt: "test-session-salt",
	}
}

// CreateTestGeozone inserts a geozone and returns its ID
func CreateTestGeozone(t *testing.T, conn *sql.DB, name string) string {
	t.Helper()

	id := uuid.NewString()
	_, err := conn.Exec(`INSERT INTO geozone (id, name) VALUES ($1, $2)`, id, name)
	if err != nil {
		t.Fatalf("Failed to create test geozone: %v", err)
	}
	return id
}

// CreateTestUser inserts a user and returns it with a valid session token.
// Pass an empty geozoneID for a user without a zone.
func CreateTestUser(t *testing.T, conn *sql.DB, cfg cliparse.Config, username string, level int, geozoneID string) (models.User, string) {
	t.Helper()

	user := models.User{
		ID:                uuid.NewString(),
		Username:          username,
		DocumentNumber:    "12345678Z",
		VerificationLevel: level,
		CreatedAt:         time.Now(),
	}
	if geozoneID != "" {
		user.GeozoneID = &geozoneID
	}

	_, err := conn.Exec(`
		INSERT INTO app_user (id, username, document_number, verification_level, geozone_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.ID, user.Username, user.DocumentNumber, user.VerificationLevel, user.GeozoneID, user.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user, auth.GenerateSessionToken(user.ID, cfg.SessionTokenSalt)
}

// SetDocumentNumber overwrites a user's document number (empty string makes
// voter validation fail).
func SetDocumentNumber(t *testing.T, conn *sql.DB, userID, documentNumber string) {
	t.Helper()

	_, err := conn.Exec(`UPDATE app_user SET document_number = $1 WHERE id = $2`, documentNumber, userID)
	if err != nil {
		t.Fatalf("Failed to set document number: %v", err)
	}
}

// CreateTestPoll creates a poll whose window matches the requested status
// ("upcoming", "current", or "expired") and returns its ID and the poll.
func CreateTestPoll(t *testing.T, conn *sql.DB, status string) models.Poll {
	t.Helper()

	now := time.Now()
	poll := models.Poll{
		ID:        uuid.NewString(),
		Name:      "Test Poll",
		Summary:   "A test poll",
		CreatedAt: now,
	}

	switch status {
	case models.StatusUpcoming:
		poll.StartsAt = now.Add(24 * time.Hour)
		poll.EndsAt = now.Add(48 * time.Hour)
	case models.StatusExpired:
		poll.StartsAt = now.Add(-48 * time.Hour)
		poll.EndsAt = now.Add(-24 * time.Hour)
	default:
		poll.StartsAt = now.Add(-24 * time.Hour)
		poll.EndsAt = now.Add(24 * time.Hour)
	}

	_, err := conn.Exec(`
		INSERT INTO poll (id, name, summary, description, starts_at, ends_at, geozone_restricted, created_at)
		VALUES ($1, $2, $3, '', $4, $5, FALSE, $6)
	`, poll.ID, poll.Name, poll.Summary, poll.StartsAt, poll.EndsAt, poll.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	return poll
}

// RestrictPoll limits the poll to the given geozones
func RestrictPoll(t *testing.T, conn *sql.DB, pollID string, geozoneIDs ...string) {
	t.Helper()

	_, err := conn.Exec(`UPDATE poll SET geozone_restricted = TRUE WHERE id = $1`, pollID)
	if err != nil {
		t.Fatalf("Failed to restrict poll: %v", err)
	}
	for _, geozoneID := range geozoneIDs {
		_, err := conn.Exec(`INSERT INTO poll_geozone (poll_id, geozone_id) VALUES ($1, $2)`, pollID, geozoneID)
		if err != nil {
			t.Fatalf("Failed to add poll geozone: %v", err)
		}
	}
}

// AddTestQuestion adds a question to a poll and returns the question ID
func AddTestQuestion(t *testing.T, conn *sql.DB, pollID, title string, maxVotes int) string {
	t.Helper()

	questionID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO poll_question (id, poll_id, title, max_votes)
		VALUES ($1, $2, $3, $4)
	`, questionID, pollID, title, maxVotes)
	if err != nil {
		t.Fatalf("Failed to create test question: %v", err)
	}
	return questionID
}

// AddTestOption adds an option to a question and returns the option ID
func AddTestOption(t *testing.T, conn *sql.DB, questionID, title string) string {
	t.Helper()

	optionID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO question_option (id, question_id, title)
		VALUES ($1, $2, $3)
	`, optionID, questionID, title)
	if err != nil {
		t.Fatalf("Failed to create test option: %v", err)
	}
	return optionID
}

// CreateBoothVoter records an offline booth vote for the user, as the booth
// import flow would.
func CreateBoothVoter(t *testing.T, conn *sql.DB, pollID string, user models.User) string {
	t.Helper()

	voterID := uuid.NewString()
	officerID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO poll_voter (id, poll_id, user_id, document_number, origin, officer_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, voterID, pollID, user.ID, user.DocumentNumber, models.OriginBooth, officerID, time.Now())
	if err != nil {
		t.Fatalf("Failed to create booth voter: %v", err)
	}
	return voterID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// SessionHeaders returns the auth headers for a user
func SessionHeaders(user models.User, token string) map[string]string {
	return map[string]string{
		"X-User-ID":       user.ID,
		"X-Session-Token": token,
	}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// CountVoters returns the number of voter rows for a poll
func CountVoters(t *testing.T, conn *sql.DB, pollID string) int {
	t.Helper()
	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM poll_voter WHERE poll_id = $1`, pollID).Scan(&n); err != nil {
		t.Fatalf("Failed to count voters: %v", err)
	}
	return n
}

// CountAnswers returns the number of answer rows for (author, question)
func CountAnswers(t *testing.T, conn *sql.DB, questionID, authorID string) int {
	t.Helper()
	var n int
	err := conn.QueryRow(`
		SELECT COUNT(*) FROM poll_answer WHERE question_id = $1 AND author_id = $2
	`, questionID, authorID).Scan(&n)
	if err != nil {
		t.Fatalf("Failed to count answers: %v", err)
	}
	return n
}

// AnsweredOptions returns the author's stored option ids for a question
func AnsweredOptions(t *testing.T, conn *sql.DB, questionID, authorID string) []string {
	t.Helper()
	rows, err := conn.Query(`
		SELECT option_id FROM poll_answer
		WHERE question_id = $1 AND author_id = $2 ORDER BY option_id
	`, questionID, authorID)
	if err != nil {
		t.Fatalf("Failed to query answers: %v", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			t.Fatalf("Failed to scan answer: %v", err)
		}
		ids = append(ids, id)
	}
	return ids
}
