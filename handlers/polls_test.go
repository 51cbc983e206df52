// Copyright (c) 2025 the Agora authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/opencivic/agora/auth"
	"github.com/opencivic/agora/db"
	"github.com/opencivic/agora/models"
	"github.com/opencivic/agora/testutil"
)

func TestCreatePoll(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	cfg := testutil.GetTestConfig()
	handler := NewPollHandler(conn, cfg)
	adminKey := auth.GenerateAdminKey(cfg.AdminKeySalt)

	geozoneID := testutil.CreateTestGeozone(t, conn, "District 1")
	now := time.Now()

	tests := []struct {
		name           string
		adminKey       string
		requestBody    interface{}
		expectedStatus int
		checkResponse  func(t *testing.T, resp *models.CreatePollResponse)
	}{
		{
			name:     "valid poll",
			adminKey: adminKey,
			requestBody: models.CreatePollRequest{
				Name:     "Budget 2026",
				Summary:  "Participatory budget vote",
				StartsAt: now,
				EndsAt:   now.Add(72 * time.Hour),
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.CreatePollResponse) {
				if resp.PollID == "" {
					t.Error("Expected non-empty poll_id")
				}
				var restricted bool
				err := conn.QueryRow(`SELECT geozone_restricted FROM poll WHERE id = $1`, resp.PollID).Scan(&restricted)
				if err != nil {
					t.Fatalf("Failed to query poll: %v", err)
				}
				if restricted {
					t.Error("Poll without geozones should not be restricted")
				}
			},
		},
		{
			name:     "geozone restricted poll",
			adminKey: adminKey,
			requestBody: models.CreatePollRequest{
				Name:       "District Poll",
				StartsAt:   now,
				EndsAt:     now.Add(72 * time.Hour),
				GeozoneIDs: []string{geozoneID},
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.CreatePollResponse) {
				var restricted bool
				err := conn.QueryRow(`SELECT geozone_restricted FROM poll WHERE id = $1`, resp.PollID).Scan(&restricted)
				if err != nil {
					t.Fatalf("Failed to query poll: %v", err)
				}
				if !restricted {
					t.Error("Poll with geozones should be restricted")
				}
				var n int
				err = conn.QueryRow(`SELECT COUNT(*) FROM poll_geozone WHERE poll_id = $1`, resp.PollID).Scan(&n)
				if err != nil {
					t.Fatalf("Failed to count poll geozones: %v", err)
				}
				if n != 1 {
					t.Errorf("Expected 1 poll geozone, got %d", n)
				}
			},
		},
		{
			name:     "missing name",
			adminKey: adminKey,
			requestBody: models.CreatePollRequest{
				StartsAt: now,
				EndsAt:   now.Add(time.Hour),
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:     "window ends before it starts",
			adminKey: adminKey,
			requestBody: models.CreatePollRequest{
				Name:     "Backwards",
				StartsAt: now,
				EndsAt:   now.Add(-time.Hour),
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:     "invalid admin key",
			adminKey: "not-a-key",
			requestBody: models.CreatePollRequest{
				Name:     "Sneaky",
				StartsAt: now,
				EndsAt:   now.Add(time.Hour),
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{"X-Admin-Key": tt.adminKey}
			req := testutil.MakeRequest("POST", "/polls", tt.requestBody, headers)
			w := httptest.NewRecorder()

			handler.CreatePoll(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated && tt.checkResponse != nil {
				var resp models.CreatePollResponse
				testutil.AssertJSON(t, w, &resp)
				tt.checkResponse(t, &resp)
			}
		})
	}
}

func TestAddQuestion(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	cfg := testutil.GetTestConfig()
	handler := NewPollHandler(conn, cfg)
	adminKey := auth.GenerateAdminKey(cfg.AdminKeySalt)

	poll := testutil.CreateTestPoll(t, conn, models.StatusCurrent)

	tests := []struct {
		name           string
		pollID         string
		adminKey       string
		requestBody    interface{}
		expectedStatus int
		checkResponse  func(t *testing.T, resp *models.AddQuestionResponse)
	}{
		{
			name:           "valid question",
			pollID:         poll.ID,
			adminKey:       adminKey,
			requestBody:    models.AddQuestionRequest{Title: "Favorite park?", MaxVotes: 2},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.AddQuestionResponse) {
				var maxVotes int
				err := conn.QueryRow(`SELECT max_votes FROM poll_question WHERE id = $1`, resp.QuestionID).Scan(&maxVotes)
				if err != nil {
					t.Fatalf("Failed to query question: %v", err)
				}
				if maxVotes != 2 {
					t.Errorf("Expected max_votes 2, got %d", maxVotes)
				}
			},
		},
		{
			name:           "max_votes defaults to one",
			pollID:         poll.ID,
			adminKey:       adminKey,
			requestBody:    models.AddQuestionRequest{Title: "Single choice?"},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.AddQuestionResponse) {
				var maxVotes int
				err := conn.QueryRow(`SELECT max_votes FROM poll_question WHERE id = $1`, resp.QuestionID).Scan(&maxVotes)
				if err != nil {
					t.Fatalf("Failed to query question: %v", err)
				}
				if maxVotes != 1 {
					t.Errorf("Expected max_votes 1, got %d", maxVotes)
				}
			},
		},
		{
			name:           "missing title",
			pollID:         poll.ID,
			adminKey:       adminKey,
			requestBody:    models.AddQuestionRequest{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "negative max_votes",
			pollID:         poll.ID,
			adminKey:       adminKey,
			requestBody:    models.AddQuestionRequest{Title: "Bad", MaxVotes: -1},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "poll not found",
			pollID:         "nonexistent",
			adminKey:       adminKey,
			requestBody:    models.AddQuestionRequest{Title: "Orphan"},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalid admin key",
			pollID:         poll.ID,
			adminKey:       "not-a-key",
			requestBody:    models.AddQuestionRequest{Title: "Sneaky"},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{"X-Admin-Key": tt.adminKey}
			req := testutil.MakeRequest("POST", "/polls/"+tt.pollID+"/questions", tt.requestBody, headers)
			req.SetPathValue("id", tt.pollID)
			w := httptest.NewRecorder()

			handler.AddQuestion(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated && tt.checkResponse != nil {
				var resp models.AddQuestionResponse
				testutil.AssertJSON(t, w, &resp)
				tt.checkResponse(t, &resp)
			}
		})
	}
}

func TestAddOption(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	cfg := testutil.GetTestConfig()
	handler := NewPollHandler(conn, cfg)
	adminKey := auth.GenerateAdminKey(cfg.AdminKeySalt)

	poll := testutil.CreateTestPoll(t, conn, models.StatusCurrent)
	questionID := testutil.AddTestQuestion(t, conn, poll.ID, "Favorite park?", 1)

	tests := []struct {
		name           string
		questionID     string
		adminKey       string
		requestBody    interface{}
		expectedStatus int
	}{
		{
			name:           "valid option",
			questionID:     questionID,
			adminKey:       adminKey,
			requestBody:    models.AddOptionRequest{Title: "Riverside", ReadMoreURL: "https://example.org/riverside"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "option without read more",
			questionID:     questionID,
			adminKey:       adminKey,
			requestBody:    models.AddOptionRequest{Title: "Hilltop"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing title",
			questionID:     questionID,
			adminKey:       adminKey,
			requestBody:    models.AddOptionRequest{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "question not found",
			questionID:     "nonexistent",
			adminKey:       adminKey,
			requestBody:    models.AddOptionRequest{Title: "Orphan"},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalid admin key",
			questionID:     questionID,
			adminKey:       "not-a-key",
			requestBody:    models.AddOptionRequest{Title: "Sneaky"},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{"X-Admin-Key": tt.adminKey}
			req := testutil.MakeRequest("POST", "/questions/"+tt.questionID+"/options", tt.requestBody, headers)
			req.SetPathValue("id", tt.questionID)
			w := httptest.NewRecorder()

			handler.AddOption(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

func TestGetPollAccessStatus(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	cfg := testutil.GetTestConfig()
	handler := NewPollHandler(conn, cfg)
	votingHandler := NewVotingHandler(conn, db.DialectSQLite, cfg)

	poll := testutil.CreateTestPoll(t, conn, models.StatusCurrent)
	questionID := testutil.AddTestQuestion(t, conn, poll.ID, "Favorite park?", 1)
	optionID := testutil.AddTestOption(t, conn, questionID, "Riverside")
	expired := testutil.CreateTestPoll(t, conn, models.StatusExpired)

	verified, verifiedToken := testutil.CreateTestUser(t, conn, cfg, "alice", models.LevelVerified, "")
	unverified, unverifiedToken := testutil.CreateTestUser(t, conn, cfg, "bob", models.LevelUnverified, "")
	answered, answeredToken := testutil.CreateTestUser(t, conn, cfg, "carol", models.LevelVerified, "")

	// carol has already voted.
	body := models.SubmitAnswersRequest{Answers: map[string][]string{questionID: {optionID}}}
	req := testutil.MakeRequest("POST", "/polls/"+poll.ID+"/answers", body, testutil.SessionHeaders(answered, answeredToken))
	req.SetPathValue("id", poll.ID)
	w := httptest.NewRecorder()
	votingHandler.SubmitAnswers(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	tests := []struct {
		name           string
		pollID         string
		headers        map[string]string
		expectedAccess string
	}{
		{
			name:           "anonymous caller",
			pollID:         poll.ID,
			headers:        nil,
			expectedAccess: models.AccessNotLoggedIn,
		},
		{
			name:           "unverified caller",
			pollID:         poll.ID,
			headers:        testutil.SessionHeaders(unverified, unverifiedToken),
			expectedAccess: models.AccessUnverified,
		},
		{
			name:           "verified caller can answer",
			pollID:         poll.ID,
			headers:        testutil.SessionHeaders(verified, verifiedToken),
			expectedAccess: models.AccessOK,
		},
		{
			name:           "caller already answered",
			pollID:         poll.ID,
			headers:        testutil.SessionHeaders(answered, answeredToken),
			expectedAccess: models.AccessAlreadyAnswer,
		},
		{
			name:           "expired poll",
			pollID:         expired.ID,
			headers:        testutil.SessionHeaders(verified, verifiedToken),
			expectedAccess: models.AccessCantAnswer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/polls/"+tt.pollID, nil, tt.headers)
			req.SetPathValue("id", tt.pollID)
			w := httptest.NewRecorder()

			handler.GetPoll(w, req)

			testutil.AssertStatus(t, w, http.StatusOK)
			var resp models.PollDetailResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.AccessStatus != tt.expectedAccess {
				t.Errorf("Expected access status %q, got %q", tt.expectedAccess, resp.AccessStatus)
			}
		})
	}
}

func TestGetPollDetails(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	cfg := testutil.GetTestConfig()
	handler := NewPollHandler(conn, cfg)

	poll := testutil.CreateTestPoll(t, conn, models.StatusCurrent)
	questionID := testutil.AddTestQuestion(t, conn, poll.ID, "Favorite park?", 1)
	testutil.AddTestOption(t, conn, questionID, "Riverside")
	testutil.AddTestOption(t, conn, questionID, "Hilltop")

	req := testutil.MakeRequest("GET", "/polls/"+poll.ID, nil, nil)
	req.SetPathValue("id", poll.ID)
	w := httptest.NewRecorder()

	handler.GetPoll(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.PollDetailResponse
	testutil.AssertJSON(t, w, &resp)

	if resp.Poll.ID != poll.ID {
		t.Errorf("Expected poll %s, got %s", poll.ID, resp.Poll.ID)
	}
	if len(resp.Questions) != 1 {
		t.Fatalf("Expected 1 question, got %d", len(resp.Questions))
	}
	if len(resp.Questions[0].Options) != 2 {
		t.Errorf("Expected 2 options, got %d", len(resp.Questions[0].Options))
	}
	if resp.Window == "" {
		t.Error("Expected non-empty window description")
	}

	// Unknown poll yields 404.
	req = testutil.MakeRequest("GET", "/polls/nonexistent", nil, nil)
	req.SetPathValue("id", "nonexistent")
	w = httptest.NewRecorder()
	handler.GetPoll(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}
