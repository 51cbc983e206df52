// Copyright (c) 2025 the Agora authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/opencivic/agora/auth"
	"github.com/opencivic/agora/cliparse"
	"github.com/opencivic/agora/eligibility"
	"github.com/opencivic/agora/middleware"
	"github.com/opencivic/agora/models"
)

type PollHandler struct {
	db   *sql.DB
	cfg  cliparse.Config
	gate eligibility.Gate
}

func NewPollHandler(db *sql.DB, cfg cliparse.Config) *PollHandler {
	return &PollHandler{db: db, cfg: cfg, gate: eligibility.NewChecker()}
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if !req.EndsAt.After(req.StartsAt) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "ends_at must be after starts_at")
		return
	}

	pollID := uuid.NewString()
	restricted := len(req.GeozoneIDs) > 0

	_, err := h.db.Exec(`
		INSERT INTO poll (id, name, summary, description, starts_at, ends_at, geozone_restricted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, pollID, req.Name, req.Summary, req.Description, req.StartsAt, req.EndsAt, restricted, time.Now())

	if err != nil {
		slog.Error("failed to insert poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	for _, geozoneID := range req.GeozoneIDs {
		_, err := h.db.Exec(`
			INSERT INTO poll_geozone (poll_id, geozone_id)
			VALUES ($1, $2)
		`, pollID, geozoneID)
		if err != nil {
			slog.Error("failed to insert poll geozone", "error", err, "poll_id", pollID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
			return
		}
	}

	slog.Info("poll created", "poll_id", pollID, "name", req.Name)

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{
		PollID:   pollID,
		AdminKey: adminKey,
	})
}

// AddQuestion handles POST /polls/{id}/questions
func (h *PollHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	var req models.AddQuestionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.MaxVotes == 0 {
		req.MaxVotes = 1
	}
	if req.MaxVotes < 1 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "max_votes must be at least 1")
		return
	}

	if _, err := loadPoll(h.db, pollID); err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	} else if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	questionID := uuid.NewString()
	_, err := h.db.Exec(`
		INSERT INTO poll_question (id, poll_id, title, max_votes)
		VALUES ($1, $2, $3, $4)
	`, questionID, pollID, req.Title, req.MaxVotes)

	if err != nil {
		slog.Error("failed to insert question", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create question")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.AddQuestionResponse{
		QuestionID: questionID,
	})
}

// AddOption handles POST /questions/{id}/options
func (h *PollHandler) AddOption(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("id")
	if questionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question id is required")
		return
	}

	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	var req models.AddOptionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}

	var exists bool
	err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM poll_question WHERE id = $1)`, questionID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query question", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
		return
	}

	var readMore *string
	if req.ReadMoreURL != "" {
		readMore = &req.ReadMoreURL
	}

	optionID := uuid.NewString()
	_, err = h.db.Exec(`
		INSERT INTO question_option (id, question_id, title, read_more_url)
		VALUES ($1, $2, $3, $4)
	`, optionID, questionID, req.Title, readMore)

	if err != nil {
		slog.Error("failed to insert option", "error", err, "question_id", questionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create option")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.AddOptionResponse{
		OptionID: optionID,
	})
}

// GetPoll handles GET /polls/{id}. Session headers are optional; when
// present the response carries the caller's access status for the poll.
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	poll, err := loadPoll(h.db, pollID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	questions, err := pollQuestions(h.db, pollID)
	if err != nil {
		slog.Error("failed to query questions", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	accessStatus, err := h.accessStatus(r, poll)
	if err != nil {
		slog.Error("failed to compute access status", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollDetailResponse{
		Poll:         poll,
		Questions:    questions,
		AccessStatus: accessStatus,
		Window:       pollWindow(poll, time.Now()),
	})
}

// accessStatus mirrors the participation banner: why the caller can or
// cannot answer this poll right now.
func (h *PollHandler) accessStatus(r *http.Request, poll models.Poll) (string, error) {
	user, err := currentUser(h.db, h.cfg, r)
	if err == errNoSession {
		return models.AccessNotLoggedIn, nil
	}
	if err == errBadSession || err == errUserUnknown {
		return models.AccessNotLoggedIn, nil
	}
	if err != nil {
		return "", err
	}

	if !user.Verified() {
		return models.AccessUnverified, nil
	}

	ok, err := h.gate.CanAnswer(r.Context(), h.db, user, poll)
	if err != nil {
		return "", err
	}
	if !ok {
		return models.AccessCantAnswer, nil
	}

	var voted bool
	err = h.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM poll_voter WHERE poll_id = $1 AND user_id = $2)
	`, poll.ID, user.ID).Scan(&voted)
	if err != nil {
		return "", err
	}
	if voted {
		return models.AccessAlreadyAnswer, nil
	}

	return models.AccessOK, nil
}

// pollWindow describes the voting window in human terms for the UI.
func pollWindow(poll models.Poll, now time.Time) string {
	switch poll.StatusAt(now) {
	case models.StatusUpcoming:
		return "opens " + humanize.Time(poll.StartsAt)
	case models.StatusExpired:
		return "closed " + humanize.Time(poll.EndsAt)
	default:
		return "closes " + humanize.Time(poll.EndsAt)
	}
}

func pollQuestions(db *sql.DB, pollID string) ([]models.Question, error) {
	rows, err := db.Query(`
		SELECT id, poll_id, title, max_votes
		FROM poll_question WHERE poll_id = $1 ORDER BY id
	`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.PollID, &q.Title, &q.MaxVotes); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range questions {
		optRows, err := db.Query(`
			SELECT id, question_id, title, read_more_url
			FROM question_option WHERE question_id = $1 ORDER BY id
		`, questions[i].ID)
		if err != nil {
			return nil, err
		}
		for optRows.Next() {
			var o models.Option
			if err := optRows.Scan(&o.ID, &o.QuestionID, &o.Title, &o.ReadMoreURL); err != nil {
				optRows.Close()
				return nil, err
			}
			questions[i].Options = append(questions[i].Options, o)
		}
		if err := optRows.Err(); err != nil {
			optRows.Close()
			return nil, err
		}
		optRows.Close()
	}

	return questions, nil
}
