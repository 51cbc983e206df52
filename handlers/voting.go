// Copyright (c) 2025 the Agora authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/opencivic/agora/auth"
	"github.com/opencivic/agora/cliparse"
	agoradb "github.com/opencivic/agora/db"
	"github.com/opencivic/agora/eligibility"
	"github.com/opencivic/agora/middleware"
	"github.com/opencivic/agora/models"
	"github.com/opencivic/agora/vote"
)

type VotingHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	recorder *vote.Recorder
}

func NewVotingHandler(db *sql.DB, dialect agoradb.Dialect, cfg cliparse.Config) *VotingHandler {
	gate := eligibility.NewChecker()
	return &VotingHandler{
		db:       db,
		cfg:      cfg,
		recorder: vote.NewRecorder(db, dialect, gate),
	}
}

// SubmitAnswers handles POST /polls/{id}/answers. The body maps question ids
// to selected option ids; an empty or absent body clears all of the caller's
// answers while keeping their voter record.
func (h *VotingHandler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	user, err := currentUser(h.db, h.cfg, r)
	if err == errNoSession || err == errBadSession || err == errUserUnknown {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Valid session required")
		return
	}
	if err != nil {
		slog.Error("failed to load user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// An empty submission is legal: it records the voter with no answers.
	var req models.SubmitAnswersRequest
	if r.ContentLength != 0 {
		if err := middleware.ParseJSONBody(r, &req); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
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

	result, err := h.recorder.Record(r.Context(), poll, user, req.Answers)
	if err != nil {
		h.writeRecordError(w, poll, user, err)
		return
	}

	// Hash the client IP for abuse investigation. Reuse admin salt for IP
	// hashing. Telemetry only, so a failure never fails the submission.
	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.AdminKeySalt)
	if _, err := h.db.ExecContext(r.Context(), `
		UPDATE poll_voter SET ip_hash = $1 WHERE id = $2
	`, ipHash, result.Voter.ID); err != nil {
		slog.Error("failed to store ip hash", "error", err, "voter_id", result.Voter.ID)
	}

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitAnswersResponse{
		VoterID: result.Voter.ID,
		Answers: result.Answers,
		Message: "Vote recorded",
	})
}

func (h *VotingHandler) writeRecordError(w http.ResponseWriter, poll models.Poll, user models.User, err error) {
	switch {
	case errors.Is(err, vote.ErrNotEligible):
		middleware.ErrorResponse(w, http.StatusForbidden, "You cannot vote in this poll")
	case errors.Is(err, vote.ErrInvalidSelection):
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, vote.ErrVoterInvalid):
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.Error("failed to record vote", "error", err, "poll_id", poll.ID, "user_id", user.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
	}
}

// GetMyAnswers handles GET /polls/{id}/my-answers, returning the caller's
// current per-question selections for form pre-checking.
func (h *VotingHandler) GetMyAnswers(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	user, err := currentUser(h.db, h.cfg, r)
	if err == errNoSession || err == errBadSession || err == errUserUnknown {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Valid session required")
		return
	}
	if err != nil {
		slog.Error("failed to load user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	answers, err := userAnswers(h.db, pollID, user.ID)
	if err != nil {
		slog.Error("failed to query answers", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MyAnswersResponse{Answers: answers})
}
