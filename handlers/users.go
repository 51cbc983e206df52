// Copyright (c) 2025 the Agora authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/opencivic/agora/auth"
	"github.com/opencivic/agora/cliparse"
	"github.com/opencivic/agora/middleware"
	"github.com/opencivic/agora/models"
)

type UserHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewUserHandler(db *sql.DB, cfg cliparse.Config) *UserHandler {
	return &UserHandler{db: db, cfg: cfg}
}

// Register handles POST /users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterUserRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Username == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "username is required")
		return
	}
	if len(req.Username) < 2 || len(req.Username) > 50 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "username must be 2-50 characters")
		return
	}

	var geozoneID *string
	if req.GeozoneID != "" {
		geozoneID = &req.GeozoneID
	}

	userID := uuid.NewString()
	_, err := h.db.Exec(`
		INSERT INTO app_user (id, username, document_number, verification_level, geozone_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, userID, req.Username, req.DocumentNumber, models.LevelUnverified, geozoneID, time.Now())

	if err != nil {
		slog.Error("failed to insert user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	slog.Info("user registered", "user_id", userID, "username", req.Username)

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterUserResponse{
		UserID:       userID,
		SessionToken: auth.GenerateSessionToken(userID, h.cfg.SessionTokenSalt),
	})
}

// Verify handles POST /users/{id}/verify. Verification itself (document
// checks, census lookups) happens out of band; this endpoint records the
// outcome and is admin-key protected.
func (h *UserHandler) Verify(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user id is required")
		return
	}

	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	res, err := h.db.Exec(`
		UPDATE app_user SET verification_level = $1 WHERE id = $2
	`, models.LevelVerified, userID)
	if err != nil {
		slog.Error("failed to verify user", "error", err, "user_id", userID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to verify user")
		return
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}

	slog.Info("user verified", "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}
