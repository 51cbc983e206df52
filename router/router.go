// Copyright (c) 2025 the Agora authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/opencivic/agora/cliparse"
	agoradb "github.com/opencivic/agora/db"
	"github.com/opencivic/agora/handlers"
	"github.com/opencivic/agora/middleware"
)

func NewRouter(db *sql.DB, dialect agoradb.Dialect, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(db, cfg)
	pollHandler := handlers.NewPollHandler(db, cfg)
	votingHandler := handlers.NewVotingHandler(db, dialect, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Users
	mux.HandleFunc("POST /users", middleware.WithLogging(userHandler.Register))
	mux.HandleFunc("POST /users/{id}/verify", middleware.WithLogging(userHandler.Verify))

	// Poll administration
	mux.HandleFunc("POST /polls", middleware.WithLogging(pollHandler.CreatePoll))
	mux.HandleFunc("POST /polls/{id}/questions", middleware.WithLogging(pollHandler.AddQuestion))
	mux.HandleFunc("POST /questions/{id}/options", middleware.WithLogging(pollHandler.AddOption))

	// Voting operations
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.GetPoll))
	mux.HandleFunc("POST /polls/{id}/answers", middleware.WithLogging(votingHandler.SubmitAnswers))
	mux.HandleFunc("GET /polls/{id}/my-answers", middleware.WithLogging(votingHandler.GetMyAnswers))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("agora API v1"))
	})

	return mux
}
