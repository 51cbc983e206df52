// Copyright (c) 2025 the Agora authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Agora polling API server.

Agora is the polling feature of a citizen-participation platform:
authenticated, verified users answer multi-question polls, and the server
records each user's ballot exactly once even under concurrent or retried
submissions.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... go run main.go

Or with flags:

	go run main.go -p 3240 -d "postgres://..." -t postgres

# Configuration

Required settings:

  - DATABASE_URL (-d): connection string
  - ADMIN_KEY_SALT (--admin-salt): secret for admin key HMAC
  - SESSION_TOKEN_SALT (--session-salt): secret for session token HMAC

Optional settings:

  - PORT (-p): server port (default: 3240)
  - DATABASE_TYPE (-t): "postgres" (default) or "sqlite"

# Architecture

The server uses a handler-based architecture with dependency injection:

  - vote: the vote-recording engine (voter uniqueness, answer-set
    replacement, single-transaction coordination)
  - eligibility: who may answer which poll (verification, window, geozone,
    booth flag)
  - handlers: HTTP request handlers (users, polls, voting)
  - router: route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: request/response and domain types
  - auth: HMAC keys and session tokens
  - db: connection handling and schema creation
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
