// Copyright (c) 2025 the Agora authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Opening a Connection

Open selects the driver from the dialect and verifies the connection:

	dialect, err := db.ParseDialect("postgres")
	conn, err := db.Open(dialect, cfg.DatabaseURL)

Supported backends are postgres (lib/pq) and sqlite (modernc.org/sqlite).
SQLite connections are limited to a single open connection because the
driver allows one writer at a time.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

The schema includes:

  - geozone: Geographic zones for poll restrictions
  - app_user: Registered participants
  - poll: Poll metadata and voting window
  - poll_geozone: Allowed zones for restricted polls
  - poll_question: Questions per poll with max_votes
  - question_option: Selectable options per question
  - poll_voter: One row per user per poll (web or booth origin)
  - poll_answer: One row per selected option per user per question

# Relationships

	poll 1──* poll_question
	poll_question 1──* question_option
	poll 1──* poll_voter
	poll_question 1──* poll_answer
	poll *──* geozone (via poll_geozone)

# Invariants

Two uniqueness constraints carry the correctness of the vote-recording
engine and must never be relaxed:

  - poll_voter (user_id, poll_id): at most one voter per user per poll
  - poll_answer (author_id, question_id, option_id): no duplicate option rows
*/
package db
