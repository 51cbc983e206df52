// Copyright (c) 2025 the Agora authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Geozones
CREATE TABLE IF NOT EXISTS geozone (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL
);

-- Users
CREATE TABLE IF NOT EXISTS app_user (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    document_number TEXT NOT NULL DEFAULT '',
    verification_level INTEGER NOT NULL DEFAULT 0 CHECK (verification_level IN (0, 1, 2)),
    geozone_id TEXT REFERENCES geozone(id),
    created_at TIMESTAMP NOT NULL
);

-- Polls
CREATE TABLE IF NOT EXISTS poll (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    summary TEXT,
    description TEXT,
    starts_at TIMESTAMP NOT NULL,
    ends_at TIMESTAMP NOT NULL,
    geozone_restricted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL
);

-- Allowed geozones for restricted polls
CREATE TABLE IF NOT EXISTS poll_geozone (
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    geozone_id TEXT NOT NULL REFERENCES geozone(id) ON DELETE CASCADE,
    PRIMARY KEY (poll_id, geozone_id)
);

-- Questions
CREATE TABLE IF NOT EXISTS poll_question (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    max_votes INTEGER NOT NULL DEFAULT 1 CHECK (max_votes >= 1)
);

CREATE INDEX IF NOT EXISTS idx_poll_question_poll_id ON poll_question(poll_id);

-- Options
CREATE TABLE IF NOT EXISTS question_option (
    id TEXT PRIMARY KEY,
    question_id TEXT NOT NULL REFERENCES poll_question(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    read_more_url TEXT
);

CREATE INDEX IF NOT EXISTS idx_question_option_question_id ON question_option(question_id);

-- Voters: one row asserts "this user has cast a ballot in this poll".
-- The (user_id, poll_id) uniqueness constraint is the load-bearing
-- invariant of the vote-recording engine; it is enforced here and nowhere
-- else.
CREATE TABLE IF NOT EXISTS poll_voter (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES app_user(id),
    document_number TEXT NOT NULL,
    origin TEXT NOT NULL CHECK (origin IN ('web', 'booth')),
    officer_id TEXT,
    ip_hash TEXT,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (user_id, poll_id)
);

CREATE INDEX IF NOT EXISTS idx_poll_voter_poll_id ON poll_voter(poll_id);

-- Answers: selections are replaced as a set, never updated in place.
-- The uniqueness constraint prevents duplicated rows for one option when
-- replacements race.
CREATE TABLE IF NOT EXISTS poll_answer (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    question_id TEXT NOT NULL REFERENCES poll_question(id) ON DELETE CASCADE,
    option_id TEXT NOT NULL REFERENCES question_option(id) ON DELETE CASCADE,
    author_id TEXT NOT NULL REFERENCES app_user(id),
    created_at TIMESTAMP NOT NULL,
    UNIQUE (author_id, question_id, option_id)
);

CREATE INDEX IF NOT EXISTS idx_poll_answer_question ON poll_answer(author_id, question_id);
CREATE INDEX IF NOT EXISTS idx_poll_answer_poll_id ON poll_answer(poll_id);
`
