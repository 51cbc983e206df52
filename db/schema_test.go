// Copyright (c) 2025 the Agora authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCreateSchemaIdempotent(t *testing.T) {
	conn, err := Open(DialectSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer conn.Close()

	if err := CreateSchema(conn); err != nil {
		t.Fatalf("First CreateSchema failed: %v", err)
	}
	if err := CreateSchema(conn); err != nil {
		t.Fatalf("Second CreateSchema failed: %v", err)
	}
}

func TestDuplicateVoterRejected(t *testing.T) {
	conn, err := Open(DialectSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer conn.Close()

	if err := CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	now := time.Now()
	pollID := uuid.NewString()
	userID := uuid.NewString()

	_, err = conn.Exec(`
		INSERT INTO poll (id, name, summary, description, starts_at, ends_at, geozone_restricted, created_at)
		VALUES ($1, 'Poll', '', '', $2, $3, FALSE, $4)
	`, pollID, now.Add(-time.Hour), now.Add(time.Hour), now)
	if err != nil {
		t.Fatalf("Failed to insert poll: %v", err)
	}
	_, err = conn.Exec(`
		INSERT INTO app_user (id, username, document_number, verification_level, created_at)
		VALUES ($1, 'alice', '12345678Z', 2, $2)
	`, userID, now)
	if err != nil {
		t.Fatalf("Failed to insert user: %v", err)
	}

	insertVoter := func() error {
		_, err := conn.Exec(`
			INSERT INTO poll_voter (id, poll_id, user_id, document_number, origin, officer_id, created_at)
			VALUES ($1, $2, $3, '12345678Z', 'web', NULL, $4)
		`, uuid.NewString(), pollID, userID, now)
		return err
	}

	if err := insertVoter(); err != nil {
		t.Fatalf("First voter insert failed: %v", err)
	}
	if err := insertVoter(); err == nil {
		t.Fatal("Second voter insert for same (user, poll) should violate uniqueness")
	}
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		input    string
		expected Dialect
		wantErr  bool
	}{
		{"postgres", DialectPostgres, false},
		{"sqlite", DialectSQLite, false},
		{"oracle", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseDialect(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDialect(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDialect(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseDialect(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestLockSuffix(t *testing.T) {
	if got := DialectPostgres.LockSuffix(); got != " FOR UPDATE" {
		t.Errorf("Expected postgres lock suffix ' FOR UPDATE', got %q", got)
	}
	if got := DialectSQLite.LockSuffix(); got != "" {
		t.Errorf("Expected empty sqlite lock suffix, got %q", got)
	}
}
