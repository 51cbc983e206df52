// Copyright (c) 2025 the Agora authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vote

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/opencivic/agora/models"
	"github.com/opencivic/agora/testutil"
)

// Two submissions can both miss the initial voter read and then race on the
// insert. The loser's insert must not error (an error would abort the
// transaction on postgres and doom the recovery read); it must report the
// collision so the winner's row can be re-read.
func TestVoterInsertCollisionRereadsWinner(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	cfg := testutil.GetTestConfig()
	ctx := context.Background()

	poll := testutil.CreateTestPoll(t, conn, models.StatusCurrent)
	user, _ := testutil.CreateTestUser(t, conn, cfg, "alice", models.LevelVerified, "")

	// Winner commits its voter row.
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	winner, err := ensureVoter(ctx, tx, poll, user)
	if err != nil {
		t.Fatalf("ensureVoter failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}

	// Loser reached its insert believing no row exists.
	tx, err = conn.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	loser := models.Voter{
		ID:             uuid.NewString(),
		PollID:         poll.ID,
		UserID:         user.ID,
		DocumentNumber: user.DocumentNumber,
		Origin:         models.OriginWeb,
		CreatedAt:      time.Now(),
	}

	inserted, err := insertVoter(ctx, tx, loser)
	if err != nil {
		t.Fatalf("Colliding insert must not error: %v", err)
	}
	if inserted {
		t.Fatal("Expected insert to report the collision")
	}

	// The transaction is still usable: the recovery read runs in it and
	// returns the winner's row.
	got, err := findVoter(ctx, tx, poll.ID, user.ID)
	if err != nil {
		t.Fatalf("Recovery read failed: %v", err)
	}
	if got.ID != winner.ID {
		t.Errorf("Expected winner's voter %s, got %s", winner.ID, got.ID)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit after collision: %v", err)
	}

	if n := testutil.CountVoters(t, conn, poll.ID); n != 1 {
		t.Errorf("Expected exactly 1 voter row, got %d", n)
	}
}

func TestEnsureVoterReturnsExistingRow(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	cfg := testutil.GetTestConfig()
	ctx := context.Background()

	poll := testutil.CreateTestPoll(t, conn, models.StatusCurrent)
	user, _ := testutil.CreateTestUser(t, conn, cfg, "alice", models.LevelVerified, "")

	submit := func() models.Voter {
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			t.Fatalf("Failed to begin transaction: %v", err)
		}
		defer tx.Rollback()

		voter, err := ensureVoter(ctx, tx, poll, user)
		if err != nil {
			t.Fatalf("ensureVoter failed: %v", err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatalf("Failed to commit: %v", err)
		}
		return voter
	}

	first := submit()
	second := submit()

	if first.ID != second.ID {
		t.Errorf("Expected the same voter row, got %s and %s", first.ID, second.ID)
	}
	if n := testutil.CountVoters(t, conn, poll.ID); n != 1 {
		t.Errorf("Expected exactly 1 voter row, got %d", n)
	}
}
