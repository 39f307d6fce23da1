package store

import (
	"context"
	"sync"
	"testing"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "alice", "hash123", model.RoleAdmin)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("expected username 'alice', got %q", user.Username)
	}
	if user.Role != model.RoleAdmin {
		t.Errorf("expected role 'admin', got %q", user.Role)
	}
	if user.Reputation != 0 {
		t.Errorf("expected reputation 0, got %d", user.Reputation)
	}

	got, err := GetUser(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("expected 'alice', got %q", got.Username)
	}
}

func TestGetUserByUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	mustUser(t, database, "alice", model.RoleUser)

	user, err := GetUserByUsername(ctx, database, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if user == nil || user.Username != "alice" {
		t.Fatalf("expected alice, got %+v", user)
	}

	missing, err := GetUserByUsername(ctx, database, "bob")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing user")
	}
}

func TestDuplicateUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	mustUser(t, database, "alice", model.RoleUser)
	_, err := CreateUser(ctx, database, "alice", "hash", model.RoleUser)
	if !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
}

func TestListAndDeleteUsers(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a := mustUser(t, database, "a", model.RoleUser)
	mustUser(t, database, "b", model.RoleAdmin)

	users, err := ListUsers(ctx, database)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}

	if err := DeleteUser(ctx, database, a.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	users, _ = ListUsers(ctx, database)
	if len(users) != 1 {
		t.Errorf("expected 1 user after delete, got %d", len(users))
	}
}

func TestUpdateUserPasswordAndRole(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := mustUser(t, database, "pwuser", model.RoleUser)
	if err := UpdateUserPassword(ctx, database, user.ID, "newhash"); err != nil {
		t.Fatalf("UpdateUserPassword: %v", err)
	}
	if err := UpdateUserRole(ctx, database, user.ID, model.RoleAdmin); err != nil {
		t.Fatalf("UpdateUserRole: %v", err)
	}

	got, _ := GetUser(ctx, database, user.ID)
	if got.PasswordHash != "newhash" {
		t.Errorf("expected password hash 'newhash', got %q", got.PasswordHash)
	}
	if got.Role != model.RoleAdmin {
		t.Errorf("expected role admin, got %q", got.Role)
	}
}

func TestIncrementReputationConcurrent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := mustUser(t, database, "finder", model.RoleUser)

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- IncrementReputation(ctx, database, user.ID, model.ReputationForResolution)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("IncrementReputation: %v", err)
		}
	}

	score, err := GetReputation(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetReputation: %v", err)
	}
	if score != n*model.ReputationForResolution {
		t.Errorf("expected reputation %d, got %d", n*model.ReputationForResolution, score)
	}
}

func TestIncrementReputationRejectsNonPositive(t *testing.T) {
	database := db.NewTestDB(t)
	user := mustUser(t, database, "finder", model.RoleUser)

	if err := IncrementReputation(context.Background(), database, user.ID, 0); err == nil {
		t.Error("expected error for zero delta")
	}
	if err := IncrementReputation(context.Background(), database, 999, 10); err == nil {
		t.Error("expected error for unknown user")
	}
}
