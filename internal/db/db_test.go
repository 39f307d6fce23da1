package db

import (
	"strings"
	"testing"
)

func TestDSNAppliesPragmas(t *testing.T) {
	got := dsn("/tmp/najdeno.sqlite3")
	if !strings.HasPrefix(got, "/tmp/najdeno.sqlite3?") {
		t.Errorf("unexpected dsn prefix: %s", got)
	}
	for _, want := range []string{"busy_timeout%285000%29", "foreign_keys%28ON%29", "_txlock=immediate"} {
		if !strings.Contains(got, want) {
			t.Errorf("dsn %q missing %q", got, want)
		}
	}
}

func TestMigrateIdempotent(t *testing.T) {
	database := NewTestDB(t)

	if err := Migrate(database); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	var fk int
	if err := database.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("reading foreign_keys pragma: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign keys enabled, got %d", fk)
	}
}
