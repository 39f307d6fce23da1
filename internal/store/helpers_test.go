package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

func mustUser(t *testing.T, db *sql.DB, name string, role model.Role) *model.User {
	t.Helper()
	u, err := CreateUser(context.Background(), db, name, "hash", role)
	if err != nil {
		t.Fatalf("CreateUser(%q): %v", name, err)
	}
	return u
}

func mustCategory(t *testing.T, db *sql.DB, name string) *model.Category {
	t.Helper()
	c, err := CreateCategory(context.Background(), db, name, "")
	if err != nil {
		t.Fatalf("CreateCategory(%q): %v", name, err)
	}
	return c
}

func mustItem(t *testing.T, db *sql.DB, kind model.ItemKind, categoryID, ownerID int64, title string) *model.Item {
	t.Helper()
	when := time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)
	item, err := CreateItem(context.Background(), db, &model.Item{
		Kind:        kind,
		CategoryID:  categoryID,
		OwnerID:     ownerID,
		Title:       title,
		Description: title + " description",
		Location:    "Library",
		EventAt:     &when,
	})
	if err != nil {
		t.Fatalf("CreateItem(%q): %v", title, err)
	}
	return item
}
