package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: Index claims by status for the admin review queue.
	`CREATE INDEX IF NOT EXISTS idx_claims_status ON claims(status)`,
	// Migration 2: Index notifications by recipient for the inbox.
	`CREATE INDEX IF NOT EXISTS idx_notifications_recipient
	     ON notifications(recipient_id, created_at)`,
}

// Migrate ensures the schema exists and runs all migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
