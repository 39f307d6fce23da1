package store

import (
	"context"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

// InsertNotification appends a notification to a recipient's inbox.
func InsertNotification(ctx context.Context, db Querier, n *model.Notification) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO notifications (id, recipient_id, kind, payload) VALUES (?, ?, ?, ?)`,
		n.ID, n.RecipientID, n.Kind, n.Payload,
	)
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

// ListNotifications returns a recipient's notifications, newest first.
func ListNotifications(ctx context.Context, db Querier, recipientID int64, unreadOnly bool) ([]model.Notification, error) {
	query := `SELECT id, recipient_id, kind, payload, created_at, read_at
	          FROM notifications WHERE recipient_id = ?`
	if unreadOnly {
		query += ` AND read_at IS NULL`
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var out []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Kind, &n.Payload, &n.CreatedAt, &n.ReadAt); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkNotificationRead marks one of the recipient's notifications read.
// It reports false if no unread notification with that ID belongs to them.
func MarkNotificationRead(ctx context.Context, db Querier, id string, recipientID int64) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE notifications SET read_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND recipient_id = ? AND read_at IS NULL`,
		id, recipientID,
	)
	if err != nil {
		return false, fmt.Errorf("marking notification read: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("marking notification read: %w", err)
	}
	return n > 0, nil
}
