package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/najdeno/internal/apperr"
	"github.com/erazemk/najdeno/internal/model"
)

const itemSelect = `SELECT i.id, i.kind, i.status, i.category_id, i.title, i.description, i.location,
        i.event_at, i.owner_id, i.view_count, i.image_ref, i.created_at, i.updated_at,
        c.name AS category_name, u.username AS owner_name,
        (SELECT COUNT(*) FROM claims cl WHERE cl.item_id = i.id AND cl.status = 'pending') AS pending_claims
 FROM items i
 JOIN categories c ON c.id = i.category_id
 JOIN users u ON u.id = i.owner_id`

func scanItem(row interface{ Scan(...any) error }, item *model.Item) error {
	var imageRef sql.NullString
	err := row.Scan(&item.ID, &item.Kind, &item.Status, &item.CategoryID, &item.Title, &item.Description,
		&item.Location, &item.EventAt, &item.OwnerID, &item.ViewCount, &imageRef,
		&item.CreatedAt, &item.UpdatedAt,
		&item.CategoryName, &item.OwnerName, &item.PendingClaims)
	if err != nil {
		return err
	}
	item.ImageRef = imageRef.String
	return nil
}

func scanItems(rows *sql.Rows) ([]model.Item, error) {
	var items []model.Item
	for rows.Next() {
		var item model.Item
		if err := scanItem(rows, &item); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CreateItem stores a new report. Kind, category, title and owner are
// taken from item; status always starts active.
func CreateItem(ctx context.Context, db Querier, item *model.Item) (*model.Item, error) {
	var eventAt *time.Time
	if item.EventAt != nil {
		t := item.EventAt.UTC()
		eventAt = &t
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO items (kind, category_id, title, description, location, event_at, owner_id, image_ref)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Kind, item.CategoryID, item.Title, item.Description, item.Location,
		eventAt, item.OwnerID, nullString(item.ImageRef),
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID.
func GetItem(ctx context.Context, db Querier, id int64) (*model.Item, error) {
	item := &model.Item{}
	err := scanItem(db.QueryRowContext(ctx, itemSelect+` WHERE i.id = ?`, id), item)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ItemFilter narrows ListItems. Zero values match everything.
type ItemFilter struct {
	Kind       model.ItemKind
	Status     model.ItemStatus
	CategoryID int64
	OwnerID    int64
	// Search matches title, description or location case-insensitively.
	Search string
}

// ListItems returns items matching the filter, newest first.
func ListItems(ctx context.Context, db Querier, f ItemFilter) ([]model.Item, error) {
	query := itemSelect + ` WHERE 1=1`
	var args []any

	if f.Kind != "" {
		query += ` AND i.kind = ?`
		args = append(args, f.Kind)
	}
	if f.Status != "" {
		query += ` AND i.status = ?`
		args = append(args, f.Status)
	}
	if f.CategoryID > 0 {
		query += ` AND i.category_id = ?`
		args = append(args, f.CategoryID)
	}
	if f.OwnerID > 0 {
		query += ` AND i.owner_id = ?`
		args = append(args, f.OwnerID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + s + "%"
		query += ` AND (i.title LIKE ? OR i.description LIKE ? OR i.location LIKE ?)`
		args = append(args, like, like, like)
	}

	query += ` ORDER BY i.created_at DESC, i.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// QueryItems returns every item with the given kind, category and status
// in ascending ID order. The order is stable across calls and is the
// enumeration order candidate ranking falls back to on ties.
func QueryItems(ctx context.Context, db Querier, kind model.ItemKind, categoryID int64, status model.ItemStatus) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		itemSelect+` WHERE i.kind = ? AND i.category_id = ? AND i.status = ? ORDER BY i.id`,
		kind, categoryID, status,
	)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// UpdateItemStatus moves an item from one status to another. The update
// only applies if the item is still in the from status; otherwise a
// conflict error is returned and nothing changes.
func UpdateItemStatus(ctx context.Context, db Querier, id int64, from, to model.ItemStatus) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		to, id, from,
	)
	if err != nil {
		return fmt.Errorf("updating item status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating item status: %w", err)
	}
	if n == 0 {
		return apperr.Conflict("item %d is no longer %s", id, from)
	}
	return nil
}

// IncrementViews bumps an item's view counter.
func IncrementViews(ctx context.Context, db Querier, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET view_count = view_count + 1 WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("incrementing views: %w", err)
	}
	return nil
}

// RecordItemEvent appends a status transition to the item's history.
func RecordItemEvent(ctx context.Context, db Querier, itemID int64, from, to model.ItemStatus, actorID int64, note string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO item_events (item_id, from_status, to_status, actor_id, note) VALUES (?, ?, ?, ?, ?)`,
		itemID, from, to, actorID, nullString(note),
	)
	if err != nil {
		return fmt.Errorf("recording item event: %w", err)
	}
	return nil
}

// GetItemHistory returns the status transitions of an item, oldest first.
func GetItemHistory(ctx context.Context, db Querier, itemID int64) ([]model.ItemEvent, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT e.id, e.item_id, e.from_status, e.to_status, e.actor_id, e.note, e.created_at,
		        u.username AS actor_name
		 FROM item_events e
		 JOIN users u ON u.id = e.actor_id
		 WHERE e.item_id = ?
		 ORDER BY e.id`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("getting item history: %w", err)
	}
	defer rows.Close()

	var events []model.ItemEvent
	for rows.Next() {
		var e model.ItemEvent
		var note sql.NullString
		if err := rows.Scan(&e.ID, &e.ItemID, &e.FromStatus, &e.ToStatus, &e.ActorID, &note,
			&e.CreatedAt, &e.ActorName); err != nil {
			return nil, fmt.Errorf("scanning item event: %w", err)
		}
		e.Note = note.String
		events = append(events, e)
	}
	return events, rows.Err()
}

// ItemReader exposes item lookups over a Querier as methods, for
// consumers that depend on an interface rather than the store package.
type ItemReader struct {
	DB Querier
}

// GetItem returns an item by ID, or nil if it does not exist.
func (r ItemReader) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	return GetItem(ctx, r.DB, id)
}

// QueryItems returns items with the given kind, category and status.
func (r ItemReader) QueryItems(ctx context.Context, kind model.ItemKind, categoryID int64, status model.ItemStatus) ([]model.Item, error) {
	return QueryItems(ctx, r.DB, kind, categoryID, status)
}
