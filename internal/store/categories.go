package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

// CreateCategory creates a new category.
func CreateCategory(ctx context.Context, db Querier, name, icon string) (*model.Category, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO categories (name, icon) VALUES (?, ?)`,
		name, nullString(icon),
	)
	if err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting category id: %w", err)
	}

	return GetCategory(ctx, db, id)
}

// GetCategory returns a category by ID.
func GetCategory(ctx context.Context, db Querier, id int64) (*model.Category, error) {
	c := &model.Category{}
	var icon sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, icon, created_at FROM categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &icon, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting category: %w", err)
	}
	c.Icon = icon.String
	return c, nil
}

// ListCategories returns all categories ordered by name.
func ListCategories(ctx context.Context, db Querier) ([]model.Category, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, icon, created_at FROM categories ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		var icon sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &icon, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		c.Icon = icon.String
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// SeedCategories inserts any of names that do not exist yet.
func SeedCategories(ctx context.Context, db Querier, names []string) error {
	for _, name := range names {
		if _, err := db.ExecContext(ctx,
			`INSERT OR IGNORE INTO categories (name) VALUES (?)`, name,
		); err != nil {
			return fmt.Errorf("seeding category %q: %w", name, err)
		}
	}
	return nil
}
