package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SaveImage stores processed image data under ref.
func SaveImage(ctx context.Context, db Querier, ref string, data []byte, mime string, uploadedBy int64) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO images (ref, data, mime, uploaded_by) VALUES (?, ?, ?, ?)`,
		ref, data, mime, uploadedBy,
	)
	if err != nil {
		return fmt.Errorf("saving image: %w", err)
	}
	return nil
}

// GetImage returns image data and MIME type, or nil data if ref is unknown.
func GetImage(ctx context.Context, db Querier, ref string) ([]byte, string, error) {
	var data []byte
	var mime string
	err := db.QueryRowContext(ctx,
		`SELECT data, mime FROM images WHERE ref = ?`, ref,
	).Scan(&data, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting image: %w", err)
	}
	return data, mime, nil
}

// ImageExists reports whether an image with ref has been stored.
func ImageExists(ctx context.Context, db Querier, ref string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM images WHERE ref = ?`, ref,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking image: %w", err)
	}
	return count > 0, nil
}
