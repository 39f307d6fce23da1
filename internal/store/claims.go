package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/apperr"
	"github.com/erazemk/najdeno/internal/model"
)

const claimSelect = `SELECT cl.id, cl.item_id, cl.claimant_id, cl.status, cl.proof_description,
        cl.proof_image_ref, cl.admin_notes, cl.created_at, cl.decided_at, cl.decided_by,
        i.title AS item_title, u.username AS claimant_name
 FROM claims cl
 JOIN items i ON i.id = cl.item_id
 JOIN users u ON u.id = cl.claimant_id`

func scanClaim(row interface{ Scan(...any) error }, c *model.Claim) error {
	var proofImage, notes sql.NullString
	err := row.Scan(&c.ID, &c.ItemID, &c.ClaimantID, &c.Status, &c.ProofDescription,
		&proofImage, &notes, &c.CreatedAt, &c.DecidedAt, &c.DecidedBy,
		&c.ItemTitle, &c.ClaimantName)
	if err != nil {
		return err
	}
	c.ProofImageRef = proofImage.String
	c.AdminNotes = notes.String
	return nil
}

// CreateClaim inserts a pending claim. The (item_id, claimant_id) UNIQUE
// constraint is the source of truth for duplicates: a second insert for the
// same pair fails with an "already claimed" error even if a concurrent
// caller passed the same pre-check.
func CreateClaim(ctx context.Context, db Querier, itemID, claimantID int64, proofDescription, proofImageRef string) (*model.Claim, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO claims (item_id, claimant_id, proof_description, proof_image_ref)
		 VALUES (?, ?, ?, ?)`,
		itemID, claimantID, proofDescription, nullString(proofImageRef),
	)
	if IsUniqueViolation(err) {
		return nil, apperr.Wrap(apperr.KindInvalidOperation, apperr.MsgAlreadyClaimed, err)
	}
	if err != nil {
		return nil, fmt.Errorf("creating claim: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting claim id: %w", err)
	}

	return GetClaim(ctx, db, id)
}

// GetClaim returns a claim by ID.
func GetClaim(ctx context.Context, db Querier, id int64) (*model.Claim, error) {
	c := &model.Claim{}
	err := scanClaim(db.QueryRowContext(ctx, claimSelect+` WHERE cl.id = ?`, id), c)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}
	return c, nil
}

// FindClaim returns the claim a claimant made on an item, if any.
func FindClaim(ctx context.Context, db Querier, itemID, claimantID int64) (*model.Claim, error) {
	c := &model.Claim{}
	err := scanClaim(db.QueryRowContext(ctx,
		claimSelect+` WHERE cl.item_id = ? AND cl.claimant_id = ?`, itemID, claimantID,
	), c)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding claim: %w", err)
	}
	return c, nil
}

// ClaimFilter narrows ListClaims. Zero values match everything.
type ClaimFilter struct {
	Status     model.ClaimStatus
	ItemID     int64
	ClaimantID int64
}

// ListClaims returns claims matching the filter, newest first.
func ListClaims(ctx context.Context, db Querier, f ClaimFilter) ([]model.Claim, error) {
	query := claimSelect + ` WHERE 1=1`
	var args []any

	if f.Status != "" {
		query += ` AND cl.status = ?`
		args = append(args, f.Status)
	}
	if f.ItemID > 0 {
		query += ` AND cl.item_id = ?`
		args = append(args, f.ItemID)
	}
	if f.ClaimantID > 0 {
		query += ` AND cl.claimant_id = ?`
		args = append(args, f.ClaimantID)
	}

	query += ` ORDER BY cl.created_at DESC, cl.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}
	defer rows.Close()

	var claims []model.Claim
	for rows.Next() {
		var c model.Claim
		if err := scanClaim(rows, &c); err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

// UpdateClaimStatus records a decision on a pending claim. It is a
// compare-and-set on the pending status: if the claim was already decided,
// by this caller or a concurrent one, nothing changes and an
// "already decided" error is returned.
func UpdateClaimStatus(ctx context.Context, db Querier, id int64, status model.ClaimStatus, adminNotes string, decidedBy int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE claims SET status = ?, admin_notes = ?, decided_at = CURRENT_TIMESTAMP, decided_by = ?
		 WHERE id = ? AND status = 'pending'`,
		status, nullString(adminNotes), decidedBy, id,
	)
	if err != nil {
		return fmt.Errorf("updating claim status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating claim status: %w", err)
	}
	if n == 0 {
		return apperr.InvalidOperation(apperr.MsgAlreadyDecided)
	}
	return nil
}

// CountClaims returns the number of claims on an item.
func CountClaims(ctx context.Context, db Querier, itemID int64) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM claims WHERE item_id = ?`, itemID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting claims: %w", err)
	}
	return count, nil
}
