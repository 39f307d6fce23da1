// Package lifecycle moves claims from submission to decision and items from
// active to resolved or archived. It is the only writer of item status once
// a claim exists; every mutation runs in a single transaction.
package lifecycle

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/erazemk/najdeno/internal/apperr"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/notify"
	"github.com/erazemk/najdeno/internal/store"
)

// Manager runs claim and item state transitions against the database.
type Manager struct {
	db     *sql.DB
	sink   notify.Sink
	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewManager returns a Manager that reports decisions to sink. A nil sink
// discards events and a nil logger uses slog.Default.
func NewManager(db *sql.DB, sink notify.Sink, logger *slog.Logger) *Manager {
	if sink == nil {
		sink = notify.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		db:     db,
		sink:   sink,
		logger: logger,
		tracer: otel.Tracer("github.com/erazemk/najdeno/internal/lifecycle"),
		now:    time.Now,
	}
}

// SubmitClaim records a pending claim by actor on a found item. The item
// itself is not changed.
func (m *Manager) SubmitClaim(ctx context.Context, actor model.Actor, itemID int64, proofDescription, proofImageRef string) (*model.Claim, error) {
	ctx, span := m.tracer.Start(ctx, "lifecycle.submit_claim",
		trace.WithAttributes(
			attribute.Int64("item.id", itemID),
			attribute.Int64("actor.id", actor.UserID),
		),
	)
	defer span.End()

	var claim *model.Claim
	err := store.WithTx(ctx, m.db, func(tx *sql.Tx) error {
		item, err := store.GetItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return apperr.NotFound("item %d not found", itemID)
		}
		if item.Kind != model.ItemKindFound {
			return apperr.InvalidOperation(apperr.MsgOnlyFoundClaimable)
		}
		if item.OwnerID == actor.UserID {
			return apperr.InvalidOperation(apperr.MsgOwnItem)
		}

		existing, err := store.FindClaim(ctx, tx, itemID, actor.UserID)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.InvalidOperation(apperr.MsgAlreadyClaimed)
		}

		proof := strings.TrimSpace(proofDescription)
		if proof == "" {
			return apperr.Validation("proof description is required")
		}
		if utf8.RuneCountInString(proof) > model.MaxDescriptionLen {
			return apperr.Validation("proof description must be at most %d characters", model.MaxDescriptionLen)
		}
		if proofImageRef != "" {
			ok, err := store.ImageExists(ctx, tx, proofImageRef)
			if err != nil {
				return err
			}
			if !ok {
				return apperr.Validation("proof image %q not found", proofImageRef)
			}
		}

		claim, err = store.CreateClaim(ctx, tx, itemID, actor.UserID, proof, proofImageRef)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("claim.id", claim.ID))
	m.logger.InfoContext(ctx, "claim submitted",
		"claim_id", claim.ID, "item_id", itemID, "claimant_id", actor.UserID)
	return claim, nil
}

// DecideClaim verifies or rejects a pending claim. Verifying also moves
// the item from active to claimed; if the item is no longer active the
// whole decision is rolled back with a conflict error. Once committed, a
// single event goes to the notification sink; sink errors are logged and
// do not affect the result.
func (m *Manager) DecideClaim(ctx context.Context, actor model.Actor, claimID int64, decision model.ClaimStatus, adminNotes string) (*model.Claim, error) {
	ctx, span := m.tracer.Start(ctx, "lifecycle.decide_claim",
		trace.WithAttributes(
			attribute.Int64("claim.id", claimID),
			attribute.String("decision", string(decision)),
		),
	)
	defer span.End()

	if !actor.IsAdmin() {
		return nil, apperr.Forbidden(apperr.MsgAdminOnly)
	}
	if !decision.IsDecision() {
		return nil, apperr.Validation("decision must be %q or %q", model.ClaimStatusVerified, model.ClaimStatusRejected)
	}
	adminNotes = strings.TrimSpace(adminNotes)

	var (
		claim    *model.Claim
		claimant *model.User
	)
	err := store.WithTx(ctx, m.db, func(tx *sql.Tx) error {
		current, err := store.GetClaim(ctx, tx, claimID)
		if err != nil {
			return err
		}
		if current == nil {
			return apperr.NotFound("claim %d not found", claimID)
		}
		if current.Status != model.ClaimStatusPending {
			return apperr.InvalidOperation(apperr.MsgAlreadyDecided)
		}

		if err := store.UpdateClaimStatus(ctx, tx, claimID, decision, adminNotes, actor.UserID); err != nil {
			return err
		}

		if decision == model.ClaimStatusVerified {
			item, err := store.GetItem(ctx, tx, current.ItemID)
			if err != nil {
				return err
			}
			if item == nil {
				return apperr.NotFound("item %d not found", current.ItemID)
			}
			if !item.Status.CanTransitionTo(model.ItemStatusClaimed) {
				return apperr.Conflict("item %d is %s and cannot be claimed", item.ID, item.Status)
			}
			if err := store.UpdateItemStatus(ctx, tx, current.ItemID, model.ItemStatusActive, model.ItemStatusClaimed); err != nil {
				return err
			}
			note := fmt.Sprintf("claim %d verified", claimID)
			if err := store.RecordItemEvent(ctx, tx, current.ItemID, model.ItemStatusActive, model.ItemStatusClaimed, actor.UserID, note); err != nil {
				return err
			}
		}

		if claim, err = store.GetClaim(ctx, tx, claimID); err != nil {
			return err
		}
		claimant, err = store.GetUser(ctx, tx, current.ClaimantID)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	m.logger.InfoContext(ctx, "claim decided",
		"claim_id", claim.ID, "item_id", claim.ItemID, "decision", decision, "admin_id", actor.UserID)

	ev := model.ClaimDecidedEvent{
		ID:          uuid.NewString(),
		RecipientID: claim.ClaimantID,
		ClaimID:     claim.ID,
		ItemID:      claim.ItemID,
		ItemTitle:   claim.ItemTitle,
		Decision:    decision,
		AdminNotes:  adminNotes,
		OccurredAt:  m.now().UTC(),
	}
	if claimant != nil {
		ev.RecipientName = claimant.Username
	}
	// The decision is committed; a cancelled request must not drop the event.
	if err := m.sink.Notify(context.WithoutCancel(ctx), ev); err != nil {
		m.logger.WarnContext(ctx, "claim notification failed",
			"claim_id", claim.ID, "event_id", ev.ID, "error", err)
	}

	return claim, nil
}

// ResolveItem marks a claimed item as returned and credits its reporter
// with reputation, both in one transaction.
func (m *Manager) ResolveItem(ctx context.Context, actor model.Actor, itemID int64) (*model.Item, error) {
	ctx, span := m.tracer.Start(ctx, "lifecycle.resolve_item",
		trace.WithAttributes(attribute.Int64("item.id", itemID)),
	)
	defer span.End()

	item, err := m.transition(ctx, actor, itemID, model.ItemStatusResolved, func(tx *sql.Tx, item *model.Item) error {
		return store.IncrementReputation(ctx, tx, item.OwnerID, model.ReputationForResolution)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	m.logger.InfoContext(ctx, "item resolved",
		"item_id", item.ID, "owner_id", item.OwnerID, "reputation_delta", model.ReputationForResolution)
	return item, nil
}

// ArchiveItem withdraws an active item without a resolution.
func (m *Manager) ArchiveItem(ctx context.Context, actor model.Actor, itemID int64) (*model.Item, error) {
	ctx, span := m.tracer.Start(ctx, "lifecycle.archive_item",
		trace.WithAttributes(attribute.Int64("item.id", itemID)),
	)
	defer span.End()

	item, err := m.transition(ctx, actor, itemID, model.ItemStatusArchived, nil)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	m.logger.InfoContext(ctx, "item archived", "item_id", item.ID)
	return item, nil
}

// transition moves an item to status to as an admin, running extra
// inside the same transaction. The move must be allowed by the item
// state machine from the item's current status.
func (m *Manager) transition(ctx context.Context, actor model.Actor, itemID int64, to model.ItemStatus, extra func(*sql.Tx, *model.Item) error) (*model.Item, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Forbidden(apperr.MsgAdminOnly)
	}

	var item *model.Item
	err := store.WithTx(ctx, m.db, func(tx *sql.Tx) error {
		current, err := store.GetItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if current == nil {
			return apperr.NotFound("item %d not found", itemID)
		}
		from := current.Status
		if !from.CanTransitionTo(to) {
			return apperr.InvalidOperation("item is %s and cannot become %s", from, to)
		}

		if err := store.UpdateItemStatus(ctx, tx, itemID, from, to); err != nil {
			return err
		}
		if extra != nil {
			if err := extra(tx, current); err != nil {
				return err
			}
		}
		if err := store.RecordItemEvent(ctx, tx, itemID, from, to, actor.UserID, ""); err != nil {
			return err
		}

		item, err = store.GetItem(ctx, tx, itemID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}
