// Package notify delivers claim decision events to the people they concern.
// Delivery is best-effort: a failed sink never undoes the decision that
// produced the event.
package notify

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// Sink accepts claim decision events.
type Sink interface {
	Notify(ctx context.Context, ev model.ClaimDecidedEvent) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, ev model.ClaimDecidedEvent) error

// Notify calls f.
func (f SinkFunc) Notify(ctx context.Context, ev model.ClaimDecidedEvent) error {
	return f(ctx, ev)
}

// LogSink writes each event to a structured logger.
type LogSink struct {
	Logger *slog.Logger
}

// Notify logs ev at INFO.
func (s LogSink) Notify(ctx context.Context, ev model.ClaimDecidedEvent) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "claim notification sent",
		"event_id", ev.ID,
		"claim_id", ev.ClaimID,
		"item_id", ev.ItemID,
		"recipient", ev.RecipientName,
		"decision", ev.Decision,
	)
	return nil
}

// OutboxSink stores each event as a notification row the recipient can
// read back through the API.
type OutboxSink struct {
	DB *sql.DB
}

// Notify inserts ev into the notifications table.
func (s OutboxSink) Notify(ctx context.Context, ev model.ClaimDecidedEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	id := ev.ID
	if id == "" {
		id = uuid.NewString()
	}

	return store.InsertNotification(ctx, s.DB, &model.Notification{
		ID:          id,
		RecipientID: ev.RecipientID,
		Kind:        model.NotificationClaimDecided,
		Payload:     payload,
	})
}

// Multi fans each event out to every sink and joins their errors. Every
// sink is tried even if an earlier one fails.
type Multi []Sink

// Notify delivers ev to each sink in order.
func (m Multi) Notify(ctx context.Context, ev model.ClaimDecidedEvent) error {
	var errs []error
	for _, s := range m {
		if err := s.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every event.
var Discard Sink = SinkFunc(func(context.Context, model.ClaimDecidedEvent) error { return nil })
