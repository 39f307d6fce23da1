package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

func testEvent(recipient int64) model.ClaimDecidedEvent {
	return model.ClaimDecidedEvent{
		ID:            "ev-1",
		RecipientID:   recipient,
		RecipientName: "owner",
		ClaimID:       7,
		ItemID:        3,
		ItemTitle:     "blue keys",
		Decision:      model.ClaimStatusVerified,
		AdminNotes:    "tag matches",
		OccurredAt:    time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := LogSink{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	require.NoError(t, sink.Notify(context.Background(), testEvent(1)))
	assert.Contains(t, buf.String(), `"msg":"claim notification sent"`)
	assert.Contains(t, buf.String(), `"decision":"verified"`)
}

func TestOutboxSink(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, database, "owner", "hash", model.RoleUser)
	require.NoError(t, err)

	sink := OutboxSink{DB: database}
	require.NoError(t, sink.Notify(ctx, testEvent(user.ID)))

	list, err := store.ListNotifications(ctx, database, user.ID, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ev-1", list[0].ID)
	assert.Equal(t, model.NotificationClaimDecided, list[0].Kind)

	var got model.ClaimDecidedEvent
	require.NoError(t, json.Unmarshal(list[0].Payload, &got))
	assert.Equal(t, "blue keys", got.ItemTitle)
	assert.Equal(t, model.ClaimStatusVerified, got.Decision)
}

func TestOutboxSinkGeneratesID(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user, err := store.CreateUser(ctx, database, "owner", "hash", model.RoleUser)
	require.NoError(t, err)

	ev := testEvent(user.ID)
	ev.ID = ""
	require.NoError(t, OutboxSink{DB: database}.Notify(ctx, ev))

	list, err := store.ListNotifications(ctx, database, user.ID, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].ID, 36)
}

func TestMultiTriesEverySink(t *testing.T) {
	var calls int
	counting := SinkFunc(func(context.Context, model.ClaimDecidedEvent) error {
		calls++
		return nil
	})
	boom := errors.New("smtp down")
	failing := SinkFunc(func(context.Context, model.ClaimDecidedEvent) error { return boom })

	err := Multi{failing, counting, Discard}.Notify(context.Background(), testEvent(1))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}
