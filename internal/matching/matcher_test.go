package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/erazemk/najdeno/internal/apperr"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// fakeSource returns every item regardless of the query so the matcher's
// own filtering is exercised.
type fakeSource struct {
	items []model.Item
	err   error
}

func (f *fakeSource) GetItem(_ context.Context, id int64) (*model.Item, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			it := f.items[i]
			return &it, nil
		}
	}
	return nil, nil
}

func (f *fakeSource) QueryItems(context.Context, model.ItemKind, int64, model.ItemStatus) ([]model.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func TestFindMatchesMissingReference(t *testing.T) {
	m := NewMatcher(&fakeSource{}, DefaultWeights())
	_, err := m.FindMatches(context.Background(), 42)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "got %v", err)
}

func TestFindMatchesStoreError(t *testing.T) {
	ref := item(model.ItemKindLost, "keys", "Library", day(10))
	ref.ID = 1
	m := NewMatcher(&fakeSource{items: []model.Item{ref}, err: errors.New("disk on fire")}, DefaultWeights())
	_, err := m.FindMatches(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnknown, apperr.KindOf(err))
}

func TestFindMatchesFiltersAndRanks(t *testing.T) {
	mk := func(id int64, kind model.ItemKind, cat int64, status model.ItemStatus, title string) model.Item {
		it := item(kind, title, "Library", day(10))
		it.ID, it.CategoryID, it.Status = id, cat, status
		return it
	}
	src := &fakeSource{items: []model.Item{
		mk(1, model.ItemKindLost, 1, model.ItemStatusActive, "blue keys"),
		mk(2, model.ItemKindFound, 1, model.ItemStatusActive, "keys"),       // 100
		mk(3, model.ItemKindLost, 1, model.ItemStatusActive, "blue keys"),   // same kind
		mk(4, model.ItemKindFound, 2, model.ItemStatusActive, "blue keys"),  // other category
		mk(5, model.ItemKindFound, 1, model.ItemStatusClaimed, "blue keys"), // not active
		mk(6, model.ItemKindFound, 1, model.ItemStatusActive, "umbrella"),   // 50
		mk(7, model.ItemKindFound, 1, model.ItemStatusActive, "blue keys"),  // 100, after 2
	}}

	matches, err := NewMatcher(src, DefaultWeights()).FindMatches(context.Background(), 1)
	require.NoError(t, err)

	var ids []int64
	for _, c := range matches {
		ids = append(ids, c.Item.ID)
		assert.Equal(t, int64(1), c.ReferenceID)
	}
	assert.Equal(t, []int64{2, 7, 6}, ids)
	assert.Equal(t, 100, matches[0].Score)
	assert.Equal(t, 50, matches[2].Score)
}

func TestFindMatchesThresholdFixedAtConstruction(t *testing.T) {
	ref := item(model.ItemKindLost, "blue keys", "Library", day(10))
	ref.ID = 1
	cand := item(model.ItemKindFound, "umbrella", "Library", day(10))
	cand.ID = 2
	src := &fakeSource{items: []model.Item{ref, cand}}

	w := DefaultWeights()
	w.Threshold = 60
	matches, err := NewMatcher(src, w).FindMatches(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.NotNil(t, matches)
}

func TestFindMatchesProperties(t *testing.T) {
	titles := []string{"keys", "blue keys", "wallet", "black leather wallet", "phone", "umbrella"}
	locations := []string{"", "Library", "Main Library", "Gym", "cafeteria"}

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(t, "n")
		items := make([]model.Item, n)
		for i := range items {
			items[i] = model.Item{
				ID:         int64(i + 1),
				Kind:       rapid.SampledFrom([]model.ItemKind{model.ItemKindLost, model.ItemKindFound}).Draw(t, "kind"),
				Status:     rapid.SampledFrom([]model.ItemStatus{model.ItemStatusActive, model.ItemStatusClaimed, model.ItemStatusArchived}).Draw(t, "status"),
				CategoryID: rapid.Int64Range(1, 2).Draw(t, "category"),
				Title:      rapid.SampledFrom(titles).Draw(t, "title"),
				Location:   rapid.SampledFrom(locations).Draw(t, "location"),
				EventAt:    day(rapid.IntRange(1, 20).Draw(t, "day")),
			}
		}
		ref := items[rapid.IntRange(0, n-1).Draw(t, "ref")]

		w := DefaultWeights()
		matches, err := NewMatcher(&fakeSource{items: items}, w).FindMatches(context.Background(), ref.ID)
		if err != nil {
			t.Fatalf("FindMatches: %v", err)
		}

		lastID := int64(0)
		for i, c := range matches {
			if c.Item.ID == ref.ID {
				t.Fatalf("reference item returned as its own match")
			}
			if c.Item.Kind != ref.Kind.Opposite() || c.Item.CategoryID != ref.CategoryID || c.Item.Status != model.ItemStatusActive {
				t.Fatalf("filtered item %d scored", c.Item.ID)
			}
			if c.Score < w.Threshold || c.Score > 100 {
				t.Fatalf("score %d outside [%d, 100]", c.Score, w.Threshold)
			}
			if i > 0 {
				prev := matches[i-1]
				if prev.Score < c.Score {
					t.Fatalf("not sorted by descending score")
				}
				if prev.Score == c.Score && lastID > c.Item.ID {
					t.Fatalf("ties not in enumeration order")
				}
			}
			lastID = c.Item.ID
		}
	})
}

func TestFindMatchesAgainstStore(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner, err := store.CreateUser(ctx, database, "finder", "hash", model.RoleUser)
	require.NoError(t, err)
	loser, err := store.CreateUser(ctx, database, "loser", "hash", model.RoleUser)
	require.NoError(t, err)
	cat, err := store.CreateCategory(ctx, database, "Keys", "")
	require.NoError(t, err)

	when := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)
	lost, err := store.CreateItem(ctx, database, &model.Item{
		Kind: model.ItemKindLost, CategoryID: cat.ID, OwnerID: loser.ID,
		Title: "keys", Location: "Library", EventAt: &when,
	})
	require.NoError(t, err)
	found, err := store.CreateItem(ctx, database, &model.Item{
		Kind: model.ItemKindFound, CategoryID: cat.ID, OwnerID: owner.ID,
		Title: "keys", Location: "Library", EventAt: &when,
	})
	require.NoError(t, err)

	m := NewMatcher(store.ItemReader{DB: database}, DefaultWeights())
	matches, err := m.FindMatches(ctx, found.ID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, lost.ID, matches[0].Item.ID)
	assert.Equal(t, 100, matches[0].Score)
	assert.Equal(t, []string{ReasonSameLocation, ReasonHighText, ReasonSameDay}, matches[0].Reasons)

	// Archived items drop out.
	require.NoError(t, store.UpdateItemStatus(ctx, database, lost.ID, model.ItemStatusActive, model.ItemStatusArchived))
	matches, err = m.FindMatches(ctx, found.ID)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
