// Package matching ranks opposite-kind items that may be the counterpart of
// a lost or found report.
package matching

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/erazemk/najdeno/internal/apperr"
	"github.com/erazemk/najdeno/internal/model"
)

// ItemSource is the read side of the item store the matcher needs.
type ItemSource interface {
	GetItem(ctx context.Context, id int64) (*model.Item, error)
	QueryItems(ctx context.Context, kind model.ItemKind, categoryID int64, status model.ItemStatus) ([]model.Item, error)
}

// Matcher finds candidate counterparts for items. It holds no state
// between calls; every call reads the store afresh.
type Matcher struct {
	src     ItemSource
	weights Weights
	tracer  trace.Tracer
}

// NewMatcher returns a Matcher scoring with w.
func NewMatcher(src ItemSource, w Weights) *Matcher {
	return &Matcher{
		src:     src,
		weights: w,
		tracer:  otel.Tracer("github.com/erazemk/najdeno/internal/matching"),
	}
}

// FindMatches returns the active, same-category, opposite-kind items that
// score at least the threshold against the item with itemID, best first.
// Candidates with equal scores keep the store's order.
func (m *Matcher) FindMatches(ctx context.Context, itemID int64) ([]model.MatchCandidate, error) {
	ctx, span := m.tracer.Start(ctx, "matching.find_matches",
		trace.WithAttributes(attribute.Int64("item.id", itemID)),
	)
	defer span.End()

	ref, err := m.src.GetItem(ctx, itemID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("loading reference item: %w", err)
	}
	if ref == nil {
		return nil, apperr.NotFound("item %d not found", itemID)
	}

	pool, err := m.src.QueryItems(ctx, ref.Kind.Opposite(), ref.CategoryID, model.ItemStatusActive)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("loading candidates: %w", err)
	}

	want := ref.Kind.Opposite()
	matches := []model.MatchCandidate{}
	for _, cand := range pool {
		if cand.ID == ref.ID || cand.Kind != want || cand.CategoryID != ref.CategoryID || cand.Status != model.ItemStatusActive {
			continue
		}
		score, reasons := Score(*ref, cand, m.weights)
		if score < m.weights.Threshold {
			continue
		}
		matches = append(matches, model.MatchCandidate{
			ReferenceID: ref.ID,
			Item:        cand,
			Score:       score,
			Reasons:     reasons,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	span.SetAttributes(
		attribute.Int("candidates.scanned", len(pool)),
		attribute.Int("candidates.matched", len(matches)),
	)
	return matches, nil
}
