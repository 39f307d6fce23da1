package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/najdeno/internal/model"
)

func day(d int) *time.Time {
	t := time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC)
	return &t
}

func item(kind model.ItemKind, title, location string, at *time.Time) model.Item {
	return model.Item{
		Kind:       kind,
		Status:     model.ItemStatusActive,
		CategoryID: 1,
		Title:      title,
		Location:   location,
		EventAt:    at,
	}
}

func TestScoreAllSignals(t *testing.T) {
	ref := item(model.ItemKindLost, "keys", "Library", day(10))
	cand := item(model.ItemKindFound, "keys", "library", day(10))

	score, reasons := Score(ref, cand, DefaultWeights())
	assert.Equal(t, 100, score)
	assert.Equal(t, []string{ReasonSameLocation, ReasonHighText, ReasonSameDay}, reasons)
}

func TestScoreLocation(t *testing.T) {
	w := DefaultWeights()
	ref := item(model.ItemKindLost, "a", "Library", nil)

	score, reasons := Score(ref, item(model.ItemKindFound, "z", "Main Library", nil), w)
	assert.Contains(t, reasons, ReasonSimilarLocation)
	assert.GreaterOrEqual(t, score, w.SimilarLocation)

	_, reasons = Score(ref, item(model.ItemKindFound, "z", "", nil), w)
	assert.NotContains(t, reasons, ReasonSameLocation)
	assert.NotContains(t, reasons, ReasonSimilarLocation)
}

func TestScoreSameLocationIgnoresOnlyCase(t *testing.T) {
	w := DefaultWeights()

	tests := []struct {
		a, b   string
		reason string
	}{
		{"Library", "LIBRARY", ReasonSameLocation},
		{" Library ", "library", ReasonSameLocation},
		{"Gate B.", "gate b", ReasonSimilarLocation},
		{"Room 1-A", "room 1 a", ReasonSimilarLocation},
	}
	for _, tt := range tests {
		t.Run(tt.a+"|"+tt.b, func(t *testing.T) {
			score, reasons := Score(item(model.ItemKindLost, "a", tt.a, nil), item(model.ItemKindFound, "z", tt.b, nil), w)
			require.Equal(t, []string{tt.reason}, reasons)
			if tt.reason == ReasonSameLocation {
				assert.Equal(t, w.SameLocation, score)
			} else {
				assert.Equal(t, w.SimilarLocation, score)
			}
		})
	}
}

func TestScoreTextTiers(t *testing.T) {
	w := DefaultWeights()
	w.SameDay, w.ThreeDays, w.Week = 0, 0, 0

	tests := []struct {
		name   string
		a, b   string
		points int
		reason string
	}{
		{"high", "black leather wallet", "wallet leather black", 50, ReasonHighText},
		{"moderate", "abcdefghij", "abcdefgxyz", 30, ReasonModerateText},
		{"low", "abcdefghij", "abcdexyzuv", 10, ""},
		{"none", "umbrella", "qqq", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, reasons := Score(item(model.ItemKindLost, tt.a, "", nil), item(model.ItemKindFound, tt.b, "", nil), w)
			assert.Equal(t, tt.points, score)
			if tt.reason != "" {
				assert.Equal(t, []string{tt.reason}, reasons)
			} else {
				assert.Empty(t, reasons)
			}
		})
	}
}

func TestScoreDateTiers(t *testing.T) {
	w := DefaultWeights()
	ref := item(model.ItemKindLost, "", "", day(10))

	tests := []struct {
		d      int
		points int
		reason string
	}{
		{10, 20, ReasonSameDay},
		{11, 20, ReasonSameDay},
		{7, 15, ReasonWithin3Days},
		{17, 10, ReasonWithinWeek},
		{18, 0, ""},
	}
	for _, tt := range tests {
		score, reasons := Score(ref, item(model.ItemKindFound, "", "", day(tt.d)), w)
		assert.Equal(t, tt.points, score, "day %d", tt.d)
		if tt.reason != "" {
			assert.Equal(t, []string{tt.reason}, reasons, "day %d", tt.d)
		}
	}
}

func TestScoreFallsBackToCreatedAt(t *testing.T) {
	ref := item(model.ItemKindLost, "", "", nil)
	ref.CreatedAt = *day(10)
	cand := item(model.ItemKindFound, "", "", day(12))

	score, reasons := Score(ref, cand, DefaultWeights())
	assert.Equal(t, 15, score)
	assert.Equal(t, []string{ReasonWithin3Days}, reasons)
}

func TestScoreMissingDatesContributeNothing(t *testing.T) {
	score, reasons := Score(item(model.ItemKindLost, "", "", nil), item(model.ItemKindFound, "", "", nil), DefaultWeights())
	assert.Zero(t, score)
	assert.Empty(t, reasons)
}

func TestDiffDaysSymmetric(t *testing.T) {
	a := *day(10)
	b := a.Add(47 * time.Hour)
	assert.Equal(t, 1, diffDays(a, b))
	assert.Equal(t, 1, diffDays(b, a))
}

func TestDefaultWeightsValid(t *testing.T) {
	w := DefaultWeights()
	require.NoError(t, w.Validate())
	assert.Equal(t, 100, w.Max())

	w.TextHigh = 90
	assert.Error(t, w.Validate())

	w = DefaultWeights()
	w.Week = -1
	assert.Error(t, w.Validate())

	w = DefaultWeights()
	w.TextModerateMin = 90
	assert.Error(t, w.Validate())
}
