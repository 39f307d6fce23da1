package matching

import (
	"strings"
	"time"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/similarity"
)

// Reasons attached to a match, in the order signals are evaluated.
const (
	ReasonSameLocation    = "same location"
	ReasonSimilarLocation = "similar location"
	ReasonHighText        = "high text similarity"
	ReasonModerateText    = "moderate text similarity"
	ReasonSameDay         = "same day"
	ReasonWithin3Days     = "within 3 days"
	ReasonWithinWeek      = "within a week"
)

// Score rates how likely cand is the counterpart of ref. It looks only at
// location, title+description and effective dates; kind, category and
// status filtering is the caller's job.
func Score(ref, cand model.Item, w Weights) (int, []string) {
	score := 0
	reasons := []string{}

	if ref.Location != "" && cand.Location != "" {
		switch {
		case strings.EqualFold(strings.TrimSpace(ref.Location), strings.TrimSpace(cand.Location)):
			score += w.SameLocation
			reasons = append(reasons, ReasonSameLocation)
		case similarity.PartialRatio(ref.Location, cand.Location) > w.SimilarLocationMin:
			score += w.SimilarLocation
			reasons = append(reasons, ReasonSimilarLocation)
		}
	}

	text := similarity.TokenSetRatio(ref.Title+" "+ref.Description, cand.Title+" "+cand.Description)
	switch {
	case text > w.TextHighMin:
		score += w.TextHigh
		reasons = append(reasons, ReasonHighText)
	case text > w.TextModerateMin:
		score += w.TextModerate
		reasons = append(reasons, ReasonModerateText)
	case text > w.TextLowMin:
		score += w.TextLow
	}

	refDate, candDate := ref.EffectiveDate(), cand.EffectiveDate()
	if refDate.IsZero() || candDate.IsZero() {
		return min(score, 100), reasons
	}
	switch days := diffDays(refDate, candDate); {
	case days <= 1:
		score += w.SameDay
		reasons = append(reasons, ReasonSameDay)
	case days <= 3:
		score += w.ThreeDays
		reasons = append(reasons, ReasonWithin3Days)
	case days <= 7:
		score += w.Week
		reasons = append(reasons, ReasonWithinWeek)
	}

	return min(score, 100), reasons
}

// diffDays is the number of whole days between a and b.
func diffDays(a, b time.Time) int {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return int(d / (24 * time.Hour))
}
