package matching

import "fmt"

// Weights are the points each signal contributes to a match score and the
// cut-offs that decide when a signal fires. A candidate must reach
// Threshold to be reported.
type Weights struct {
	SameLocation       int `yaml:"same_location"`
	SimilarLocation    int `yaml:"similar_location"`
	SimilarLocationMin int `yaml:"similar_location_min"`

	TextHigh        int `yaml:"text_high"`
	TextHighMin     int `yaml:"text_high_min"`
	TextModerate    int `yaml:"text_moderate"`
	TextModerateMin int `yaml:"text_moderate_min"`
	TextLow         int `yaml:"text_low"`
	TextLowMin      int `yaml:"text_low_min"`

	SameDay   int `yaml:"same_day"`
	ThreeDays int `yaml:"three_days"`
	Week      int `yaml:"week"`

	Threshold int `yaml:"threshold"`
}

// DefaultWeights returns location 30, text 50 and date 20 points with a
// reporting threshold of 40.
func DefaultWeights() Weights {
	return Weights{
		SameLocation:       30,
		SimilarLocation:    20,
		SimilarLocationMin: 80,

		TextHigh:        50,
		TextHighMin:     80,
		TextModerate:    30,
		TextModerateMin: 60,
		TextLow:         10,
		TextLowMin:      40,

		SameDay:   20,
		ThreeDays: 15,
		Week:      10,

		Threshold: 40,
	}
}

// Max returns the highest score the weights can produce.
func (w Weights) Max() int {
	return max(w.SameLocation, w.SimilarLocation) +
		max(w.TextHigh, w.TextModerate, w.TextLow) +
		max(w.SameDay, w.ThreeDays, w.Week)
}

// Validate checks that every weight is non-negative, the text cut-offs are
// ordered and the result stays on the 0-100 scale.
func (w Weights) Validate() error {
	for name, v := range map[string]int{
		"same_location": w.SameLocation, "similar_location": w.SimilarLocation,
		"text_high": w.TextHigh, "text_moderate": w.TextModerate, "text_low": w.TextLow,
		"same_day": w.SameDay, "three_days": w.ThreeDays, "week": w.Week,
		"threshold": w.Threshold,
	} {
		if v < 0 {
			return fmt.Errorf("matching weight %s must not be negative", name)
		}
	}
	if !(w.TextLowMin <= w.TextModerateMin && w.TextModerateMin <= w.TextHighMin && w.TextHighMin <= 100) {
		return fmt.Errorf("text cut-offs must satisfy low <= moderate <= high <= 100")
	}
	if w.SimilarLocationMin < 0 || w.SimilarLocationMin > 100 {
		return fmt.Errorf("similar_location_min must be within 0-100")
	}
	if m := w.Max(); m > 100 {
		return fmt.Errorf("matching weights sum to %d, must not exceed 100", m)
	}
	if w.Threshold > 100 {
		return fmt.Errorf("threshold must not exceed 100")
	}
	return nil
}
