package model

// MatchCandidate pairs a reference item with a scored counterpart.
// It is derived on every query and never stored.
type MatchCandidate struct {
	ReferenceID int64    `json:"reference_id"`
	Item        Item     `json:"item"`
	Score       int      `json:"score"`
	Reasons     []string `json:"reasons"`
}
