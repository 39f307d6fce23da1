package model

import "time"

// ItemKind distinguishes lost reports from found reports.
type ItemKind string

// Item kinds.
const (
	ItemKindLost  ItemKind = "lost"
	ItemKindFound ItemKind = "found"
)

// Valid reports whether k is a known kind.
func (k ItemKind) Valid() bool {
	return k == ItemKindLost || k == ItemKindFound
}

// Opposite returns the kind a match candidate must have.
func (k ItemKind) Opposite() ItemKind {
	if k == ItemKindLost {
		return ItemKindFound
	}
	return ItemKindLost
}

// ItemStatus is the visibility state of a reported item.
type ItemStatus string

// Item statuses.
const (
	ItemStatusActive   ItemStatus = "active"
	ItemStatusClaimed  ItemStatus = "claimed"
	ItemStatusResolved ItemStatus = "resolved"
	ItemStatusArchived ItemStatus = "archived"
)

// Valid reports whether s is a known status.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusActive, ItemStatusClaimed, ItemStatusResolved, ItemStatusArchived:
		return true
	}
	return false
}

// CanTransitionTo reports whether an item may move from s to next.
// Allowed paths are active→claimed→resolved and active→archived.
func (s ItemStatus) CanTransitionTo(next ItemStatus) bool {
	switch s {
	case ItemStatusActive:
		return next == ItemStatusClaimed || next == ItemStatusArchived
	case ItemStatusClaimed:
		return next == ItemStatusResolved
	}
	return false
}

// Upper bounds on free-text fields, in characters.
const (
	MaxTitleLen       = 255
	MaxLocationLen    = 255
	MaxDescriptionLen = 5000
)

// Item is a reported lost or found object.
type Item struct {
	ID          int64      `json:"id"`
	Kind        ItemKind   `json:"kind"`
	Status      ItemStatus `json:"status"`
	CategoryID  int64      `json:"category_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location,omitempty"`
	EventAt     *time.Time `json:"event_at,omitempty"`
	OwnerID     int64      `json:"owner_id"`
	ViewCount   int64      `json:"view_count"`
	ImageRef    string     `json:"image_ref,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Joined fields (not always populated).
	CategoryName  string `json:"category_name,omitempty"`
	OwnerName     string `json:"owner_name,omitempty"`
	PendingClaims int    `json:"pending_claims"`
}

// EffectiveDate returns when the item was lost or found, falling back to
// the time the report was filed.
func (i *Item) EffectiveDate() time.Time {
	if i.EventAt != nil && !i.EventAt.IsZero() {
		return *i.EventAt
	}
	return i.CreatedAt
}

// ItemEvent records one status transition of an item.
type ItemEvent struct {
	ID         int64      `json:"id"`
	ItemID     int64      `json:"item_id"`
	FromStatus ItemStatus `json:"from_status"`
	ToStatus   ItemStatus `json:"to_status"`
	ActorID    int64      `json:"actor_id"`
	Note       string     `json:"note,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`

	// Joined fields (not always populated).
	ActorName string `json:"actor_name,omitempty"`
}

// Category groups items; matching only compares items in the same category.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultCategories are seeded into a fresh database.
var DefaultCategories = []string{
	"Electronics",
	"Keys",
	"Wallets",
	"Bags",
	"Clothing",
	"Documents",
	"Jewelry",
	"Other",
}
