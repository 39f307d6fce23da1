package model

import "time"

// ClaimStatus is the decision state of a claim.
type ClaimStatus string

// Claim statuses. Verified and rejected are terminal.
const (
	ClaimStatusPending  ClaimStatus = "pending"
	ClaimStatusVerified ClaimStatus = "verified"
	ClaimStatusRejected ClaimStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s ClaimStatus) Valid() bool {
	return s == ClaimStatusPending || s == ClaimStatusVerified || s == ClaimStatusRejected
}

// IsDecision reports whether s is a status an administrator may decide.
func (s ClaimStatus) IsDecision() bool {
	return s == ClaimStatusVerified || s == ClaimStatusRejected
}

// Claim is a claimant's assertion of ownership over a found item.
type Claim struct {
	ID               int64       `json:"id"`
	ItemID           int64       `json:"item_id"`
	ClaimantID       int64       `json:"claimant_id"`
	Status           ClaimStatus `json:"status"`
	ProofDescription string      `json:"proof_description"`
	ProofImageRef    string      `json:"proof_image_ref,omitempty"`
	AdminNotes       string      `json:"admin_notes,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	DecidedAt        *time.Time  `json:"decided_at,omitempty"`
	DecidedBy        *int64      `json:"decided_by,omitempty"`

	// Joined fields (not always populated).
	ItemTitle    string `json:"item_title,omitempty"`
	ClaimantName string `json:"claimant_name,omitempty"`
}

// ClaimDecidedEvent is emitted after an administrator decides a claim.
type ClaimDecidedEvent struct {
	ID            string      `json:"id"`
	RecipientID   int64       `json:"recipient_id"`
	RecipientName string      `json:"recipient_name"`
	ClaimID       int64       `json:"claim_id"`
	ItemID        int64       `json:"item_id"`
	ItemTitle     string      `json:"item_title"`
	Decision      ClaimStatus `json:"decision"`
	AdminNotes    string      `json:"admin_notes,omitempty"`
	OccurredAt    time.Time   `json:"occurred_at"`
}

// Notification is a stored event addressed to one user.
type Notification struct {
	ID          string     `json:"id"`
	RecipientID int64      `json:"recipient_id"`
	Kind        string     `json:"kind"`
	Payload     []byte     `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
}

// Notification kinds.
const (
	NotificationClaimDecided = "claim_decided"
)
