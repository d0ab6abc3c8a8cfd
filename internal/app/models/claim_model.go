package models

import (
	"time"

	"github.com/google/uuid"
)

type ClaimStatus string

const (
	ClaimStatusActive   ClaimStatus = "ACTIVE"
	ClaimStatusRedeemed ClaimStatus = "REDEEMED"
	ClaimStatusVoid     ClaimStatus = "VOID"
	ClaimStatusExpired  ClaimStatus = "EXPIRED"
)

// Claim is a single user's right to redeem an offer, identified by a
// unique code. Voucher and ticket rows share this shape; pooled
// tickets start with a nil OwnerID until allocation assigns them.
type Claim struct {
	ID      uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OfferID uuid.UUID  `json:"offer_id"`
	OwnerID *uuid.UUID `json:"owner_id,omitempty"`

	// Code is assigned at creation and never changes.
	Code string `json:"code"`

	Status         ClaimStatus `json:"status"`
	SelectedOption *string     `json:"selected_option,omitempty"`

	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RedeemedAt *time.Time `json:"redeemed_at,omitempty"`
	RedeemedBy *uuid.UUID `json:"redeemed_by,omitempty"`
}

type AllocateRequest struct {
	SelectedOption *string `json:"selected_option,omitempty" validate:"omitempty,max=100"`
}

// AllocateResult is the allocation response: the claim plus the
// remaining capacity after the insert (nil when unlimited).
type AllocateResult struct {
	Claim             *Claim `json:"claim"`
	RemainingCapacity *int   `json:"remaining_capacity"`
}

type RedeemRequest struct {
	Code string `json:"code" validate:"required,max=50"`
}

type RedeemResult struct {
	ClaimID uuid.UUID `json:"claim_id"`
	OfferID uuid.UUID `json:"offer_id"`
}

// Participant is a host-facing read model of one claim row joined
// with the owner's display name from the identity service.
type Participant struct {
	ClaimID        uuid.UUID   `json:"claim_id"`
	OwnerID        *uuid.UUID  `json:"owner_id,omitempty"`
	DisplayName    string      `json:"display_name"`
	SelectedOption *string     `json:"selected_option,omitempty"`
	Status         ClaimStatus `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	RedeemedAt     *time.Time  `json:"redeemed_at,omitempty"`
}
