package models

import (
	"time"

	"github.com/google/uuid"
)

// ClaimEvent is the audited lifecycle transition of a claim row:
// allocation, assignment from a ticket pool, redemption, expiry.
type ClaimEvent string

const (
	ClaimEventAllocated ClaimEvent = "ALLOCATED"
	ClaimEventAssigned  ClaimEvent = "ASSIGNED"
	ClaimEventRedeemed  ClaimEvent = "REDEEMED"
	ClaimEventExpired   ClaimEvent = "EXPIRED"
)

// ClaimAuditLog records every status transition a claim goes through.
// Written inside the same transaction as the transition itself.
type ClaimAuditLog struct {
	ID         uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClaimID    uuid.UUID    `json:"claim_id" gorm:"type:uuid;not null"`
	OfferID    uuid.UUID    `json:"offer_id" gorm:"type:uuid;not null"`
	Event      ClaimEvent   `json:"event" gorm:"type:varchar(20);not null"`
	FromStatus *ClaimStatus `json:"from_status" gorm:"type:varchar(20)"`
	ToStatus   ClaimStatus  `json:"to_status" gorm:"type:varchar(20);not null"`
	ActorID    *uuid.UUID   `json:"actor_id" gorm:"type:uuid"`
	CreatedAt  time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}
