package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OfferKind distinguishes how claims against an offer come into
// existence. MINT offers insert a fresh voucher per allocation; POOL
// offers pre-create unowned tickets that allocation assigns.
type OfferKind string

const (
	OfferKindMint OfferKind = "MINT"
	OfferKindPool OfferKind = "POOL"
)

type Offer struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Kind        OfferKind `json:"kind"`
	OrgID       uuid.UUID `json:"org_id"`
	CreatedBy   uuid.UUID `json:"created_by"`

	// Capacity is the hard allocation limit. Nil means unlimited.
	Capacity *int `json:"capacity,omitempty"`

	// Options is the enumerated choice set (e.g. coffee types). A
	// non-empty set makes selected_option mandatory at claim time.
	Options StringSlice `gorm:"type:jsonb" json:"options,omitempty"`

	EventDate   time.Time  `gorm:"type:date" json:"event_date"`
	RedeemFrom  *time.Time `json:"redeem_from,omitempty"`
	RedeemUntil *time.Time `json:"redeem_until,omitempty"`

	Location  *string        `json:"location,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

// HasOptions reports whether the offer declares an option set.
func (o *Offer) HasOptions() bool {
	return len(o.Options) > 0
}

// InRedemptionWindow reports whether t falls inside the offer's
// redemption window. An unset bound is open on that side.
func (o *Offer) InRedemptionWindow(t time.Time) bool {
	if o.RedeemFrom != nil && t.Before(*o.RedeemFrom) {
		return false
	}
	if o.RedeemUntil != nil && t.After(*o.RedeemUntil) {
		return false
	}
	return true
}

type OfferCreateRequest struct {
	Name        string     `json:"name" validate:"required,max=255"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=1000"`
	Kind        OfferKind  `json:"kind" validate:"required,oneof=MINT POOL"`
	OrgID       string     `json:"org_id" validate:"required,uuid"`
	Capacity    *int       `json:"capacity,omitempty" validate:"omitempty,min=1"`
	Options     []string   `json:"options,omitempty" validate:"omitempty,dive,required,max=100"`
	EventDate   time.Time  `json:"event_date" validate:"required"`
	RedeemFrom  *time.Time `json:"redeem_from,omitempty"`
	RedeemUntil *time.Time `json:"redeem_until,omitempty"`
	Location    *string    `json:"location,omitempty" validate:"omitempty,max=255"`
}

type MintTicketsRequest struct {
	Count int `json:"count" validate:"required,min=1,max=1000"`
}
