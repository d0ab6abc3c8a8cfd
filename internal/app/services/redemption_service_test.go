package services

import (
	"testing"
	"time"

	"github.com/morningrun/perkpass-core/internal/app/errors"
	"github.com/morningrun/perkpass-core/internal/app/models"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestCheckRedeemable(t *testing.T) {
	day := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)
	windowed := &models.Offer{
		RedeemFrom:  timePtr(day.Add(9 * time.Hour)),
		RedeemUntil: timePtr(day.Add(12 * time.Hour)),
	}
	open := &models.Offer{}

	tests := []struct {
		name     string
		status   models.ClaimStatus
		offer    *models.Offer
		at       time.Time
		wantCode string
	}{
		{name: "active inside window", status: models.ClaimStatusActive, offer: windowed, at: day.Add(9*time.Hour + time.Minute), wantCode: ""},
		{name: "before window opens", status: models.ClaimStatusActive, offer: windowed, at: day.Add(8*time.Hour + 59*time.Minute), wantCode: errors.CodeNotInWindow},
		{name: "after window closes", status: models.ClaimStatusActive, offer: windowed, at: day.Add(12*time.Hour + time.Minute), wantCode: errors.CodeNotInWindow},
		{name: "no window is always open", status: models.ClaimStatusActive, offer: open, at: day, wantCode: ""},
		{name: "already redeemed", status: models.ClaimStatusRedeemed, offer: open, at: day, wantCode: errors.CodeAlreadyRedeemed},
		{name: "voided", status: models.ClaimStatusVoid, offer: open, at: day, wantCode: errors.CodeClaimVoid},
		{name: "expired", status: models.ClaimStatusExpired, offer: open, at: day, wantCode: errors.CodeClaimExpired},
		{name: "redeemed beats window check", status: models.ClaimStatusRedeemed, offer: windowed, at: day, wantCode: errors.CodeAlreadyRedeemed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkRedeemable(&models.Claim{Status: tt.status}, tt.offer, tt.at)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("checkRedeemable() error = %v, want nil", err)
				}
				return
			}

			appErr, ok := err.(*errors.AppError)
			if !ok {
				t.Fatalf("checkRedeemable() error type = %T, want *errors.AppError", err)
			}
			if appErr.Code != tt.wantCode {
				t.Errorf("checkRedeemable() code = %q, want %q", appErr.Code, tt.wantCode)
			}
		})
	}
}

func TestOfferInRedemptionWindow(t *testing.T) {
	from := time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)
	until := time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		offer models.Offer
		at    time.Time
		want  bool
	}{
		{name: "open both sides", offer: models.Offer{}, at: from, want: true},
		{name: "only lower bound, before", offer: models.Offer{RedeemFrom: &from}, at: from.Add(-time.Second), want: false},
		{name: "only lower bound, after", offer: models.Offer{RedeemFrom: &from}, at: from.Add(time.Second), want: true},
		{name: "only upper bound, before", offer: models.Offer{RedeemUntil: &until}, at: until.Add(-time.Second), want: true},
		{name: "only upper bound, after", offer: models.Offer{RedeemUntil: &until}, at: until.Add(time.Second), want: false},
		{name: "exactly at open", offer: models.Offer{RedeemFrom: &from, RedeemUntil: &until}, at: from, want: true},
		{name: "exactly at close", offer: models.Offer{RedeemFrom: &from, RedeemUntil: &until}, at: until, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.offer.InRedemptionWindow(tt.at); got != tt.want {
				t.Errorf("InRedemptionWindow(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}
