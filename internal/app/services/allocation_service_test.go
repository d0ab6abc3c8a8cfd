package services

import (
	"testing"

	"github.com/morningrun/perkpass-core/internal/app/errors"
	"github.com/morningrun/perkpass-core/internal/app/models"
)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func TestValidateSelectedOption(t *testing.T) {
	withOptions := &models.Offer{Options: models.StringSlice{"Latte", "Mocha"}}
	noOptions := &models.Offer{}

	tests := []struct {
		name     string
		offer    *models.Offer
		selected *string
		wantCode string
	}{
		{name: "option required but missing", offer: withOptions, selected: nil, wantCode: errors.CodeMissingOption},
		{name: "option required but empty", offer: withOptions, selected: strPtr(""), wantCode: errors.CodeMissingOption},
		{name: "option not in set", offer: withOptions, selected: strPtr("Tea"), wantCode: errors.CodeInvalidOption},
		{name: "valid option", offer: withOptions, selected: strPtr("Latte"), wantCode: ""},
		{name: "no options and none selected", offer: noOptions, selected: nil, wantCode: ""},
		{name: "option forbidden", offer: noOptions, selected: strPtr("Latte"), wantCode: errors.CodeInvalidOption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSelectedOption(tt.offer, tt.selected)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("validateSelectedOption() error = %v, want nil", err)
				}
				return
			}

			appErr, ok := err.(*errors.AppError)
			if !ok {
				t.Fatalf("validateSelectedOption() error type = %T, want *errors.AppError", err)
			}
			if appErr.Code != tt.wantCode {
				t.Errorf("validateSelectedOption() code = %q, want %q", appErr.Code, tt.wantCode)
			}
		})
	}
}

func TestRemainingCapacity(t *testing.T) {
	tests := []struct {
		name     string
		capacity *int
		occupied int64
		want     *int
	}{
		{name: "unlimited", capacity: nil, occupied: 40, want: nil},
		{name: "slots left", capacity: intPtr(10), occupied: 7, want: intPtr(3)},
		{name: "full", capacity: intPtr(10), occupied: 10, want: intPtr(0)},
		{name: "never negative", capacity: intPtr(10), occupied: 12, want: intPtr(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := remainingCapacity(&models.Offer{Capacity: tt.capacity}, tt.occupied)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("remainingCapacity() = %d, want nil", *got)
			case tt.want != nil && got == nil:
				t.Errorf("remainingCapacity() = nil, want %d", *tt.want)
			case tt.want != nil && *got != *tt.want:
				t.Errorf("remainingCapacity() = %d, want %d", *got, *tt.want)
			}
		})
	}
}
