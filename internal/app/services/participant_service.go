package services

import (
	"github.com/google/uuid"
	"github.com/morningrun/perkpass-core/internal/app/errors"
	"github.com/morningrun/perkpass-core/internal/app/models"
	"gorm.io/gorm"
)

// ParticipantService builds the host-facing read model of an offer's
// claims. Read-only; never mutates the claim store.
type ParticipantService struct {
	db              *gorm.DB
	identityService *IdentityService
}

func NewParticipantService(db *gorm.DB, identityService *IdentityService) *ParticipantService {
	return &ParticipantService{
		db:              db,
		identityService: identityService,
	}
}

func (s *ParticipantService) GetParticipants(offerId string) ([]models.Participant, error) {
	offerUUID, err := uuid.Parse(offerId)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid offer ID format")
	}

	var claims []models.Claim
	err = s.db.Where("offer_id = ? AND status <> ?", offerUUID, models.ClaimStatusVoid).
		Order("created_at ASC").
		Find(&claims).Error
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to list claims")
	}

	participants := make([]models.Participant, 0, len(claims))
	for _, claim := range claims {
		p := models.Participant{
			ClaimID:        claim.ID,
			OwnerID:        claim.OwnerID,
			SelectedOption: claim.SelectedOption,
			Status:         claim.Status,
			CreatedAt:      claim.CreatedAt,
			RedeemedAt:     claim.RedeemedAt,
		}

		if claim.OwnerID != nil {
			user, err := s.identityService.GetUser(claim.OwnerID.String())
			if err == nil {
				p.DisplayName = user.DisplayName
			}
		}

		participants = append(participants, p)
	}

	return participants, nil
}
