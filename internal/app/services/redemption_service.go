package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/morningrun/perkpass-core/internal/app/errors"
	"github.com/morningrun/perkpass-core/internal/app/models"
	"github.com/morningrun/perkpass-core/internal/app/pkg"
	"github.com/morningrun/perkpass-core/internal/infrastructures"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RedemptionService is the single point of truth for "is this claim
// used". The status check and the status write run in one transaction
// with the claim row locked, so a claim transitions to REDEEMED at
// most once no matter how many scans arrive for the same code.
type RedemptionService struct {
	db              *gorm.DB
	validator       *infrastructures.Validator
	identityService *IdentityService

	// now is swapped in tests to pin the redemption window clock.
	now func() time.Time
}

func NewRedemptionService(db *gorm.DB, validator *infrastructures.Validator, identityService *IdentityService) *RedemptionService {
	return &RedemptionService{
		db:              db,
		validator:       validator,
		identityService: identityService,
		now:             time.Now,
	}
}

// checkRedeemable applies the state and window rules for a claim
// about to be redeemed.
func checkRedeemable(claim *models.Claim, offer *models.Offer, at time.Time) error {
	switch claim.Status {
	case models.ClaimStatusActive:
	case models.ClaimStatusRedeemed:
		return errors.NewConflictError(errors.CodeAlreadyRedeemed, "This code has already been redeemed")
	case models.ClaimStatusVoid:
		return errors.NewConflictError(errors.CodeClaimVoid, "This code has been voided")
	case models.ClaimStatusExpired:
		return errors.NewConflictError(errors.CodeClaimExpired, "This code has expired")
	default:
		return errors.NewConflictError(errors.CodeClaimVoid, "This code is not redeemable")
	}

	if !offer.InRedemptionWindow(at) {
		return errors.NewConflictError(errors.CodeNotInWindow, "Outside the redemption window for this offer")
	}
	return nil
}

// Redeem transitions one claim from ACTIVE to REDEEMED. Authority is
// resolved against the identity service before the transaction opens,
// so the claim row lock never waits on a network round-trip.
func (s *RedemptionService) Redeem(req *models.RedeemRequest, redeemerId uuid.UUID) (*models.RedeemResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	code := pkg.NormalizeClaimCode(req.Code)
	if code == "" {
		return nil, errors.NewBadRequestError("Code is required")
	}

	// Unlocked lookup to find the offer whose org gates this redeem.
	var claim models.Claim
	err := s.db.Where("code = ?", code).First(&claim).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("No claim with this code")
		}
		return nil, errors.NewInternalServerError(err, "Failed to look up claim")
	}

	var offer models.Offer
	err = s.db.Where("id = ?", claim.OfferID).First(&offer).Error
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get offer for claim")
	}

	// Redemption authority lives with the external identity service.
	canHost, err := s.identityService.CanHost(redeemerId.String(), offer.OrgID.String())
	if err != nil {
		return nil, err
	}
	if !canHost {
		return nil, errors.NewForbiddenError(errors.CodeNotAuthorized, "Host access required to redeem codes")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Re-read under the row lock; a concurrent redeem of the same
	// code waits here and then fails the status check.
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("code = ?", code).First(&claim).Error
	if err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("No claim with this code")
		}
		return nil, errors.NewInternalServerError(err, "Failed to look up claim")
	}

	now := s.now()
	if err := checkRedeemable(&claim, &offer, now); err != nil {
		tx.Rollback()
		return nil, err
	}

	fromStatus := claim.Status
	claim.Status = models.ClaimStatusRedeemed
	claim.RedeemedAt = &now
	claim.RedeemedBy = &redeemerId

	err = tx.Model(&models.Claim{}).Where("id = ?", claim.ID).Updates(map[string]any{
		"status":      claim.Status,
		"redeemed_at": claim.RedeemedAt,
		"redeemed_by": claim.RedeemedBy,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, errors.NewInternalServerError(err, "Failed to redeem claim")
	}

	if err := logClaimEvent(tx, &claim, models.ClaimEventRedeemed, &fromStatus, &redeemerId); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to commit redemption")
	}

	return &models.RedeemResult{
		ClaimID: claim.ID,
		OfferID: claim.OfferID,
	}, nil
}

// ExpireLapsedClaims marks ACTIVE claims EXPIRED once their offer's
// redemption window has closed. Run periodically from main.
func (s *RedemptionService) ExpireLapsedClaims() (int64, error) {
	result := s.db.Exec(`
		UPDATE claims
		SET status = ?
		FROM offers
		WHERE claims.offer_id = offers.id
		  AND claims.status = ?
		  AND offers.redeem_until IS NOT NULL
		  AND offers.redeem_until < ?`,
		models.ClaimStatusExpired, models.ClaimStatusActive, s.now(),
	)
	if result.Error != nil {
		return 0, errors.NewInternalServerError(result.Error, "Failed to expire lapsed claims")
	}
	return result.RowsAffected, nil
}
