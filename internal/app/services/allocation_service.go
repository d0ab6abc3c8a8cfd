package services

import (
	goerrors "errors"

	"github.com/google/uuid"
	"github.com/morningrun/perkpass-core/internal/app/errors"
	"github.com/morningrun/perkpass-core/internal/app/models"
	"github.com/morningrun/perkpass-core/internal/app/pkg"
	"github.com/morningrun/perkpass-core/internal/infrastructures"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// claimCodeAttempts bounds code regeneration on insert collisions.
// The code space is 32^8, so a second attempt is already rare.
const claimCodeAttempts = 5

// AllocationService creates claims against capacity-limited offers.
// All checks and the write run inside one transaction holding a row
// lock on the offer, so concurrent allocations for the same offer
// serialize; the partial unique index on (offer_id, owner_id) is the
// final arbiter for per-user uniqueness either way.
type AllocationService struct {
	db        *gorm.DB
	validator *infrastructures.Validator

	// genCode is swapped in tests to force code collisions.
	genCode func() (string, error)
}

func NewAllocationService(db *gorm.DB, validator *infrastructures.Validator) *AllocationService {
	return &AllocationService{
		db:        db,
		validator: validator,
		genCode:   pkg.GenerateClaimCode,
	}
}

// validateSelectedOption applies the offer's option rule: required
// and a member of the set when the offer declares options, forbidden
// otherwise.
func validateSelectedOption(offer *models.Offer, selectedOption *string) error {
	if !offer.HasOptions() {
		if selectedOption != nil {
			return errors.NewValidationError(errors.CodeInvalidOption, "This offer does not take an option")
		}
		return nil
	}

	if selectedOption == nil || *selectedOption == "" {
		return errors.NewValidationError(errors.CodeMissingOption, "An option must be selected for this offer")
	}

	for _, opt := range offer.Options {
		if opt == *selectedOption {
			return nil
		}
	}
	return errors.NewValidationError(errors.CodeInvalidOption, "Selected option is not offered")
}

// remainingCapacity returns capacity minus the occupied count, or nil
// for unlimited offers.
func remainingCapacity(offer *models.Offer, occupied int64) *int {
	if offer.Capacity == nil {
		return nil
	}
	remaining := *offer.Capacity - int(occupied)
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}

// Allocate creates or assigns a claim for the user. MINT offers get a
// fresh voucher row; POOL offers get one unowned pre-minted ticket.
// Preconditions reject in a fixed order: already claimed, then sold
// out, then option validation.
func (s *AllocationService) Allocate(offerId string, userId uuid.UUID, req *models.AllocateRequest) (*models.AllocateResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	offerUUID, err := uuid.Parse(offerId)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid offer ID format")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Row lock on the offer serializes every allocation for it.
	var offer models.Offer
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", offerUUID).First(&offer).Error
	if err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Offer not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get offer")
	}

	// Per-user uniqueness: one non-void claim per offer.
	var existing int64
	err = tx.Model(&models.Claim{}).
		Where("offer_id = ? AND owner_id = ? AND status <> ?", offer.ID, userId, models.ClaimStatusVoid).
		Count(&existing).Error
	if err != nil {
		tx.Rollback()
		return nil, errors.NewInternalServerError(err, "Failed to check existing claims")
	}
	if existing > 0 {
		tx.Rollback()
		return nil, errors.NewConflictError(errors.CodeAlreadyClaimed, "You already have a claim for this offer")
	}

	// Capacity before option validation, so a sold-out offer reports
	// SOLD_OUT even on a malformed request. occupied only applies to
	// mint offers, unassigned only to pool offers.
	var occupied, unassigned int64
	if offer.Kind == models.OfferKindPool {
		err = tx.Model(&models.Claim{}).
			Where("offer_id = ? AND owner_id IS NULL AND status = ?", offer.ID, models.ClaimStatusActive).
			Count(&unassigned).Error
		if err != nil {
			tx.Rollback()
			return nil, errors.NewInternalServerError(err, "Failed to count tickets")
		}
		if unassigned == 0 {
			tx.Rollback()
			return nil, errors.NewConflictError(errors.CodeSoldOut, "No tickets left for this event")
		}
	} else if offer.Capacity != nil {
		err = tx.Model(&models.Claim{}).
			Where("offer_id = ? AND status IN ?", offer.ID,
				[]models.ClaimStatus{models.ClaimStatusActive, models.ClaimStatusRedeemed}).
			Count(&occupied).Error
		if err != nil {
			tx.Rollback()
			return nil, errors.NewInternalServerError(err, "Failed to count claims")
		}
		if occupied >= int64(*offer.Capacity) {
			tx.Rollback()
			return nil, errors.NewConflictError(errors.CodeSoldOut, "This offer is sold out")
		}
	}

	if err := validateSelectedOption(&offer, req.SelectedOption); err != nil {
		tx.Rollback()
		return nil, err
	}

	var claim *models.Claim
	switch offer.Kind {
	case models.OfferKindPool:
		claim, err = s.assignPooledTicket(tx, &offer, userId, req.SelectedOption)
	default:
		claim, err = s.mintClaim(tx, &offer, userId, req.SelectedOption)
	}
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// Remaining slots after the write, surfaced to the user. For
	// pool offers that is the unassigned ticket count; for mint
	// offers it is capacity minus the occupied count.
	var remaining *int
	if offer.Kind == models.OfferKindPool {
		left := int(unassigned) - 1
		remaining = &left
	} else {
		remaining = remainingCapacity(&offer, occupied+1)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to commit allocation")
	}

	return &models.AllocateResult{
		Claim:             claim,
		RemainingCapacity: remaining,
	}, nil
}

// createWithFreshCode inserts the claim with a newly generated code,
// regenerating on a collision with an existing code. ON CONFLICT is
// scoped to the code column, so inserting zero rows means a code
// collision and nothing else; a violation of the per-user index still
// surfaces as gorm.ErrDuplicatedKey.
func (s *AllocationService) createWithFreshCode(tx *gorm.DB, claim *models.Claim) error {
	for attempt := 0; attempt < claimCodeAttempts; attempt++ {
		code, err := s.genCode()
		if err != nil {
			return errors.NewInternalServerError(err, "Failed to generate claim code")
		}
		claim.Code = code

		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).Create(claim)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}
	}
	return errors.NewInternalServerError(goerrors.New("claim code collisions exhausted retries"), "Failed to create claim")
}

// mintClaim inserts a fresh voucher row. Capacity was already checked
// by Allocate under the offer lock.
func (s *AllocationService) mintClaim(tx *gorm.DB, offer *models.Offer, userId uuid.UUID, selectedOption *string) (*models.Claim, error) {
	claim := &models.Claim{
		OfferID:        offer.ID,
		OwnerID:        &userId,
		Status:         models.ClaimStatusActive,
		SelectedOption: selectedOption,
	}

	if err := s.createWithFreshCode(tx, claim); err != nil {
		var appErr *errors.AppError
		if goerrors.As(err, &appErr) {
			return nil, err
		}
		// The partial unique index is the final arbiter for
		// per-user uniqueness.
		if goerrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.NewConflictError(errors.CodeAlreadyClaimed, "You already have a claim for this offer")
		}
		return nil, errors.NewInternalServerError(err, "Failed to create claim")
	}

	if err := logClaimEvent(tx, claim, models.ClaimEventAllocated, nil, &userId); err != nil {
		return nil, err
	}

	return claim, nil
}

// assignPooledTicket picks one unowned ACTIVE ticket and sets its
// owner in a single conditional update. SKIP LOCKED keeps concurrent
// assignments from contending on the same row.
func (s *AllocationService) assignPooledTicket(tx *gorm.DB, offer *models.Offer, userId uuid.UUID, selectedOption *string) (*models.Claim, error) {
	var claim models.Claim
	err := tx.Raw(`
		UPDATE claims
		SET owner_id = ?, selected_option = ?
		WHERE id = (
			SELECT id FROM claims
			WHERE offer_id = ? AND owner_id IS NULL AND status = ?
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`,
		userId, selectedOption, offer.ID, models.ClaimStatusActive,
	).Scan(&claim).Error
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to assign ticket")
	}

	if claim.ID == uuid.Nil {
		return nil, errors.NewConflictError(errors.CodeSoldOut, "No tickets left for this event")
	}

	if err := logClaimEvent(tx, &claim, models.ClaimEventAssigned, nil, &userId); err != nil {
		return nil, err
	}

	return &claim, nil
}

// MintTickets pre-creates count unowned ACTIVE tickets for a POOL
// offer, capped at the offer's capacity.
func (s *AllocationService) MintTickets(offerId string, req *models.MintTicketsRequest, actorId uuid.UUID) ([]models.Claim, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	offerUUID, err := uuid.Parse(offerId)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid offer ID format")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var offer models.Offer
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", offerUUID).First(&offer).Error
	if err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Offer not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get offer")
	}

	if offer.Kind != models.OfferKindPool {
		tx.Rollback()
		return nil, errors.NewBadRequestError("Tickets can only be minted for pool offers")
	}

	if offer.Capacity != nil {
		var existing int64
		err = tx.Model(&models.Claim{}).
			Where("offer_id = ? AND status <> ?", offer.ID, models.ClaimStatusVoid).
			Count(&existing).Error
		if err != nil {
			tx.Rollback()
			return nil, errors.NewInternalServerError(err, "Failed to count tickets")
		}
		if existing+int64(req.Count) > int64(*offer.Capacity) {
			tx.Rollback()
			return nil, errors.NewConflictError(errors.CodeSoldOut, "Mint would exceed offer capacity")
		}
	}

	tickets := make([]models.Claim, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		ticket := models.Claim{
			OfferID: offer.ID,
			Status:  models.ClaimStatusActive,
		}
		if err := s.createWithFreshCode(tx, &ticket); err != nil {
			tx.Rollback()
			var appErr *errors.AppError
			if goerrors.As(err, &appErr) {
				return nil, err
			}
			return nil, errors.NewInternalServerError(err, "Failed to mint tickets")
		}
		tickets = append(tickets, ticket)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to commit mint")
	}

	return tickets, nil
}

// GetMyClaim returns the caller's non-void claim for an offer, if any.
func (s *AllocationService) GetMyClaim(offerId string, userId uuid.UUID) (*models.Claim, error) {
	offerUUID, err := uuid.Parse(offerId)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid offer ID format")
	}

	var claim models.Claim
	err = s.db.Where("offer_id = ? AND owner_id = ? AND status <> ?", offerUUID, userId, models.ClaimStatusVoid).
		First(&claim).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("No claim for this offer")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get claim")
	}

	return &claim, nil
}

// logClaimEvent writes the audit row inside the caller's transaction.
func logClaimEvent(tx *gorm.DB, claim *models.Claim, event models.ClaimEvent, fromStatus *models.ClaimStatus, actorId *uuid.UUID) error {
	log := &models.ClaimAuditLog{
		ClaimID:    claim.ID,
		OfferID:    claim.OfferID,
		Event:      event,
		FromStatus: fromStatus,
		ToStatus:   claim.Status,
		ActorID:    actorId,
	}
	if err := tx.Create(log).Error; err != nil {
		return errors.NewInternalServerError(err, "Failed to write claim audit log")
	}
	return nil
}
