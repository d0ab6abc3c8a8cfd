package services

import (
	"github.com/google/uuid"
	"github.com/morningrun/perkpass-core/internal/app/errors"
	"github.com/morningrun/perkpass-core/internal/app/models"
	"github.com/morningrun/perkpass-core/internal/infrastructures"
	"gorm.io/gorm"
)

type OfferService struct {
	db        *gorm.DB
	validator *infrastructures.Validator
}

func NewOfferService(db *gorm.DB, validator *infrastructures.Validator) *OfferService {
	return &OfferService{
		db:        db,
		validator: validator,
	}
}

func (s *OfferService) CreateOffer(req *models.OfferCreateRequest, createdBy uuid.UUID) (*models.Offer, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	orgID, err := uuid.Parse(req.OrgID)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid org ID format")
	}

	if req.RedeemFrom != nil && req.RedeemUntil != nil && req.RedeemUntil.Before(*req.RedeemFrom) {
		return nil, errors.NewBadRequestError("Redemption window ends before it starts")
	}

	offer := &models.Offer{
		Name:        req.Name,
		Description: req.Description,
		Kind:        req.Kind,
		OrgID:       orgID,
		CreatedBy:   createdBy,
		Capacity:    req.Capacity,
		Options:     models.StringSlice(req.Options),
		EventDate:   req.EventDate,
		RedeemFrom:  req.RedeemFrom,
		RedeemUntil: req.RedeemUntil,
		Location:    req.Location,
	}

	if err := s.db.Create(offer).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to create offer")
	}

	return offer, nil
}

func (s *OfferService) GetOffer(offerId string) (*models.Offer, error) {
	offerUUID, err := uuid.Parse(offerId)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid offer ID format")
	}

	var offer models.Offer
	err = s.db.Where("id = ?", offerUUID).First(&offer).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Offer not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get offer")
	}

	return &offer, nil
}

func (s *OfferService) GetOffers(pagination *models.PaginationRequest) (*models.Pagination[[]models.Offer], error) {
	if pagination.Limit <= 0 {
		pagination.Limit = 10
	}
	if pagination.Page <= 0 {
		pagination.Page = 1
	}

	offset := (pagination.Page - 1) * pagination.Limit

	var totalItems int64
	if err := s.db.Model(&models.Offer{}).Count(&totalItems).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to count offers")
	}

	var offers []models.Offer
	err := s.db.Order("event_date DESC").Limit(pagination.Limit).Offset(offset).Find(&offers).Error
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get offers")
	}

	totalPages := int((totalItems + int64(pagination.Limit) - 1) / int64(pagination.Limit))

	return &models.Pagination[[]models.Offer]{
		Page:       pagination.Page,
		Limit:      pagination.Limit,
		TotalPages: totalPages,
		TotalItems: int(totalItems),
		HasNext:    pagination.Page < totalPages,
		HasPrev:    pagination.Page > 1,
		Items:      offers,
	}, nil
}
