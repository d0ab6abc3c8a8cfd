package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/morningrun/perkpass-core/internal/app/errors"
	"github.com/morningrun/perkpass-core/internal/app/middlewares"
	"github.com/morningrun/perkpass-core/internal/app/models"
	"github.com/morningrun/perkpass-core/internal/app/pkg"
	"github.com/morningrun/perkpass-core/internal/app/services"
)

type ClaimHandler struct {
	allocationService  *services.AllocationService
	participantService *services.ParticipantService
	offerService       *services.OfferService
	identityService    *services.IdentityService
	authMiddleware     *middlewares.AuthMiddleware
}

func NewClaimHandler(allocationService *services.AllocationService, participantService *services.ParticipantService, offerService *services.OfferService, identityService *services.IdentityService, authMiddleware *middlewares.AuthMiddleware) *ClaimHandler {
	return &ClaimHandler{
		allocationService:  allocationService,
		participantService: participantService,
		offerService:       offerService,
		identityService:    identityService,
		authMiddleware:     authMiddleware,
	}
}

func (h *ClaimHandler) RegisterRoutes(router fiber.Router) {
	offerGroup := router.Group("/offers/:id")

	offerGroup.Post("/claims", h.authMiddleware.AuthUser, h.Allocate)
	offerGroup.Get("/claims/me", h.authMiddleware.AuthUser, h.GetMyClaim)
	offerGroup.Get("/participants", h.authMiddleware.AuthUser, h.GetParticipants)
	offerGroup.Post("/tickets/mint", h.authMiddleware.AuthUser, h.MintTickets)
}

func (h *ClaimHandler) Allocate(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.IdentityUser)
	offerId := c.Params("id")

	var req models.AllocateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	result, err := h.allocationService.Allocate(offerId, user.ID, &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, result)
}

func (h *ClaimHandler) GetMyClaim(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.IdentityUser)
	offerId := c.Params("id")

	claim, err := h.allocationService.GetMyClaim(offerId, user.ID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, claim)
}

// requireHostForOffer gates host-only reads and writes on the offer's
// org via the external identity service.
func (h *ClaimHandler) requireHostForOffer(c *fiber.Ctx, offerId string) (*models.Offer, error) {
	user := c.Locals("user").(*models.IdentityUser)

	offer, err := h.offerService.GetOffer(offerId)
	if err != nil {
		return nil, err
	}

	canHost, err := h.identityService.CanHost(user.ID.String(), offer.OrgID.String())
	if err != nil {
		return nil, err
	}
	if !canHost {
		return nil, errors.NewForbiddenError(errors.CodeNotAuthorized, "Host access required")
	}

	return offer, nil
}

func (h *ClaimHandler) GetParticipants(c *fiber.Ctx) error {
	offerId := c.Params("id")

	if _, err := h.requireHostForOffer(c, offerId); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	participants, err := h.participantService.GetParticipants(offerId)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, participants)
}

func (h *ClaimHandler) MintTickets(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.IdentityUser)
	offerId := c.Params("id")

	if _, err := h.requireHostForOffer(c, offerId); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	var req models.MintTicketsRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	tickets, err := h.allocationService.MintTickets(offerId, &req, user.ID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, tickets)
}
