package deliveries

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/morningrun/perkpass-core/internal/app/errors"
	"github.com/morningrun/perkpass-core/internal/app/middlewares"
	"github.com/morningrun/perkpass-core/internal/app/models"
	"github.com/morningrun/perkpass-core/internal/app/pkg"
	"github.com/morningrun/perkpass-core/internal/app/services"
)

type OfferHandler struct {
	offerService    *services.OfferService
	identityService *services.IdentityService
	authMiddleware  *middlewares.AuthMiddleware
}

func NewOfferHandler(offerService *services.OfferService, identityService *services.IdentityService, authMiddleware *middlewares.AuthMiddleware) *OfferHandler {
	return &OfferHandler{
		offerService:    offerService,
		identityService: identityService,
		authMiddleware:  authMiddleware,
	}
}

func (h *OfferHandler) RegisterRoutes(router fiber.Router) {
	offerGroup := router.Group("/offers")

	// Public endpoints
	offerGroup.Get("/", h.GetOffers)
	offerGroup.Get("/:id", h.GetOffer)

	// Host endpoints
	offerGroup.Post("/", h.authMiddleware.AuthUser, h.CreateOffer)
}

func (h *OfferHandler) CreateOffer(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.IdentityUser)

	var req models.OfferCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	canHost, err := h.identityService.CanHost(user.ID.String(), req.OrgID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	if !canHost {
		return pkg.ErrorResponse(c, errors.NewForbiddenError(errors.CodeNotAuthorized, "Host access required to create offers"))
	}

	offer, err := h.offerService.CreateOffer(&req, user.ID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, offer)
}

func (h *OfferHandler) GetOffer(c *fiber.Ctx) error {
	id := c.Params("id")

	offer, err := h.offerService.GetOffer(id)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, offer)
}

func (h *OfferHandler) GetOffers(c *fiber.Ctx) error {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil {
		page = 1
	}

	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil {
		limit = 10
	}

	offers, err := h.offerService.GetOffers(&models.PaginationRequest{Page: page, Limit: limit})
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, offers)
}
