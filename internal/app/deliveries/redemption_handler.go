package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/morningrun/perkpass-core/internal/app/middlewares"
	"github.com/morningrun/perkpass-core/internal/app/models"
	"github.com/morningrun/perkpass-core/internal/app/pkg"
	"github.com/morningrun/perkpass-core/internal/app/services"
	"github.com/morningrun/perkpass-core/pkg/ratelimit"
)

type RedemptionHandler struct {
	redemptionService   *services.RedemptionService
	authMiddleware      *middlewares.AuthMiddleware
	rateLimitMiddleware *middlewares.RateLimitMiddleware
}

func NewRedemptionHandler(redemptionService *services.RedemptionService, authMiddleware *middlewares.AuthMiddleware, rateLimitMiddleware *middlewares.RateLimitMiddleware) *RedemptionHandler {
	return &RedemptionHandler{
		redemptionService:   redemptionService,
		authMiddleware:      authMiddleware,
		rateLimitMiddleware: rateLimitMiddleware,
	}
}

func (h *RedemptionHandler) RegisterRoutes(router fiber.Router) {
	redemptionGroup := router.Group("/redemptions")

	redemptionGroup.Post("/redeem",
		h.authMiddleware.AuthUser,
		h.rateLimitMiddleware.LimitByUser(ratelimit.RedeemLimit),
		h.Redeem,
	)
}

func (h *RedemptionHandler) Redeem(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.IdentityUser)

	var req models.RedeemRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	result, err := h.redemptionService.Redeem(&req, user.ID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, result)
}
