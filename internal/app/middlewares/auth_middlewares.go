package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/morningrun/perkpass-core/internal/app/errors"
	"github.com/morningrun/perkpass-core/internal/app/models"
	"github.com/morningrun/perkpass-core/internal/app/pkg"
	"github.com/morningrun/perkpass-core/internal/app/services"
)

type AuthMiddleware struct {
	identityService *services.IdentityService
}

func NewAuthMiddleware(identityService *services.IdentityService) *AuthMiddleware {
	return &AuthMiddleware{identityService: identityService}
}

// AuthUser resolves the bearer token against the external identity
// service and stores the user in locals.
func (m *AuthMiddleware) AuthUser(c *fiber.Ctx) error {
	token := c.Get("Authorization")
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(models.WebResponse[any]{
			Success: false,
			Message: "Unauthorized",
		})
	}

	token = strings.Replace(token, "Bearer ", "", 1)

	user, err := m.identityService.GetCurrentUser(token)
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError("Invalid access token"))
	}

	c.Locals("user", user)
	c.Locals("user_id", user.ID.String())

	return c.Next()
}
