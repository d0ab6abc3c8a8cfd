//go:build wireinject
// +build wireinject

package injector

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/wire"
	"github.com/morningrun/perkpass-core/internal/app/deliveries"
	"github.com/morningrun/perkpass-core/internal/app/middlewares"
	"github.com/morningrun/perkpass-core/internal/app/services"
	"github.com/morningrun/perkpass-core/internal/infrastructures"
	"github.com/morningrun/perkpass-core/pkg/ratelimit"
)

// Application represents the main application container for perkpass-core
type Application struct {
	HealthHandler       *deliveries.HealthHandler
	OfferHandler        *deliveries.OfferHandler
	ClaimHandler        *deliveries.ClaimHandler
	RedemptionHandler   *deliveries.RedemptionHandler
	RateLimitMiddleware *middlewares.RateLimitMiddleware

	// RedemptionService is exposed for the expiry sweeper in main.
	RedemptionService *services.RedemptionService
}

// RegisterRoutes registers all application routes using a Fiber router
func (app *Application) RegisterRoutes(router fiber.Router) {
	// Global rate limit for public traffic
	router.Use(app.RateLimitMiddleware.LimitByIP(ratelimit.PublicAPILimit))

	app.HealthHandler.RegisterRoutes(router)
	app.OfferHandler.RegisterRoutes(router)
	app.ClaimHandler.RegisterRoutes(router)
	app.RedemptionHandler.RegisterRoutes(router)
}

// Infrastructure providers
var infrastructureSet = wire.NewSet(
	infrastructures.NewDatabase,
	infrastructures.NewRedisClient,
	infrastructures.NewValidator,
	wire.Value("perkpass"),
	wire.Bind(new(ratelimit.RateLimiter), new(*ratelimit.RedisRateLimiter)),
	ratelimit.NewRedisRateLimiter,
)

// Service providers
var serviceSet = wire.NewSet(
	services.NewIdentityService,
	services.NewOfferService,
	services.NewAllocationService,
	services.NewRedemptionService,
	services.NewParticipantService,
)

// Middleware providers
var middlewareSet = wire.NewSet(
	middlewares.NewAuthMiddleware,
	middlewares.NewRateLimitMiddleware,
)

// Handler providers
var handlerSet = wire.NewSet(
	deliveries.NewHealthHandler,
	deliveries.NewOfferHandler,
	deliveries.NewClaimHandler,
	deliveries.NewRedemptionHandler,
	wire.Struct(new(Application), "*"), // This tells Wire to build the Application struct
)

// InitializeApplication initializes the application with all its dependencies
func InitializeApplication() (*Application, error) {
	wire.Build(
		infrastructureSet,
		serviceSet,
		middlewareSet,
		handlerSet,
	)
	return &Application{}, nil // Wire will populate the Application struct based on handlerSet
}
