package main

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/morningrun/perkpass-core/injector"
	"github.com/morningrun/perkpass-core/internal/infrastructures"
	"github.com/morningrun/perkpass-core/migrations"
	"github.com/sirupsen/logrus"
)

func main() {
	infrastructures.LoadConfig()
	infrastructures.RunMigrations(migrations.FS)

	app, err := injector.InitializeApplication()
	if err != nil {
		logrus.Fatalf("Failed to initialize application: %v", err)
	}

	// Fiber configuration
	config := fiber.Config{
		ReadTimeout:  time.Second * 60,
		WriteTimeout: time.Second * 60,
		IdleTimeout:  time.Second * 60,
	}

	router := fiber.New(config)

	// Add CORS middleware
	router.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, PUT, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length",
		MaxAge:        300,
	}))

	app.RegisterRoutes(router)

	go runExpirySweeper(app)

	infrastructures.GetLogger().Infof("perkpass-core listening on %s", infrastructures.Config.ListenAddress)
	logrus.Fatal(router.Listen(infrastructures.Config.ListenAddress))
}

// runExpirySweeper periodically marks ACTIVE claims EXPIRED once
// their offer's redemption window has closed.
func runExpirySweeper(app *injector.Application) {
	interval := time.Duration(infrastructures.Config.SweepIntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		expired, err := app.RedemptionService.ExpireLapsedClaims()
		if err != nil {
			logrus.Errorf("expiry sweep failed: %v", err)
			continue
		}
		if expired > 0 {
			logrus.Infof("expiry sweep marked %d claims expired", expired)
		}
	}
}
