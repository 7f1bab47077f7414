// Package main provides the automator API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/guidely/automator/pkg/eventbus"
	"github.com/guidely/automator/pkg/persistence"
	"github.com/guidely/automator/pkg/services"
	"github.com/guidely/automator/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	automatorService := services.NewAutomator(a.persistence)
	publishingService := services.NewPublishing(a.persistence)

	handlers := web.NewAPIHandlers(automatorService, publishingService, a.validate, a.eventBus, a.logger)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Automator API")
	})

	automators := app.Group("/automators")
	automators.Get("/", handlers.GetAutomators)
	automators.Post("/", handlers.CreateAutomator)
	automators.Get("/:id", handlers.GetAutomator)
	automators.Patch("/:id", handlers.UpdateAutomator)
	automators.Delete("/:id", handlers.DeleteAutomator)
	automators.Put("/:id/definition", handlers.SaveDefinition)
	automators.Get("/:id/validate", handlers.ValidateAutomator)
	automators.Post("/:id/publish", handlers.PublishAutomator)
	automators.Post("/:id/unpublish", handlers.UnpublishAutomator)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
