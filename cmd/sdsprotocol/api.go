package main

import (
	"log/slog"
	"strconv"

	"github.com/dukex/sdsprotocol/pkg/eventbus"
	"github.com/dukex/sdsprotocol/pkg/persistence"
	"github.com/dukex/sdsprotocol/pkg/protocols"
	"github.com/dukex/sdsprotocol/pkg/registry"
	"github.com/dukex/sdsprotocol/pkg/services"
	"github.com/dukex/sdsprotocol/pkg/web"
	"github.com/dukex/sdsprotocol/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger      *slog.Logger
	catalog     *protocols.Registry
	persistence persistence.Persistence
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	catalog *protocols.Registry,
	persistence persistence.Persistence,
	registry *registry.Registry,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		logger:      logger,
		catalog:     catalog,
		persistence: persistence,
		registry:    registry,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	var publisher eventbus.EventPublisher
	if a.eventBus != nil {
		publisher = a.eventBus
	}

	stepService := services.NewStep(a.persistence, a.catalog, publisher, a.logger)
	executor := workflow.NewExecutor(a.registry, a.persistence.StepRepository(), publisher, a.logger)

	handlers := web.NewAPIHandlers(a.catalog, stepService, executor, a.validate, a.registry)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("SDS Protocol API")
	})

	web.RegisterRoutes(app, handlers)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
