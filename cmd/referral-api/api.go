// Package main provides the referral API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/careops/referralos/pkg/advisor"
	"github.com/careops/referralos/pkg/autopilot"
	"github.com/careops/referralos/pkg/eventbus"
	"github.com/careops/referralos/pkg/ingestion"
	"github.com/careops/referralos/pkg/matching"
	"github.com/careops/referralos/pkg/persistence"
	"github.com/careops/referralos/pkg/pipeline"
	"github.com/careops/referralos/pkg/registry"
	"github.com/careops/referralos/pkg/web"
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
	normalizer := ingestion.NewNormalizer(a.logger)
	executor := pipeline.NewExecutor(a.logger, registry.NewDefaultRegistry(a.logger), nil)
	matcher := matching.NewMatcher(a.logger)
	progressor := autopilot.NewProgressor(a.logger, a.persistence, a.eventBus)
	annotator := advisor.NewBounded(a.logger, advisor.NewRuleBased(), advisor.DefaultTimeout)

	handlers := web.NewAPIHandlers(
		a.persistence,
		normalizer,
		executor,
		matcher,
		progressor,
		annotator,
		a.eventBus,
		a.validate,
	)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Referral API")
	})

	cases := app.Group("/cases")
	cases.Get("/", handlers.GetCases)
	cases.Post("/", handlers.CreateCase)
	cases.Get("/:id", handlers.GetCase)
	cases.Post("/:id/run", handlers.RunPipeline)
	cases.Get("/:id/matches", handlers.GetMatches)
	cases.Get("/:id/explanation", handlers.GetExplanation)
	cases.Get("/:id/journey", handlers.GetJourney)
	cases.Post("/:id/tick", handlers.TickCase)

	caregivers := app.Group("/caregivers")
	caregivers.Post("/", handlers.CreateCaregiver)
	caregivers.Get("/availability", handlers.GetAvailability)

	app.Get("/queue", handlers.GetQueue)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
