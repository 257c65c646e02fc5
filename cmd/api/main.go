package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/jhoicas/smartcart-api/internal/application/history"
	"github.com/jhoicas/smartcart-api/internal/application/shopping"
	"github.com/jhoicas/smartcart-api/internal/application/tax"
	"github.com/jhoicas/smartcart-api/internal/infrastructure/events"
	"github.com/jhoicas/smartcart-api/internal/infrastructure/geocode"
	infrapdf "github.com/jhoicas/smartcart-api/internal/infrastructure/pdf"
	"github.com/jhoicas/smartcart-api/internal/infrastructure/postgres"
	"github.com/jhoicas/smartcart-api/internal/infrastructure/taxrate"
	httpRouter "github.com/jhoicas/smartcart-api/internal/interfaces/http"
	"github.com/jhoicas/smartcart-api/pkg/config"
	"github.com/jhoicas/smartcart-api/pkg/logger"
)

func main() {
	// .env is optional; variables already in the environment win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("load config: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("starting application")

	ctx := context.Background()

	if cfg.DB.Migrate {
		if err := postgres.RunMigrations(cfg.DB.ConnectionString()); err != nil {
			log.Fatal().Err(err).Msg("database migrations")
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("PostgreSQL connection")
	}
	defer pool.Close()

	recordRepo := postgres.NewShoppingRecordRepository(pool)
	planRepo := postgres.NewTripPlanRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Tax: reverse geocoder -> postal code -> rate service
	geocoder := geocode.NewNominatimClient(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout)
	rates := taxrate.NewClient(cfg.Tax.BaseURL, cfg.Tax.APIKey, cfg.Tax.Timeout, cfg.Tax.CacheTTL)
	resolver := tax.NewResolver(geocoder, rates, log.Component("tax"))
	if cfg.Tax.APIKey == "" {
		log.Warn().Msg("TAX_API_KEY not set, sales tax lookups will fail and carts will use a 0 rate")
	}

	var publisher shopping.RecordPublisher = events.NoopPublisher{}
	if cfg.AMQP.URL != "" {
		p, err := events.NewPublisher(ctx, cfg.AMQP.URL, cfg.AMQP.Exchange, 5, log.Component("events"))
		if err != nil {
			log.Fatal().Err(err).Msg("RabbitMQ connection")
		}
		defer p.Close()
		publisher = p
	} else {
		log.Info().Msg("AMQP_URL not set, record events disabled")
	}

	shoppingUC := shopping.NewUseCase(
		txRunner, planRepo, resolver, publisher,
		cfg.Geocoder.Timeout+cfg.Tax.Timeout,
		log.Component("shopping"),
	)
	historyUC := history.NewUseCase(
		recordRepo,
		infrapdf.NewMarotoPDFGenerator("SmartCart"),
		cfg.Spending.WeekStart,
		log.Component("history"),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "SmartCart API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ShoppingUC: shoppingUC,
		HistoryUC:  historyUC,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, closing server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	shoppingUC.Close()

	log.Info().Msg("application stopped")
}
