package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/awesomegic/gicbank/internal/account"
	"github.com/awesomegic/gicbank/internal/config"
	"github.com/awesomegic/gicbank/internal/interest"
	"github.com/awesomegic/gicbank/internal/ledger"
	"github.com/awesomegic/gicbank/internal/middleware"
	"github.com/awesomegic/gicbank/internal/notification"
	"github.com/awesomegic/gicbank/internal/statement"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// one line per request, e.g. [09:14:02] 201 -  1.2ms POST /api/v1/accounts/AC001/transactions
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)

	ledgerBackend, rules, err := stores(d)
	if err != nil {
		return err
	}

	notifier := notification.NewLoggerNotifier(d.Logger)
	accountSvc := account.NewService(ledgerBackend, notifier, d.Logger)
	interestSvc := interest.NewService(rules, notifier, d.Logger)
	statementSvc := statement.NewService(ledgerBackend, rules, d.Logger)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterAccountRoutes(api, account.NewHandler(accountSvc), statement.NewHandler(statementSvc))
	RegisterInterestRoutes(api, interest.NewHandler(interestSvc))

	return nil
}

// stores picks the Postgres-backed ledger and rule table when a pool is
// available, otherwise fresh in-memory ones.
func stores(d Deps) (ledger.Ledger, interest.Table, error) {
	if d.DB == nil {
		return ledger.NewInMemory(), interest.NewInMemory(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pgLedger := ledger.NewPostgresLedger(d.DB)
	if err := pgLedger.Migrate(ctx); err != nil {
		return nil, nil, fmt.Errorf("migrate ledger: %w", err)
	}
	pgRules := interest.NewPostgresTable(d.DB)
	if err := pgRules.Migrate(ctx); err != nil {
		return nil, nil, fmt.Errorf("migrate interest rules: %w", err)
	}
	return pgLedger, pgRules, nil
}
