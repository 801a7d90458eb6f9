package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/eazipurse/eazipurse/internal/auth"
	"github.com/eazipurse/eazipurse/internal/config"
	"github.com/eazipurse/eazipurse/internal/funding"
	"github.com/eazipurse/eazipurse/internal/identity"
	"github.com/eazipurse/eazipurse/internal/ledger"
	"github.com/eazipurse/eazipurse/internal/middleware"
	"github.com/eazipurse/eazipurse/internal/notification"
	"github.com/eazipurse/eazipurse/internal/payments"
	"github.com/eazipurse/eazipurse/internal/wallet"
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
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)

	// Stores fall back to in-memory implementations when no database is
	// wired, which only happens in dev.
	var store ledger.Store
	var userRepo identity.Repository
	if d.DB != nil {
		store = ledger.NewPostgresStore(d.DB)
		userRepo = identity.NewPostgresRepository(d.DB)
	} else {
		store = ledger.NewInMemory()
		userRepo = identity.NewMemoryRepository()
	}

	walletSvc := wallet.NewService(store)
	userSvc := identity.NewService(userRepo, walletSvc)
	tokenSvc := auth.NewService(d.Cfg, userSvc)
	notifier := notification.NewLoggerNotifier(d.Logger)

	var gateway funding.Gateway
	if d.Cfg.PaystackSecretKey != "" {
		gateway = funding.NewPaystackGateway(d.Cfg.PaystackBaseURL, d.Cfg.PaystackSecretKey, d.Cfg.GatewayTimeout)
	} else {
		gateway = funding.NewStaticGateway()
	}

	paymentSvc := payments.NewService(store, userSvc, notifier, d.Logger)
	fundingSvc := funding.NewService(store, userSvc, gateway, notifier, d.Logger, d.Cfg.FundingCallbackURL)

	userHandler := identity.NewHandler(userSvc)
	authHandler := auth.NewHandler(userSvc, tokenSvc, walletSvc)
	walletHandler := wallet.NewHandler(walletSvc)
	paymentHandler := payments.NewHandler(paymentSvc)
	fundingHandler := funding.NewHandler(fundingSvc)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	RegisterIdentityRoutes(api, userHandler)
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, rateLimiter)
	RegisterFundingVerifyRoute(api, fundingHandler)

	// Protected routes
	jwtmw := middleware.JWTAuth(tokenSvc, userRepo)
	protected := api.Group("", jwtmw)
	protected.Get("/me", userHandler.Me)
	RegisterWalletRoutes(protected, walletHandler)
	RegisterFundingRoutes(protected, fundingHandler)
	RegisterPaymentRoutes(protected, paymentHandler)

	return nil
}
