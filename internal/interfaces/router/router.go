package router

import (
	"net/http"

	admsvc "brickshare-backend/internal/application/admission"
	paysvc "brickshare-backend/internal/application/payments"
	propsvc "brickshare-backend/internal/application/properties"
	recsvc "brickshare-backend/internal/application/recurring"
	risksvc "brickshare-backend/internal/application/riskgate"
	setsvc "brickshare-backend/internal/application/settlement"
	walletsvc "brickshare-backend/internal/application/wallets"
	"brickshare-backend/internal/config"
	"brickshare-backend/internal/infrastructure/database"
	healthhandler "brickshare-backend/internal/interfaces/handlers/health"
	invhandler "brickshare-backend/internal/interfaces/handlers/investments"
	payhandler "brickshare-backend/internal/interfaces/handlers/payments"
	prophandler "brickshare-backend/internal/interfaces/handlers/properties"
	rechandler "brickshare-backend/internal/interfaces/handlers/recurring"
	wallethandler "brickshare-backend/internal/interfaces/handlers/wallets"
	"brickshare-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp wires the whole investment pipeline. The Stripe webhook route is
// registered before any middleware so nothing consumes the raw body it signs
// over.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, *recsvc.Service, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, nil, err
		}
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		rdb = redis.NewClient(opts)
	}

	settler := &setsvc.Service{DB: db, Currency: cfg.Currency}

	stripeWebhook := &payhandler.WebhookHandler{
		Settler:       settler,
		WebhookSecret: cfg.StripeWebhookSecret,
	}
	app.Post("/api/v1/stripe/webhook", stripeWebhook.HandleWebhook)

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{Rdb: rdb}
	if db != nil {
		hh.DB = &gormDBPinger{db: db}
	}
	app.Get("/health/json", hh.JSON)

	var recurringSvc *recsvc.Service
	if db != nil {
		propertySvc := &propsvc.Service{
			DB:                   db,
			OwnershipCapFraction: cfg.OwnershipCapFraction,
		}
		admissionSvc := &admsvc.Service{
			Properties:            propertySvc,
			MinInvestmentFraction: cfg.MinInvestmentFraction,
			PlatformFeeMultiplier: cfg.PlatformFeeMultiplier,
		}
		paymentSvc := &paysvc.Service{
			DB:       db,
			Creator:  &paysvc.StripeIntentCreator{SecretKey: cfg.StripeSecretKey},
			Currency: cfg.Currency,
		}
		walletSvc := &walletsvc.Service{DB: db, Currency: cfg.Currency}
		scanner := &risksvc.HTTPScanner{BaseURL: cfg.RiskScannerBaseURL}
		riskSvc := &risksvc.Service{
			Security:           scanner,
			History:            scanner,
			ComplianceMinScore: cfg.RiskComplianceMinScore,
			Timeout:            cfg.RiskScannerTimeout,
		}

		// Properties
		ph := &prophandler.Handlers{
			Service:               propertySvc,
			Payments:              paymentSvc,
			ListingFeeAmount:      cfg.ListingFeeAmount,
			MinInvestmentFraction: cfg.MinInvestmentFraction,
			PlatformFeeMultiplier: cfg.PlatformFeeMultiplier,
		}
		pg := app.Group("/api/v1/properties")
		pg.Get("/", ph.GetAllProperties)
		pg.Get("/:id", ph.GetPropertyByID)
		pg.Post("/", middleware.RequireUser(), ph.CreateProperty)

		// Investments
		ih := &invhandler.Handlers{
			Admission: admissionSvc,
			Payments:  paymentSvc,
			RiskGate:  riskSvc,
		}
		app.Post("/api/v1/investments", middleware.RequireUser(), ih.Invest)

		// Payments (synchronous confirmation)
		payh := &payhandler.Handlers{Settler: settler}
		app.Post("/api/v1/payments/confirm", middleware.RequireUser(), payh.Confirm)

		// Wallets
		wh := &wallethandler.Handlers{Service: walletSvc}
		wg := app.Group("/api/v1/wallets", middleware.RequireUser())
		wg.Get("/me", wh.ViewWallet)
		wg.Get("/me/transactions", wh.ViewHistory)
		wg.Post("/withdraw", wh.Withdraw)

		// Recurring
		if rdb != nil {
			recurringSvc = &recsvc.Service{
				DB:                    db,
				Rdb:                   rdb,
				Gateway:               paymentSvc,
				Settler:               settler,
				ClaimTTL:              cfg.RecurringClaimTTL,
				PlatformFeeMultiplier: cfg.PlatformFeeMultiplier,
			}
			rh := &rechandler.Handlers{Service: recurringSvc}
			rg := app.Group("/api/v1/recurring", middleware.RequireUser())
			rg.Post("/", rh.CreateOrder)
			rg.Get("/", rh.ListOrders)
			rg.Delete("/:id", rh.DeactivateOrder)
		}
	}

	return app, db, rdb, recurringSvc, nil
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
