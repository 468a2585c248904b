package main

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/dukapay-api/internal/application/service"
	"github.com/sangkips/dukapay-api/internal/config"
	"github.com/sangkips/dukapay-api/internal/infrastructure/database"
	infraRepo "github.com/sangkips/dukapay-api/internal/infrastructure/repository"
	"github.com/sangkips/dukapay-api/internal/presentation/http/handler"
	"github.com/sangkips/dukapay-api/internal/presentation/http/routes"
	"github.com/sangkips/dukapay-api/pkg/mpesa"
	"github.com/sangkips/dukapay-api/pkg/utils"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()

	if cfg.App.Debug {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}

	if err := database.AutoMigrate(db); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	// Repositories
	orderRepo := infraRepo.NewOrderRepository(db)
	paymentRepo := infraRepo.NewPaymentRepository(db)
	productRepo := infraRepo.NewProductRepository(db)
	customerRepo := infraRepo.NewCustomerRepository(db)
	idempotencyRepo := infraRepo.NewIdempotencyRepository(db)

	// Payment gateway
	gateway := mpesa.NewClient(mpesa.Config{
		Environment:    cfg.Mpesa.Environment,
		ConsumerKey:    cfg.Mpesa.ConsumerKey,
		ConsumerSecret: cfg.Mpesa.ConsumerSecret,
		Shortcode:      cfg.Mpesa.Shortcode,
		Passkey:        cfg.Mpesa.Passkey,
		CallbackURL:    cfg.Mpesa.CallbackURL,
		Timeout:        time.Duration(cfg.Mpesa.TimeoutSeconds) * time.Second,
	})

	// Services
	pricingResolver := service.NewPricingResolver(productRepo, log)
	checkoutService := service.NewCheckoutService(pricingResolver, orderRepo, gateway, log)
	reconcileService := service.NewReconcileService(
		orderRepo,
		paymentRepo,
		log,
		service.PurchaseHistoryHook(customerRepo, log),
	)
	orderService := service.NewOrderService(orderRepo, paymentRepo)
	productService := service.NewProductService(productRepo)

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	router := gin.New()
	routes.SetupRoutes(router, cfg, jwtManager, idempotencyRepo, routes.Handlers{
		Checkout: handler.NewCheckoutHandler(checkoutService),
		Webhook:  handler.NewWebhookHandler(reconcileService, log),
		Order:    handler.NewOrderHandler(orderService),
		Product:  handler.NewProductHandler(productService),
	}, log)

	log.WithField("port", cfg.App.Port).Info("Starting server")
	if err := router.Run(":" + cfg.App.Port); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}
}
