package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/dukapay-api/internal/config"
	"github.com/sangkips/dukapay-api/internal/domain/repository"
	"github.com/sangkips/dukapay-api/internal/presentation/http/handler"
	"github.com/sangkips/dukapay-api/internal/presentation/http/middleware"
	"github.com/sangkips/dukapay-api/pkg/utils"
	"github.com/sirupsen/logrus"
)

// Handlers groups the HTTP handlers wired into the router
type Handlers struct {
	Checkout *handler.CheckoutHandler
	Webhook  *handler.WebhookHandler
	Order    *handler.OrderHandler
	Product  *handler.ProductHandler
}

// SetupRoutes configures all application routes
func SetupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	jwtManager *utils.JWTManager,
	idempotencyRepo repository.IdempotencyRepository,
	handlers Handlers,
	log *logrus.Logger,
) {
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": cfg.App.Name,
		})
	})

	checkoutLimiter := middleware.NewClientRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: float64(cfg.RateLimit.Requests) / float64(cfg.RateLimit.Duration),
		BurstSize:         cfg.RateLimit.Requests,
		CleanupInterval:   5 * time.Minute,
		EntryTTL:          15 * time.Minute,
	})

	v1 := router.Group("/api/v1")
	{
		// Gateway callbacks carry no customer token; the endpoint stays public
		// and correlation happens by MerchantRequestID.
		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/mpesa", handlers.Webhook.MpesaCallback)
		}

		// Checkout accepts both guests and authenticated customers.
		checkout := v1.Group("/checkout")
		checkout.Use(
			middleware.OptionalAuthMiddleware(jwtManager),
			checkoutLimiter.Middleware(),
			middleware.IdempotencyMiddleware(idempotencyRepo, log),
		)
		{
			checkout.POST("/mobile-money", handlers.Checkout.MobileMoney)
		}

		orders := v1.Group("/orders")
		orders.Use(middleware.AuthMiddleware(jwtManager))
		{
			orders.GET("", handlers.Order.List)
			orders.GET("/:id", handlers.Order.Get)
			orders.GET("/:id/payments", handlers.Order.ListPayments)
		}

		products := v1.Group("/products")
		{
			products.GET("", handlers.Product.List)
			products.GET("/:slug", handlers.Product.Get)
			products.POST("", middleware.AuthMiddleware(jwtManager), handlers.Product.Create)
		}
	}
}
