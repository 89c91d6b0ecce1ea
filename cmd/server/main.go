package main

import (
	"log"
	"time"

	"delivery_dispatch/internal/config"
	"delivery_dispatch/internal/database"
	"delivery_dispatch/internal/handlers"
	internalhubspot "delivery_dispatch/internal/hubspot"
	"delivery_dispatch/internal/metrics"
	"delivery_dispatch/internal/middleware"
	"delivery_dispatch/internal/migrations"
	"delivery_dispatch/internal/models"
	"delivery_dispatch/internal/notifications"
	"delivery_dispatch/internal/redis"
	"delivery_dispatch/internal/repository"
	"delivery_dispatch/internal/services"
	"delivery_dispatch/pkg/hubspot"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := migrations.RunMigrations(db, cfg.JWTSecret); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Redis backs the shared CRM schema cache. The cache degrades to its
	// in-process layer without it, so a missing Redis is not fatal.
	var schemaStore internalhubspot.SchemaStore
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis, schema cache will not be shared: %v", err)
	} else {
		schemaStore = redisClient
	}

	// Notifications go through the broker when one is configured.
	var notifier services.Notifier = notifications.NoopNotifier{}
	if cfg.AMQPURL != "" {
		publisher, err := notifications.NewPublisher(cfg.AMQPURL)
		if err != nil {
			log.Printf("Warning: Failed to connect to AMQP broker, notifications disabled: %v", err)
		} else {
			defer publisher.Close()
			notifier = publisher
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	driverRepo := repository.NewDriverRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	eventRepo := repository.NewDispatchEventRepository(db)

	// Initialize HubSpot client and schema cache
	var syncer services.OrderSyncer = services.NoopSyncer{}
	if cfg.HubspotAPIKey != "" {
		hubspotClient := hubspot.NewClient(cfg.HubspotBaseURL, cfg.HubspotAPIKey)
		schemaCache := internalhubspot.NewSchemaCache(
			hubspotClient, schemaStore, time.Duration(cfg.SchemaCacheTTL)*time.Second)
		syncer = services.NewHubspotSyncService(
			hubspotClient, internalhubspot.NewMapper(), schemaCache, customerRepo, orderRepo)
	} else {
		log.Println("HUBSPOT_API_KEY not set, CRM sync disabled")
	}

	// Initialize services
	userService := services.NewUserService(userRepo, cfg.JWTSecret)
	eventService := services.NewEventService(eventRepo)
	orderService := services.NewOrderService(
		orderRepo, quoteRepo, customerRepo, driverRepo, eventService, notifier, syncer)

	// Initialize handlers
	webhookHandler := handlers.NewWebhookHandler(
		cfg, eventService, orderService, orderRepo, customerRepo)
	apiHandler := handlers.NewAPIHandler(
		userService, orderService, eventService, driverRepo, quoteRepo, customerRepo)

	metrics.Register()

	// Setup routes
	router := gin.Default()

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Provider webhooks authenticate by signature, not by session.
	router.POST("/webhooks/stripe", webhookHandler.HandleStripeWebhook)
	router.POST("/webhooks/hubspot", webhookHandler.HandleHubspotWebhook)

	router.POST("/api/login", apiHandler.Login)
	router.POST("/api/quotes", apiHandler.CreateQuote)

	// API endpoints
	api := router.Group("/api")
	api.Use(middleware.RequireAuth(cfg.JWTSecret))
	{
		api.GET("/orders", apiHandler.ListOrders)
		api.GET("/orders/:id", apiHandler.GetOrder)
		api.GET("/orders/:id/events", apiHandler.GetOrderTimeline)
		api.PUT("/orders/:id/status", apiHandler.UpdateOrderStatus)

		staff := api.Group("")
		staff.Use(middleware.RequireRole(string(models.RoleDispatcher), string(models.RoleAdmin)))
		{
			staff.POST("/orders/:id/assign", apiHandler.AssignDriver)
			staff.POST("/orders/:id/cancel", apiHandler.CancelOrder)
			staff.GET("/drivers", apiHandler.ListDrivers)
		}
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
