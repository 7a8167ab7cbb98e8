package main

import (
	"log"

	_ "backend/api/swagger" // swagger docs
	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/paystack"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Commerce Backend API
// @version         1.0
// @description     Order lifecycle, invoicing, inventory, catalog, cart, messaging and payments API.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	db, err := database.NewConnection(cfg.DSN())
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	stockRepo := repository.NewStockMovementRepository(db)
	cartRepo := repository.NewCartRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	salesRepo := repository.NewSalesRepository(db)

	gateway := paystack.NewClient(cfg.PaystackSecretKey, cfg.PaystackBaseURL)

	userService := service.NewUserService(userRepo, cfg)
	catalogService := service.NewCatalogService(categoryRepo, productRepo)
	inventoryService := service.NewInventoryService(productRepo, stockRepo, txManager, wsHub)
	invoiceService := service.NewInvoiceService(invoiceRepo, orderRepo)
	orderService := service.NewOrderService(orderRepo, productRepo, salesRepo, inventoryService, invoiceService, txManager, wsHub)
	cartService := service.NewCartService(cartRepo, productRepo)
	messageService := service.NewMessageService(messageRepo, userRepo, wsHub, cfg.UploadDir)
	paymentService := service.NewPaymentService(txRepo, orderRepo, orderService, gateway)
	salesService := service.NewSalesService(salesRepo)

	auth := middleware.NewAuthMiddleware(cfg.JWTSecret)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService, auth)
	catalogHandler := handler.NewCatalogHandler(catalogService, auth)
	orderHandler := handler.NewOrderHandler(orderService, auth)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, auth)
	stockHandler := handler.NewStockHandler(inventoryService, auth)
	cartHandler := handler.NewCartHandler(cartService, auth)
	messageHandler := handler.NewMessageHandler(messageService, auth)
	paymentHandler := handler.NewPaymentHandler(paymentService, auth)
	salesHandler := handler.NewSalesHandler(salesService, auth)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, cfg.JWTSecret)
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	catalogHandler.RegisterRoutes(router.Group(""))
	orderHandler.RegisterRoutes(router.Group(""))
	invoiceHandler.RegisterRoutes(router.Group(""))
	stockHandler.RegisterRoutes(router.Group(""))
	cartHandler.RegisterRoutes(router.Group(""))
	messageHandler.RegisterRoutes(router.Group(""))
	paymentHandler.RegisterRoutes(router.Group(""))
	salesHandler.RegisterRoutes(router.Group(""))

	log.Printf("Server listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
