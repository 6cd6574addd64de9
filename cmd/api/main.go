package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fintrack/internal/advisor"
	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/handlers"
	"fintrack/internal/logger"
	"fintrack/internal/middleware"
	"fintrack/internal/receipt"
	"fintrack/internal/reminder"
	"fintrack/internal/services"
	"fintrack/internal/sms"
	"fintrack/internal/validator"

	"github.com/gin-gonic/gin"
)

// @title           Fintrack API
// @version         1.0
// @description     Fintrack is a personal finance application for tracking transactions against a running budget, scheduling future transactions with SMS reminders, and importing transactions from receipt photos.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom validation tags
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	budgetService := services.NewBudgetService(db)
	transactionService := services.NewTransactionService(db, budgetService)
	scheduledService := services.NewScheduledTransactionService(db)
	auditService := services.NewAuditService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, budgetService, auditService)
	scheduledHandler := handlers.NewScheduledTransactionHandler(scheduledService, auditService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile/phone", authHandler.UpdatePhoneNumber)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Budget route
	protected.GET("/budget", transactionHandler.GetBudget)

	// Scheduled transaction routes
	scheduled := protected.Group("/scheduled-transactions")
	scheduled.POST("", scheduledHandler.ScheduleTransaction)
	scheduled.GET("", scheduledHandler.GetUserScheduledTransactions)

	// Receipt import and financial advice require a Gemini API key.
	// When it is not configured the routes are not registered at all.
	if appConfig.GeminiAPIKey != "" {
		extractor, err := receipt.NewGeminiExtractor(ctx, appConfig.GeminiAPIKey, appConfig.GeminiModel)
		if err != nil {
			return fmt.Errorf("failed to create receipt extractor: %w", err)
		}
		defer extractor.Close()

		receiptService := services.NewReceiptService(extractor, transactionService)
		receiptHandler := handlers.NewReceiptHandler(receiptService, auditService)
		protected.POST("/receipts/scan", receiptHandler.ScanReceipt)

		geminiAdvisor, err := advisor.NewGeminiAdvisor(ctx, appConfig.GeminiAPIKey, appConfig.GeminiModel)
		if err != nil {
			return fmt.Errorf("failed to create advisor: %w", err)
		}
		defer geminiAdvisor.Close()

		adviceService := services.NewAdviceService(db, budgetService, geminiAdvisor)
		adviceHandler := handlers.NewAdviceHandler(adviceService)
		protected.POST("/advice", adviceHandler.Ask)
	} else {
		log.Warn("GEMINI_API_KEY not set, receipt import and financial advice disabled")
	}

	// Reminder dispatcher requires Twilio credentials. Without them the
	// API still serves, but no SMS reminders go out.
	if appConfig.TwilioAccountSID != "" && appConfig.TwilioAuthToken != "" && appConfig.TwilioFromNumber != "" {
		sender := sms.NewTwilioSender(appConfig.TwilioAccountSID, appConfig.TwilioAuthToken, appConfig.TwilioFromNumber)
		dispatcher := reminder.NewDispatcher(db, sender, appConfig.ReminderInterval, appConfig.ReminderLookahead)
		go dispatcher.Start(ctx)
	} else {
		log.Warn("Twilio credentials not set, SMS reminders disabled")
	}

	server := &http.Server{
		Addr:    ":" + appConfig.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Fintrack backend server on port %s", appConfig.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutdown signal received, draining connections...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
