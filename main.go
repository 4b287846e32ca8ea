package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/loanlink/cache"
	"github.com/yourusername/loanlink/config"
	"github.com/yourusername/loanlink/handlers"
	"github.com/yourusername/loanlink/logger"
	"github.com/yourusername/loanlink/middleware"
	"github.com/yourusername/loanlink/payments"
	"go.uber.org/zap"
)

const featuredCacheTTL = 5 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer zlog.Sync()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}

	// Optional redis cache for the public featured-loans list
	var loanCache *cache.LoanCache
	if cfg.RedisAddr != "" {
		rdb, err := cache.Open(cfg.RedisAddr, 0)
		if err != nil {
			zlog.Warn("redis unavailable, continuing without cache", zap.Error(err))
		} else {
			loanCache = cache.NewLoanCache(rdb, featuredCacheTTL)
		}
	}

	// Payments are an optional mode: without a key the endpoints stay up
	// and report the service as unconfigured.
	var paymentClient payments.ClientInterface
	if cfg.StripeSecretKey != "" {
		paymentClient = payments.NewStripeClient(cfg.StripeSecretKey)
	} else {
		zlog.Warn("STRIPE_SECRET_KEY not set, payment features disabled")
	}

	// Setup router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// CORS middleware
	router.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == cfg.ClientURL {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// Health checks
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "LoanLink API is running"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "loanlink-api",
		})
	})

	authHandler := handlers.NewAuthHandler(db, cfg, zlog)
	userHandler := handlers.NewUserHandler(db, zlog)
	loanHandler := handlers.NewLoanHandler(db, loanCache, zlog)
	applicationHandler := handlers.NewApplicationHandler(db, cfg, paymentClient, zlog)

	authenticate := middleware.Authenticate(db, cfg)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", authenticate, authHandler.Me)
			auth.POST("/logout", authHandler.Logout)
		}

		users := api.Group("/users", authenticate, middleware.RequireRole("admin"))
		{
			users.GET("", userHandler.List)
			users.PATCH("/:id/role", userHandler.UpdateRole)
			users.PATCH("/:id/suspend", userHandler.Suspend)
			users.PATCH("/:id/activate", userHandler.Activate)
		}

		loans := api.Group("/loans")
		{
			loans.GET("", loanHandler.List)
			loans.GET("/featured", loanHandler.Featured)
			loans.GET("/manager/my-loans", authenticate, middleware.RequireRole("manager"), loanHandler.MyLoans)
			loans.GET("/:id", loanHandler.Get)
			loans.POST("", authenticate, middleware.RequireRole("manager", "admin"), loanHandler.Create)
			loans.PUT("/:id", authenticate, middleware.RequireRole("manager", "admin"), loanHandler.Update)
			loans.DELETE("/:id", authenticate, middleware.RequireRole("manager", "admin"), loanHandler.Delete)
			loans.PATCH("/:id/toggle-home", authenticate, middleware.RequireRole("admin"), loanHandler.ToggleHome)
		}

		applications := api.Group("/applications", authenticate)
		{
			applications.POST("", middleware.RequireRole("borrower"), applicationHandler.Create)
			applications.GET("", middleware.RequireRole("admin", "manager"), applicationHandler.List)
			applications.GET("/my-applications", middleware.RequireRole("borrower"), applicationHandler.MyApplications)
			applications.GET("/:id", applicationHandler.Get)
			applications.PATCH("/:id/approve", middleware.RequireRole("manager", "admin"), applicationHandler.Approve)
			applications.PATCH("/:id/reject", middleware.RequireRole("manager", "admin"), applicationHandler.Reject)
			applications.DELETE("/:id", middleware.RequireRole("borrower"), applicationHandler.Cancel)
			applications.POST("/create-payment-intent", applicationHandler.CreatePaymentIntent)
			applications.POST("/confirm-payment", applicationHandler.ConfirmPayment)
		}
	}

	// Start server
	port := cfg.Port
	if port == "" {
		port = "5000"
	}

	zlog.Info("starting LoanLink API server", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}
