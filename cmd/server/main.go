package main

import (
	"context"                       // context package is needed for Redis operations
	"ecobloom_api/internal/api"     // Custom package for API handlers
	"ecobloom_api/internal/config"  // Custom package for configuration
	"ecobloom_api/internal/ledger"  // Custom package for the donation ledger
	"ecobloom_api/internal/metrics" // Custom package for Prometheus metrics
	"ecobloom_api/internal/middleware" // Custom package for middleware
	"log"                           // log package is needed for logging

	// For loading .env files
	"github.com/gin-gonic/gin"                              // Gin web framework
	"github.com/prometheus/client_golang/prometheus/promhttp" // Prometheus HTTP handler
	"github.com/redis/go-redis/v9"                          // Redis client
	"github.com/sirupsen/logrus"                            // Logrus for structured logging
	"gorm.io/driver/mysql"                                  // MySQL driver for GORM
	"gorm.io/gorm"                                          // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Register Prometheus metrics
	metrics.Register()

	// Connect to the donation store
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// The ledger service backing every donation operation
	svc := ledger.NewService(db)

	// Auth routes
	r.POST("/auth/register", api.RegisterHandler(db))         // Registration endpoint
	r.POST("/auth/login", api.LoginHandler(db, cfg.JWTSecret)) // Login endpoint

	// Prometheus metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Account routes (protected by JWT)
	userGroup := r.Group("/users")
	userGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	userGroup.GET("/me", api.MeHandler(db))                   // Profile endpoint
	userGroup.PUT("/me", api.UpdateMeHandler(db))             // Profile update endpoint
	userGroup.POST("/me/password", api.PasswordChangeHandler(db)) // Password change endpoint
	userGroup.DELETE("/me", api.DeleteMeHandler(db))          // Account deletion endpoint

	// Donation routes (protected by JWT)
	donationGroup := r.Group("/donations")
	// Protect donation routes with JWT middleware and inject Redis client into context
	donationGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), func(c *gin.Context) {
		c.Set("redisClient", redisClient)
		c.Next()
	})
	donationGroup.POST("", api.RecordDonationHandler(svc))                  // Record donation endpoint
	donationGroup.GET("", api.ListDonationsHandler(svc))                    // Own donations endpoint
	donationGroup.GET("/last", api.LastDonationHandler(svc, redisClient))   // Latest donation endpoint
	donationGroup.GET("/total", api.TotalHandler(svc, redisClient))         // Running total endpoint

	// Derived views (protected by JWT)
	viewGroup := r.Group("/")
	viewGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	viewGroup.GET("/donors", api.LeaderboardHandler(svc, redisClient)) // Leaderboard endpoint
	viewGroup.GET("/trees", api.TreePositionsHandler(svc))             // Tree positions endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
