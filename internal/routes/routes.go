package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gorillago3318/portal/internal/config"
	"github.com/gorillago3318/portal/internal/database"
	"github.com/gorillago3318/portal/internal/handlers"
	"github.com/gorillago3318/portal/internal/middleware"
	"github.com/gorillago3318/portal/internal/queue"
	"github.com/gorillago3318/portal/internal/referral"
	agentsvc "github.com/gorillago3318/portal/internal/services/agent"
	leadsvc "github.com/gorillago3318/portal/internal/services/lead"
)

// RegisterRoutes configures all API routes
func RegisterRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, jobQueue queue.QueueInterface) {
	// 1 request/second per IP (burst 5), 10 auth attempts per minute
	rateLimiter := middleware.NewRateLimiter(1, 10, 5, 3)

	corsConfig := cors.DefaultConfig()
	if cfg.FrontendURL != "" {
		corsConfig.AllowOrigins = []string{cfg.FrontendURL}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-API-Key")
	router.Use(cors.New(corsConfig))

	resolver := referral.NewResolver(referral.NewDirectory(db), cfg.DefaultReferralCode)
	leadService := leadsvc.NewService(db, resolver, jobQueue)
	agentService := agentsvc.NewService(db)

	authHandler := handlers.NewAuthHandler(db, cfg, jobQueue)
	agentHandler := handlers.NewAgentHandler(agentService)
	leadHandler := handlers.NewLeadHandler(leadService)
	commissionHandler := handlers.NewCommissionHandler(db)

	router.GET("/health", healthHandler(db))

	authGroup := router.Group("/api/auth")
	authGroup.Use(rateLimiter.AuthRateLimiterMiddleware())
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", agentHandler.Register)
		authGroup.POST("/forgot-password", authHandler.ForgotPassword)
		authGroup.POST("/reset-password", authHandler.ResetPassword)
	}

	// Lead intake comes from the public loan calculator, authenticated by a
	// shared API key instead of a user session.
	router.POST("/api/leads",
		rateLimiter.IPRateLimiterMiddleware(),
		middleware.APIKeyMiddleware(cfg.LeadsAPIKey),
		leadHandler.Create)

	leadGroup := router.Group("/api/leads")
	leadGroup.Use(middleware.AuthMiddleware())
	{
		leadGroup.GET("", leadHandler.List)
		leadGroup.GET("/:id", leadHandler.Get)
		leadGroup.PATCH("/:id/status", leadHandler.UpdateStatus)
		leadGroup.PATCH("/:id/assign", middleware.AdminMiddleware(), leadHandler.Reassign)
	}

	agentGroup := router.Group("/api/agents")
	agentGroup.Use(middleware.AuthMiddleware())
	{
		agentGroup.GET("", middleware.AdminMiddleware(), agentHandler.List)
		agentGroup.POST("", middleware.AdminMiddleware(), agentHandler.Create)
		agentGroup.GET("/:id", agentHandler.Get)
		agentGroup.PATCH("/:id", agentHandler.Update)
		agentGroup.POST("/:id/approve", middleware.AdminMiddleware(), agentHandler.Approve)
		agentGroup.DELETE("/:id", middleware.AdminMiddleware(), agentHandler.Delete)
	}

	commissionGroup := router.Group("/api/commissions")
	commissionGroup.Use(middleware.AuthMiddleware())
	{
		commissionGroup.GET("", commissionHandler.List)
		commissionGroup.GET("/:id", commissionHandler.Get)
		commissionGroup.PATCH("/:id", middleware.AdminMiddleware(), commissionHandler.UpdateStatus)
	}
}

// healthHandler reports service and database health
func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		latency, err := database.Ping(db)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"db_latency": latency.String(),
			"checked_at": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
