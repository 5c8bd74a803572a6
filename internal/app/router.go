package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"campool/internal/handler"
	"campool/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	RequestHandler      *handler.RequestHandler
	MatchHandler        *handler.MatchHandler
	NotificationHandler *handler.NotificationHandler
	AdminHandler        *handler.AdminHandler
	RedisClient         *redis.Client
	NewRelicApp         *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Ride request routes.
		requests := v1.Group("/requests")
		{
			requests.POST("", deps.RequestHandler.CreateRequest)
			requests.GET("/:id", deps.RequestHandler.GetRequest)
			requests.POST("/:id/cancel", deps.RequestHandler.CancelRequest)
			requests.GET("/:id/candidates", deps.RequestHandler.GetCandidates)
		}

		// Match routes.
		matches := v1.Group("/matches")
		{
			matches.POST("", deps.MatchHandler.CreateMatch)
			matches.GET("/:id", deps.MatchHandler.GetMatch)
			matches.POST("/:id/confirm", deps.MatchHandler.ConfirmMatch)
			matches.POST("/:id/cancel", deps.MatchHandler.CancelMatch)
			matches.POST("/:id/start", deps.MatchHandler.StartRide)
			matches.POST("/:id/complete", deps.MatchHandler.CompleteRide)
		}

		// Notification routes.
		v1.GET("/users/:id/notifications", deps.NotificationHandler.ListByUser)
		v1.POST("/notifications/:id/read", deps.NotificationHandler.MarkRead)

		// Maintenance sweeps for ops tooling.
		sweeps := v1.Group("/admin/sweeps")
		{
			sweeps.POST("/expiry", deps.AdminHandler.RunExpirySweep)
			sweeps.POST("/timeout", deps.AdminHandler.RunTimeoutSweep)
			sweeps.POST("/requests", deps.AdminHandler.RunRequestCleanup)
			sweeps.POST("/reminders", deps.AdminHandler.RunReminderSweep)
		}
	}

	return router
}
