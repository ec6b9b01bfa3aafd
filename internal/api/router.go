package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/mobility-metrics-go/internal/config"
	"github.com/jengzang/mobility-metrics-go/internal/handler"
	"github.com/jengzang/mobility-metrics-go/internal/middleware"
	"github.com/jengzang/mobility-metrics-go/internal/service"
	"go.uber.org/zap"
)

// SetupRouter builds the HTTP engine. The returned limiter must be closed
// on shutdown; it is nil when rate limiting is disabled.
func SetupRouter(cfg *config.Config, svc *service.DatasetService, logger *zap.Logger) (*gin.Engine, *middleware.RateLimiter) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Mobility metrics API is running",
		})
	})

	var limiter *middleware.RateLimiter
	if cfg.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit, time.Minute)
	}

	datasetHandler := handler.NewDatasetHandler(svc)
	runHandler := handler.NewRunHandler(svc)
	auth := middleware.Auth(cfg.JWTSecret)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(limiter))
	{
		datasets := api.Group("/datasets")
		{
			datasets.GET("", datasetHandler.List)
			datasets.POST("", auth, datasetHandler.Submit)
			datasets.DELETE("/:name", auth, datasetHandler.Delete)

			datasets.GET("/:name/config", datasetHandler.GetConfig)
			datasets.GET("/:name/global", datasetHandler.GetGlobal)
			datasets.GET("/:name/metrics", datasetHandler.ListMetrics)
			datasets.GET("/:name/staypoints", datasetHandler.ListStayPoints)
			datasets.GET("/:name/visits", datasetHandler.ListVisits)
			datasets.GET("/:name/journeys", datasetHandler.ListJourneys)
			datasets.GET("/:name/contacts", datasetHandler.ListContacts)
			datasets.GET("/:name/quadrants", datasetHandler.ListQuadrants)
		}

		runs := api.Group("/runs")
		{
			runs.GET("", runHandler.ListRuns)
			runs.GET("/:id", runHandler.GetRun)
		}
	}

	return r, limiter
}
