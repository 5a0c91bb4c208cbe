package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

type Handlers struct {
	Portfolio *PortfolioHandler
	Search    *SearchHandler
	Feed      *FeedHandler
}

// NewRouter wires the API routes behind the shared middleware stack.
func NewRouter(h Handlers, log logger.Logger, serviceName string) *gin.Engine {
	router := gin.New()
	router.Use(
		RecoveryMiddleware(log),
		otelgin.Middleware(serviceName),
		cors.Default(),
		RequestLogger(log),
		ErrorMiddleware(log),
	)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found", "error": c.Request.URL.Path})
	})

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })

		portfolio := api.Group("/portfolio")
		{
			portfolio.GET("", h.Portfolio.GetPortfolio)
			portfolio.PUT("", h.Portfolio.UpdatePortfolio)
			portfolio.GET("/search", h.Search.Search)
			portfolio.GET("/feed", h.Feed.ProjectsFeed)
		}
	}

	return router
}
