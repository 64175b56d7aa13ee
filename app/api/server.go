package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(requestID())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\" %s\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
				param.Keys["request_id"],
			)
		},
	}))
	r.Use(gin.Recovery())

	// The product selector UI runs on another origin.
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler)

	return r
}

// NewHTTPServer wraps handler in an http.Server. Writes are unbounded; each
// feed fetch carries its own per-source deadline.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	api := r.Group("/api")
	{
		api.GET("/feeds", handler.GetFeeds)
		api.GET("/feeds/check", handler.CheckFeeds)
		api.GET("/feeds/:id/products", handler.GetFeedProducts)
	}

	r.GET("/health", handler.GetHealth)

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service":     "Product Feeds",
			"version":     handler.version,
			"description": "Partner product feed ingestion and search",
			"endpoints": map[string]string{
				"feeds":    "/api/feeds",
				"products": "/api/feeds?source=<id>&q=<query>",
				"source":   "/api/feeds/<id>/products?q=<query>",
				"check":    "/api/feeds/check",
				"health":   "/health",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})

	slog.Debug("Routes configured", "count", len(r.Routes()))
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
