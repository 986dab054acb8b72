package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"spimex/internal/handler"
)

type Config struct {
	TradingHandler *handler.TradingHandler
	RateLimitRPS   int
	RateLimitBurst int
}

func NewRouter(cfg *Config) *gin.Engine {
	router := gin.Default()

	if cfg.RateLimitRPS > 0 {
		limiter := rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
		router.Use(rateLimit(limiter))
	}

	api := router.Group("/api/v1")
	registerTradingRoutes(api, cfg.TradingHandler)

	return router
}

func rateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"detail": "too many requests"})
			return
		}
		c.Next()
	}
}
