package router

import (
	"github.com/gin-gonic/gin"

	"spimex/internal/handler"
)

func registerTradingRoutes(router *gin.RouterGroup, tradingHandler *handler.TradingHandler) {
	router.GET("/trading-dates", tradingHandler.GetTradingDates)
	router.GET("/dynamics", tradingHandler.GetDynamics)
	router.GET("/trading-results", tradingHandler.GetTradingResults)
}
