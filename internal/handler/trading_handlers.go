package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"spimex/internal/model"
	"spimex/internal/service"
)

type TradingHandler struct {
	tradingService   *service.TradingService
	defaultLastDates int
}

func NewTradingHandler(svc *service.TradingService, defaultLastDates int) *TradingHandler {
	return &TradingHandler{
		tradingService:   svc,
		defaultLastDates: defaultLastDates,
	}
}

// GetTradingDates handles GET /trading-dates?days=N.
func (h *TradingHandler) GetTradingDates(c *gin.Context) {
	days := h.defaultLastDates
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "days must be an integer")
			return
		}
		days = parsed
	}

	resp, err := h.tradingService.GetLastTradingDates(c.Request.Context(), days)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetDynamics handles GET /dynamics with a mandatory date range,
// optional equality filters and optional limit/offset pagination.
func (h *TradingHandler) GetDynamics(c *gin.Context) {
	start, ok := requireDate(c, "start_date")
	if !ok {
		return
	}
	end, ok := requireDate(c, "end_date")
	if !ok {
		return
	}

	q := model.DynamicsQuery{
		StartDate:       start,
		EndDate:         end,
		OilID:           c.Query("oil_id"),
		DeliveryTypeID:  c.Query("delivery_type_id"),
		DeliveryBasisID: c.Query("delivery_basis_id"),
	}

	var ok2 bool
	if q.Limit, ok2 = optionalInt(c, "limit"); !ok2 {
		return
	}
	if q.Offset, ok2 = optionalInt(c, "offset"); !ok2 {
		return
	}

	rows, err := h.tradingService.GetDynamics(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GetTradingResults handles GET /trading-results: rows of the latest
// trading day, optionally filtered.
func (h *TradingHandler) GetTradingResults(c *gin.Context) {
	rows, err := h.tradingService.GetTradingResults(
		c.Request.Context(),
		c.Query("oil_id"),
		c.Query("delivery_type_id"),
		c.Query("delivery_basis_id"),
	)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func requireDate(c *gin.Context, name string) (model.Date, bool) {
	raw := c.Query(name)
	if raw == "" {
		badRequest(c, name+" is required")
		return model.Date{}, false
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		badRequest(c, name+" must be a YYYY-MM-DD date")
		return model.Date{}, false
	}
	return d, true
}

func optionalInt(c *gin.Context, name string) (*int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, name+" must be an integer")
		return nil, false
	}
	return &parsed, true
}

func badRequest(c *gin.Context, detail string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": detail})
}

// fail maps validation errors to 422 and everything else (cache or
// database connectivity included) to 500.
func fail(c *gin.Context, err error) {
	if errors.Is(err, service.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
}
