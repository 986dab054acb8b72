package service

import (
	"context"
	"errors"
	"fmt"

	"spimex/internal/cache"
	"spimex/internal/model"
	"spimex/internal/repository"
)

// ErrValidation marks client-side input errors. The HTTP layer maps it
// to 422; anything else is a server fault.
var ErrValidation = errors.New("validation failed")

const (
	maxLimit   = 10000
	keyVersion = "v1"
)

// Cache is the slice of the store the service needs.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	SetUntilCutoff(ctx context.Context, key string, value any) error
}

// TradingService runs each query through the same pipeline:
// validate, build the cache key, look up the cache, and only on a miss
// hit the repository and cache the transformed result. Validation runs
// before key construction so malformed requests never reach the cache.
type TradingService struct {
	repo                repository.TradingRepository
	cache               Cache
	maxLastDates        int
	maxDynamicsSpanDays int
}

func NewTradingService(repo repository.TradingRepository, c Cache, maxLastDates, maxDynamicsSpanDays int) *TradingService {
	return &TradingService{
		repo:                repo,
		cache:               c,
		maxLastDates:        maxLastDates,
		maxDynamicsSpanDays: maxDynamicsSpanDays,
	}
}

// GetLastTradingDates returns the last `days` distinct trading dates,
// newest first. Cached until the next cutoff.
func (s *TradingService) GetLastTradingDates(ctx context.Context, days int) (model.TradingDatesResponse, error) {
	var resp model.TradingDatesResponse
	if days <= 0 || days > s.maxLastDates {
		return resp, fmt.Errorf("%w: days must be in [1..%d]", ErrValidation, s.maxLastDates)
	}

	key := cache.MakeCacheKey("last_trading_dates", keyVersion, map[string]any{"days": days})
	hit, err := s.cache.Get(ctx, key, &resp)
	if err != nil {
		return model.TradingDatesResponse{}, err
	}
	if hit {
		return resp, nil
	}

	dates, err := s.repo.LastTradingDates(ctx, days)
	if err != nil {
		return model.TradingDatesResponse{}, err
	}
	if dates == nil {
		dates = []model.Date{}
	}
	resp = model.TradingDatesResponse{Dates: dates}
	if err := s.cache.SetUntilCutoff(ctx, key, resp); err != nil {
		return model.TradingDatesResponse{}, err
	}
	return resp, nil
}

// GetDynamics returns rows for an inclusive date range with optional
// filters and pagination. Cached until the next cutoff.
func (s *TradingService) GetDynamics(ctx context.Context, q model.DynamicsQuery) ([]model.TradingResult, error) {
	if q.StartDate.After(q.EndDate.Time) {
		return nil, fmt.Errorf("%w: start_date must be <= end_date", ErrValidation)
	}
	if spanDays(q.StartDate, q.EndDate) > s.maxDynamicsSpanDays {
		return nil, fmt.Errorf("%w: period too long (> %d days)", ErrValidation, s.maxDynamicsSpanDays)
	}
	if q.Limit != nil && (*q.Limit < 1 || *q.Limit > maxLimit) {
		return nil, fmt.Errorf("%w: limit must be in [1..%d]", ErrValidation, maxLimit)
	}
	if q.Offset != nil && *q.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must be >= 0", ErrValidation)
	}

	key := cache.MakeCacheKey("dynamics", keyVersion, q.Params())
	var cached []model.TradingResult
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		return nil, err
	}
	if hit {
		return cached, nil
	}

	rows, err := s.repo.Dynamics(ctx, q)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.TradingResult{}
	}
	if err := s.cache.SetUntilCutoff(ctx, key, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetTradingResults returns the rows of the latest trading day,
// optionally narrowed by the equality filters. Cached until the next
// cutoff.
func (s *TradingService) GetTradingResults(ctx context.Context, oilID, deliveryTypeID, deliveryBasisID string) ([]model.TradingResult, error) {
	params := map[string]any{
		"oil_id":            nullable(oilID),
		"delivery_type_id":  nullable(deliveryTypeID),
		"delivery_basis_id": nullable(deliveryBasisID),
	}
	key := cache.MakeCacheKey("trading_results_last_day", keyVersion, params)

	var cached []model.TradingResult
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		return nil, err
	}
	if hit {
		return cached, nil
	}

	rows, err := s.repo.TradingResultsForLastDay(ctx, oilID, deliveryTypeID, deliveryBasisID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.TradingResult{}
	}
	if err := s.cache.SetUntilCutoff(ctx, key, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// spanDays is the calendar distance end-start, matching the inclusive
// range semantics of the query (start == end is a zero-day span).
func spanDays(start, end model.Date) int {
	return int(end.Sub(start.Time).Hours() / 24)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
