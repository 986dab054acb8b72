package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"spimex/internal/model"
)

// TradingRepository encapsulates the read-only SQL against
// spimex_trading_results. No caching and no validation here; callers
// own both.
type TradingRepository interface {
	LastTradingDates(ctx context.Context, days int) ([]model.Date, error)
	LastTradingDay(ctx context.Context) (*model.Date, error)
	Dynamics(ctx context.Context, q model.DynamicsQuery) ([]model.TradingResult, error)
	TradingResultsForLastDay(ctx context.Context, oilID, deliveryTypeID, deliveryBasisID string) ([]model.TradingResult, error)
}

type gormTradingRepository struct {
	db *gorm.DB
}

func NewGormTradingRepository(db *gorm.DB) TradingRepository {
	return &gormTradingRepository{db: db}
}

// LastTradingDates returns the last distinct trading dates, newest
// first, at most days entries.
func (r *gormTradingRepository) LastTradingDates(ctx context.Context, days int) ([]model.Date, error) {
	var dates []model.Date
	err := r.db.WithContext(ctx).
		Model(&model.TradingResult{}).
		Distinct().
		Order("date DESC").
		Limit(days).
		Pluck("date", &dates).Error
	if err != nil {
		return nil, fmt.Errorf("last trading dates: %w", err)
	}
	return dates, nil
}

// LastTradingDay returns MAX(date), or nil when the table is empty.
func (r *gormTradingRepository) LastTradingDay(ctx context.Context) (*model.Date, error) {
	var d model.Date
	row := r.db.WithContext(ctx).
		Model(&model.TradingResult{}).
		Select("MAX(date)").
		Row()
	if err := row.Scan(&d); err != nil {
		return nil, fmt.Errorf("last trading day: %w", err)
	}
	if d.IsZero() {
		return nil, nil
	}
	return &d, nil
}

// Dynamics returns rows with date in [start, end] matching the
// provided equality filters, ordered by date then exchange_product_id
// so pagination is deterministic. Offset applies before limit.
func (r *gormTradingRepository) Dynamics(ctx context.Context, q model.DynamicsQuery) ([]model.TradingResult, error) {
	tx := r.db.WithContext(ctx).
		Model(&model.TradingResult{}).
		Where("date >= ? AND date <= ?", q.StartDate, q.EndDate)
	tx = applyFilters(tx, q.OilID, q.DeliveryTypeID, q.DeliveryBasisID)
	tx = tx.Order("date ASC").Order("exchange_product_id ASC")
	if q.Offset != nil {
		tx = tx.Offset(*q.Offset)
	}
	if q.Limit != nil {
		tx = tx.Limit(*q.Limit)
	}

	var rows []model.TradingResult
	if err := tx.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("dynamics: %w", err)
	}
	return rows, nil
}

// TradingResultsForLastDay returns the rows of the latest trading day.
// Two round-trips (max date, then the filtered fetch); a write landing
// between them could move the latest day, which the read path accepts.
func (r *gormTradingRepository) TradingResultsForLastDay(ctx context.Context, oilID, deliveryTypeID, deliveryBasisID string) ([]model.TradingResult, error) {
	last, err := r.LastTradingDay(ctx)
	if err != nil {
		return nil, err
	}
	if last == nil {
		return []model.TradingResult{}, nil
	}

	tx := r.db.WithContext(ctx).
		Model(&model.TradingResult{}).
		Where("date = ?", *last)
	tx = applyFilters(tx, oilID, deliveryTypeID, deliveryBasisID)

	var rows []model.TradingResult
	if err := tx.Order("exchange_product_id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("trading results for last day: %w", err)
	}
	return rows, nil
}

// applyFilters adds the optional equality filters; empty string means
// "no filter".
func applyFilters(tx *gorm.DB, oilID, deliveryTypeID, deliveryBasisID string) *gorm.DB {
	if oilID != "" {
		tx = tx.Where("oil_id = ?", oilID)
	}
	if deliveryTypeID != "" {
		tx = tx.Where("delivery_type_id = ?", deliveryTypeID)
	}
	if deliveryBasisID != "" {
		tx = tx.Where("delivery_basis_id = ?", deliveryBasisID)
	}
	return tx
}
