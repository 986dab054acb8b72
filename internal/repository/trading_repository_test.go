package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"spimex/internal/model"
)

func newTestRepo(t *testing.T) (TradingRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.TradingResult{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewGormTradingRepository(db), db
}

func row(productID, oilID, deliveryTypeID, deliveryBasisID string, date model.Date) model.TradingResult {
	return model.TradingResult{
		ExchangeProductID:   productID,
		ExchangeProductName: "product " + productID,
		OilID:               oilID,
		DeliveryBasisID:     deliveryBasisID,
		DeliveryBasisName:   "basis " + deliveryBasisID,
		DeliveryTypeID:      deliveryTypeID,
		Volume:              "1000",
		Total:               "45000000",
		Count:               "12",
		Date:                date,
	}
}

func seed(t *testing.T, db *gorm.DB, rows ...model.TradingResult) {
	t.Helper()
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestLastTradingDates(t *testing.T) {
	repo, db := newTestRepo(t)
	seed(t, db,
		row("A1", "1001", "1", "AB1", model.NewDate(2023, time.January, 10)),
		row("A2", "1001", "1", "AB1", model.NewDate(2023, time.January, 11)),
		row("A3", "1002", "1", "AB1", model.NewDate(2023, time.January, 11)),
		row("A4", "1001", "1", "AB1", model.NewDate(2023, time.January, 12)),
	)

	dates, err := repo.LastTradingDates(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"2023-01-12", "2023-01-11", "2023-01-10"}
	if len(dates) != len(want) {
		t.Fatalf("got %d dates, want %d", len(dates), len(want))
	}
	for i, w := range want {
		if dates[i].String() != w {
			t.Errorf("dates[%d] = %s, want %s", i, dates[i], w)
		}
	}

	dates, err = repo.LastTradingDates(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dates) != 2 || dates[0].String() != "2023-01-12" || dates[1].String() != "2023-01-11" {
		t.Errorf("limited query returned %v", dates)
	}
}

func TestLastTradingDay(t *testing.T) {
	repo, db := newTestRepo(t)

	last, err := repo.LastTradingDay(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if last != nil {
		t.Errorf("empty table should yield nil, got %v", last)
	}

	seed(t, db,
		row("A1", "1001", "1", "AB1", model.NewDate(2023, time.January, 10)),
		row("A2", "1001", "1", "AB1", model.NewDate(2023, time.January, 12)),
	)
	last, err = repo.LastTradingDay(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if last == nil || last.String() != "2023-01-12" {
		t.Errorf("got %v, want 2023-01-12", last)
	}
}

func TestDynamicsOrderingAndPagination(t *testing.T) {
	repo, db := newTestRepo(t)
	seed(t, db,
		row("B2", "1001", "1", "AB1", model.NewDate(2023, time.January, 11)),
		row("B1", "1001", "1", "AB1", model.NewDate(2023, time.January, 10)),
		row("A9", "1001", "1", "AB1", model.NewDate(2023, time.January, 11)),
	)

	q := model.DynamicsQuery{
		StartDate: model.NewDate(2023, time.January, 10),
		EndDate:   model.NewDate(2023, time.January, 11),
	}
	rows, err := repo.Dynamics(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Date ascending, product id breaks the tie within a date.
	wantOrder := []string{"B1", "A9", "B2"}
	if len(rows) != len(wantOrder) {
		t.Fatalf("got %d rows, want %d", len(rows), len(wantOrder))
	}
	for i, w := range wantOrder {
		if rows[i].ExchangeProductID != w {
			t.Errorf("rows[%d] = %s, want %s", i, rows[i].ExchangeProductID, w)
		}
	}

	limit, offset := 1, 1
	q.Limit, q.Offset = &limit, &offset
	rows, err = repo.Dynamics(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].ExchangeProductID != "A9" {
		t.Errorf("limit=1 offset=1 returned %v", rows)
	}
}

func TestDynamicsRangeIsInclusive(t *testing.T) {
	repo, db := newTestRepo(t)
	seed(t, db,
		row("A1", "1001", "1", "AB1", model.NewDate(2023, time.January, 9)),
		row("A2", "1001", "1", "AB1", model.NewDate(2023, time.January, 10)),
		row("A3", "1001", "1", "AB1", model.NewDate(2023, time.January, 11)),
		row("A4", "1001", "1", "AB1", model.NewDate(2023, time.January, 12)),
	)

	rows, err := repo.Dynamics(context.Background(), model.DynamicsQuery{
		StartDate: model.NewDate(2023, time.January, 10),
		EndDate:   model.NewDate(2023, time.January, 11),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 || rows[0].Date.String() != "2023-01-10" || rows[1].Date.String() != "2023-01-11" {
		t.Errorf("inclusive range returned %v", rows)
	}
}

func TestDynamicsFilters(t *testing.T) {
	repo, db := newTestRepo(t)
	d := model.NewDate(2023, time.January, 10)
	seed(t, db,
		row("A1", "1001", "1", "AB1", d),
		row("A2", "1002", "1", "AB1", d),
		row("A3", "1001", "2", "AB2", d),
	)

	rows, err := repo.Dynamics(context.Background(), model.DynamicsQuery{
		StartDate: d,
		EndDate:   d,
		OilID:     "1001",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("oil filter: got %d rows, want 2", len(rows))
	}

	rows, err = repo.Dynamics(context.Background(), model.DynamicsQuery{
		StartDate:       d,
		EndDate:         d,
		OilID:           "1001",
		DeliveryTypeID:  "2",
		DeliveryBasisID: "AB2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].ExchangeProductID != "A3" {
		t.Errorf("combined filters returned %v", rows)
	}
}

func TestTradingResultsForLastDay(t *testing.T) {
	repo, db := newTestRepo(t)
	seed(t, db,
		row("B1", "1001", "1", "AB1", model.NewDate(2023, time.January, 10)),
		row("B2", "1001", "1", "AB1", model.NewDate(2023, time.January, 11)),
		row("A1", "1002", "1", "AB1", model.NewDate(2023, time.January, 11)),
	)

	rows, err := repo.TradingResultsForLastDay(context.Background(), "", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	// Ordered by product id, only the latest day.
	if rows[0].ExchangeProductID != "A1" || rows[1].ExchangeProductID != "B2" {
		t.Errorf("wrong rows or order: %v, %v", rows[0].ExchangeProductID, rows[1].ExchangeProductID)
	}

	rows, err = repo.TradingResultsForLastDay(context.Background(), "1002", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].ExchangeProductID != "A1" {
		t.Errorf("oil filter on last day returned %v", rows)
	}
}

func TestTradingResultsForLastDayEmptyTable(t *testing.T) {
	repo, _ := newTestRepo(t)

	rows, err := repo.TradingResultsForLastDay(context.Background(), "", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("empty table should yield no rows, got %v", rows)
	}
}
