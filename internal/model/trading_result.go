package model

// TradingResult is one row of the spimex_trading_results relation.
// volume/total/count are TEXT in the source table and are returned
// verbatim; converting them to numeric types is a schema migration
// concern, not this service's.
type TradingResult struct {
	ID                  int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ExchangeProductID   string `gorm:"column:exchange_product_id" json:"exchange_product_id"`
	ExchangeProductName string `gorm:"column:exchange_product_name" json:"exchange_product_name"`
	OilID               string `gorm:"column:oil_id;index" json:"oil_id"`
	DeliveryBasisID     string `gorm:"column:delivery_basis_id;index" json:"delivery_basis_id"`
	DeliveryBasisName   string `gorm:"column:delivery_basis_name" json:"delivery_basis_name"`
	DeliveryTypeID      string `gorm:"column:delivery_type_id;index" json:"delivery_type_id"`
	Volume              string `gorm:"column:volume" json:"volume"`
	Total               string `gorm:"column:total" json:"total"`
	Count               string `gorm:"column:count" json:"count"`
	Date                Date   `gorm:"column:date;index" json:"date"`
	CreatedOn           *Date  `gorm:"column:created_on" json:"created_on"`
	UpdatedOn           *Date  `gorm:"column:updated_on" json:"updated_on"`
}

func (TradingResult) TableName() string {
	return "spimex_trading_results"
}

// TradingDatesResponse lists the last N distinct trading dates, newest first.
type TradingDatesResponse struct {
	Dates []Date `json:"dates"`
}

// DynamicsQuery carries the validated parameters of a dynamics request.
// Empty-string filters mean "no filter"; nil Limit/Offset mean unbounded.
type DynamicsQuery struct {
	StartDate       Date
	EndDate         Date
	OilID           string
	DeliveryTypeID  string
	DeliveryBasisID string
	Limit           *int
	Offset          *int
}

// Params renders the full query as cache-key parameters. Absent
// optional values appear as explicit nulls so that "no filter" and a
// filter that happens to be missing hash identically across processes.
func (q DynamicsQuery) Params() map[string]any {
	return map[string]any{
		"start_date":        q.StartDate.String(),
		"end_date":          q.EndDate.String(),
		"oil_id":            nullableString(q.OilID),
		"delivery_type_id":  nullableString(q.DeliveryTypeID),
		"delivery_basis_id": nullableString(q.DeliveryBasisID),
		"limit":             nullableInt(q.Limit),
		"offset":            nullableInt(q.Offset),
	}
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}
