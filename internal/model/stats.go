package model

// MarketStats aggregates completed sales for one (brand, category, condition)
// segment.
type MarketStats struct {
	Brand        string  `json:"brand"`
	Category     string  `json:"category"`
	Condition    string  `json:"condition"`
	AvgSoldPrice float64 `json:"avg_sold_price"`
	MinSoldPrice float64 `json:"min_sold_price"`
	MaxSoldPrice float64 `json:"max_sold_price"`
	TotalSales   int     `json:"total_sales"`
}
