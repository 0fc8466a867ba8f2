package model

import "time"

const (
	ArticleStatusDraft  = "draft"
	ArticleStatusActive = "active"
	ArticleStatusSold   = "sold"
)

type Article struct {
	ID                string
	OwnerID           string
	Title             string
	Brand             *string
	Condition         string
	Price             float64
	Status            string
	SuggestedMinPrice *float64
	SuggestedMaxPrice *float64
	CreatedAt         time.Time
}

type Bundle struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	Price       float64
	Discount    float64
	CreatedAt   time.Time
}

// Sale is a completed sale used for market aggregation. Brand and SoldPrice
// are nullable in the store; rows missing either are ignored.
type Sale struct {
	ArticleID string
	Title     string
	Brand     *string
	Condition string
	SoldPrice *float64
	SoldAt    time.Time
}
