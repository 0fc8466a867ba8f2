package model

import "time"

const (
	StatusActive    = "active"
	StatusDismissed = "dismissed"
	StatusCompleted = "completed"
)

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Cache keys partition insight batches per generator run.
const (
	CacheKeyGeneral    = "proactive_insights"
	CacheKeyPricing    = "pricing_insights"
	CacheKeyScheduling = "scheduling_suggestions"
)

const (
	ActionAdjustPrice  = "adjust_price"
	ActionCreateBundle = "create_bundle"
	ActionTestPrice    = "test_price"
)

type Insight struct {
	ID            string
	OwnerID       string
	CacheKey      string
	Type          string
	Priority      string
	Title         string
	Message       string
	ActionLabel   string
	ArticleIDs    []string
	ArticleTitles []string
	Action        *SuggestedAction
	Status        string
	CreatedAt     time.Time
	LastRefreshAt time.Time
	ExpiresAt     time.Time
}

// SuggestedAction is a tagged union over Kind. Only adjust_price and
// create_bundle are executable; test_price is informational.
type SuggestedAction struct {
	Kind           string       `json:"kind"`
	CurrentPrice   float64      `json:"current_price,omitempty"`
	SuggestedPrice float64      `json:"suggested_price,omitempty"`
	MinPrice       float64      `json:"min_price,omitempty"`
	MaxPrice       float64      `json:"max_price,omitempty"`
	Reasoning      string       `json:"reasoning,omitempty"`
	Confidence     float64      `json:"confidence,omitempty"`
	MarketData     *MarketStats `json:"market_data,omitempty"`
	MemberIDs      []string     `json:"member_ids,omitempty"`
	TestMinPrice   float64      `json:"test_min_price,omitempty"`
	TestMaxPrice   float64      `json:"test_max_price,omitempty"`
}

func (i *Insight) Terminal() bool {
	return i.Status == StatusDismissed || i.Status == StatusCompleted
}
