package insight

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/salasvega/easyvinted8-sub003/internal/model"
)

const (
	// SalesWindow bounds the sample fed into market aggregation.
	SalesWindow = 30 * 24 * time.Hour
	// MaxSalesSample caps the number of most-recent sales considered.
	MaxSalesSample = 500
	// Segments with fewer observations are statistically unreliable and
	// suppressed entirely.
	minSegmentSales = 3
)

// ComputeMarketStats groups completed sales into (brand, category, condition)
// segments and aggregates their sold prices. Absence of data yields an empty
// slice, never an error. Most-observed segments come first.
func ComputeMarketStats(sales []model.Sale) []model.MarketStats {
	type segment struct {
		stats model.MarketStats
		sum   float64
	}

	segments := make(map[string]*segment)
	var order []string

	for _, s := range sales {
		if s.Brand == nil || *s.Brand == "" || s.SoldPrice == nil {
			continue
		}

		category := deriveCategory(s.Title)
		key := strings.ToLower(*s.Brand) + "|" + strings.ToLower(category) + "|" + strings.ToLower(s.Condition)

		seg, ok := segments[key]
		if !ok {
			seg = &segment{stats: model.MarketStats{
				Brand:        *s.Brand,
				Category:     category,
				Condition:    s.Condition,
				MinSoldPrice: *s.SoldPrice,
				MaxSoldPrice: *s.SoldPrice,
			}}
			segments[key] = seg
			order = append(order, key)
		}

		price := *s.SoldPrice
		seg.sum += price
		seg.stats.TotalSales++
		if price < seg.stats.MinSoldPrice {
			seg.stats.MinSoldPrice = price
		}
		if price > seg.stats.MaxSoldPrice {
			seg.stats.MaxSoldPrice = price
		}
	}

	var result []model.MarketStats
	for _, key := range order {
		seg := segments[key]
		if seg.stats.TotalSales < minSegmentSales {
			continue
		}
		seg.stats.AvgSoldPrice = round2(seg.sum / float64(seg.stats.TotalSales))
		result = append(result, seg.stats)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TotalSales > result[j].TotalSales
	})

	return result
}

// deriveCategory takes the first whitespace token of the title. A known
// simplification carried over as-is; it under-merges segments across
// synonyms and languages.
func deriveCategory(title string) string {
	fields := strings.Fields(title)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// SegmentKey returns the lookup key an article uses to find its segment.
func SegmentKey(brand, title, condition string) string {
	return strings.ToLower(brand) + "|" + strings.ToLower(deriveCategory(title)) + "|" + strings.ToLower(condition)
}

func statsByKey(stats []model.MarketStats) map[string]model.MarketStats {
	m := make(map[string]model.MarketStats, len(stats))
	for _, s := range stats {
		key := strings.ToLower(s.Brand) + "|" + strings.ToLower(s.Category) + "|" + strings.ToLower(s.Condition)
		if _, ok := m[key]; !ok {
			m[key] = s
		}
	}
	return m
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
