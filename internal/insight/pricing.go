package insight

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/salasvega/easyvinted8-sub003/internal/model"
	"github.com/salasvega/easyvinted8-sub003/pkg/llm"
)

const (
	TypeUnderpriced = "underpriced"
	TypeOverpriced  = "overpriced"
	TypePriceTest   = "price_test"
)

// priceBand is the reference range for one listing: segment-level market
// stats when the segment exists, the listing's own previously suggested band
// otherwise. Listings with neither are excluded, never given a fabricated
// range.
type priceBand struct {
	min       float64
	max       float64
	reference float64
	source    string
	market    *model.MarketStats
}

type PricingGenerator struct {
	llm llm.Client
	now func() time.Time
}

func NewPricingGenerator(c llm.Client) *PricingGenerator {
	return &PricingGenerator{llm: c, now: time.Now}
}

// Generate composes one structured prompt from inventory, sale history and
// market stats, and normalizes the content-service response into insights.
// Priorities are assigned deterministically afterwards, not by the model.
func (g *PricingGenerator) Generate(ctx context.Context, articles []model.Article, sales []model.Sale, stats []model.MarketStats) ([]model.Insight, error) {
	byKey := statsByKey(stats)

	bands := make(map[string]priceBand)
	byID := make(map[string]model.Article)
	var candidates []model.Article
	for _, a := range articles {
		band, ok := bandFor(a, byKey)
		if !ok {
			continue
		}
		bands[a.ID] = band
		byID[a.ID] = a
		candidates = append(candidates, a)
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	sb.WriteString(formatInventory(candidates, g.now()))
	sb.WriteString("\n")
	sb.WriteString(formatSales(sales))
	sb.WriteString("\n")
	sb.WriteString(formatMarketStats(stats))
	sb.WriteString("\n")
	sb.WriteString(formatPriceBands(candidates, bands))

	results, err := llm.GeneratePricingInsights(ctx, g.llm, sb.String())
	if err != nil {
		return nil, &GenerationError{Err: err}
	}
	slog.Info("pricing generation complete", "model", g.llm.ModelName(), "insights", len(results))

	insights := make([]model.Insight, 0, len(results))
	for i, r := range results {
		if r.Type != TypeUnderpriced && r.Type != TypeOverpriced && r.Type != TypePriceTest {
			return nil, &GenerationError{Err: fmt.Errorf("unknown pricing insight type %q", r.Type)}
		}
		for _, id := range r.ArticleIDs {
			if _, ok := byID[id]; !ok {
				return nil, &GenerationError{Err: fmt.Errorf("pricing insight %d references unknown article %q", i, id)}
			}
		}

		subject := byID[r.ArticleIDs[0]]
		band := bands[subject.ID]

		if r.SuggestedPrice < band.min || r.SuggestedPrice > band.max {
			return nil, &GenerationError{Err: fmt.Errorf("pricing insight %d suggests %.2f outside band [%.2f, %.2f]", i, r.SuggestedPrice, band.min, band.max)}
		}

		action := &model.SuggestedAction{
			Kind:           model.ActionAdjustPrice,
			CurrentPrice:   subject.Price,
			SuggestedPrice: r.SuggestedPrice,
			MinPrice:       band.min,
			MaxPrice:       band.max,
			Reasoning:      r.Reasoning,
			Confidence:     r.Confidence,
			MarketData:     band.market,
		}
		if r.Type == TypePriceTest {
			action = &model.SuggestedAction{
				Kind:         model.ActionTestPrice,
				CurrentPrice: subject.Price,
				Reasoning:    r.Reasoning,
				Confidence:   r.Confidence,
				TestMinPrice: band.min,
				TestMaxPrice: band.max,
				MarketData:   band.market,
			}
		}

		insights = append(insights, model.Insight{
			ID:          newID(),
			Type:        r.Type,
			Priority:    classifyPriority(subject.Price, band.reference),
			Title:       r.Title,
			Message:     r.Message,
			ActionLabel: r.ActionLabel,
			ArticleIDs:  r.ArticleIDs,
			Action:      action,
		})
	}

	return insights, nil
}

func bandFor(a model.Article, byKey map[string]model.MarketStats) (priceBand, bool) {
	if a.Brand != nil && *a.Brand != "" {
		if seg, ok := byKey[SegmentKey(*a.Brand, a.Title, a.Condition)]; ok {
			return priceBand{
				min:       seg.MinSoldPrice,
				max:       seg.MaxSoldPrice,
				reference: seg.AvgSoldPrice,
				source:    "market",
				market:    &seg,
			}, true
		}
	}

	if a.SuggestedMinPrice != nil && a.SuggestedMaxPrice != nil && *a.SuggestedMaxPrice > 0 {
		return priceBand{
			min:       *a.SuggestedMinPrice,
			max:       *a.SuggestedMaxPrice,
			reference: round2((*a.SuggestedMinPrice + *a.SuggestedMaxPrice) / 2),
			source:    "listing",
		}, true
	}

	return priceBand{}, false
}

// classifyPriority grades the opportunity against the reference price:
// a gap of at least 30% or more than 10 currency units is high, 15-30% or
// 5-10 units is medium, anything smaller is low.
func classifyPriority(currentPrice, referencePrice float64) string {
	if referencePrice <= 0 {
		return model.PriorityLow
	}

	gap := math.Abs(referencePrice - currentPrice)
	pct := gap / referencePrice

	switch {
	case pct >= 0.30 || gap > 10:
		return model.PriorityHigh
	case pct >= 0.15 || gap >= 5:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}
