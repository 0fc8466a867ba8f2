package insight

import (
	"fmt"
	"strings"
	"time"

	"github.com/salasvega/easyvinted8-sub003/internal/model"
)

func formatInventory(articles []model.Article, now time.Time) string {
	var sb strings.Builder
	sb.WriteString("Active listings:\n")
	for _, a := range articles {
		brand := "unknown"
		if a.Brand != nil && *a.Brand != "" {
			brand = *a.Brand
		}
		days := int(now.Sub(a.CreatedAt).Hours() / 24)
		sb.WriteString(fmt.Sprintf("- id=%s title=%q brand=%s condition=%s price=%.2f status=%s listed_days=%d\n",
			a.ID, a.Title, brand, a.Condition, a.Price, a.Status, days))
	}
	return sb.String()
}

func formatSales(sales []model.Sale) string {
	var sb strings.Builder
	sb.WriteString("Recent completed sales:\n")
	for _, s := range sales {
		brand := "unknown"
		if s.Brand != nil {
			brand = *s.Brand
		}
		price := 0.0
		if s.SoldPrice != nil {
			price = *s.SoldPrice
		}
		sb.WriteString(fmt.Sprintf("- title=%q brand=%s condition=%s sold_price=%.2f sold_at=%s\n",
			s.Title, brand, s.Condition, price, s.SoldAt.Format("2006-01-02")))
	}
	return sb.String()
}

func formatMarketStats(stats []model.MarketStats) string {
	var sb strings.Builder
	sb.WriteString("Market statistics per segment (brand / category / condition):\n")
	for _, s := range stats {
		sb.WriteString(fmt.Sprintf("- %s / %s / %s: avg=%.2f min=%.2f max=%.2f sales=%d\n",
			s.Brand, s.Category, s.Condition, s.AvgSoldPrice, s.MinSoldPrice, s.MaxSoldPrice, s.TotalSales))
	}
	return sb.String()
}

func formatPriceBands(articles []model.Article, bands map[string]priceBand) string {
	var sb strings.Builder
	sb.WriteString("Reference price range per listing (suggested prices must stay inside):\n")
	for _, a := range articles {
		band, ok := bands[a.ID]
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("- id=%s min=%.2f max=%.2f (source=%s)\n", a.ID, band.min, band.max, band.source))
	}
	return sb.String()
}

func formatBundleItems(articles []model.Article) string {
	var sb strings.Builder
	sb.WriteString("Bundle items:\n")
	for _, a := range articles {
		brand := "unknown"
		if a.Brand != nil && *a.Brand != "" {
			brand = *a.Brand
		}
		sb.WriteString(fmt.Sprintf("- title=%q brand=%s condition=%s price=%.2f\n", a.Title, brand, a.Condition, a.Price))
	}
	return sb.String()
}
