package insight

import (
	"testing"
	"time"

	"github.com/salasvega/easyvinted8-sub003/internal/model"
)

func ptr[T any](v T) *T { return &v }

func sale(brand, title, condition string, price float64) model.Sale {
	return model.Sale{
		Title:     title,
		Brand:     &brand,
		Condition: condition,
		SoldPrice: &price,
		SoldAt:    time.Now(),
	}
}

func TestComputeMarketStats_Empty(t *testing.T) {
	stats := ComputeMarketStats(nil)
	if len(stats) != 0 {
		t.Fatalf("expected no stats, got %d", len(stats))
	}
}

func TestComputeMarketStats_SuppressesThinSegments(t *testing.T) {
	sales := []model.Sale{
		sale("Nike", "Air Max 90", "very_good", 25),
		sale("Nike", "Air Max 95", "very_good", 30),
		// Only 2 observations: below the reliability threshold.
	}

	stats := ComputeMarketStats(sales)
	if len(stats) != 0 {
		t.Fatalf("expected segment with 2 sales to be suppressed, got %d segments", len(stats))
	}
}

func TestComputeMarketStats_Aggregates(t *testing.T) {
	sales := []model.Sale{
		sale("Nike", "Air Max 90", "very_good", 22),
		sale("Nike", "Air Force 1", "very_good", 27),
		sale("Nike", "Air Max 95", "very_good", 32),
	}

	stats := ComputeMarketStats(sales)
	if len(stats) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(stats))
	}

	s := stats[0]
	if s.Brand != "Nike" || s.Category != "Air" || s.Condition != "very_good" {
		t.Errorf("unexpected segment key: %+v", s)
	}
	if s.AvgSoldPrice != 27 {
		t.Errorf("expected avg 27, got %v", s.AvgSoldPrice)
	}
	if s.MinSoldPrice != 22 || s.MaxSoldPrice != 32 {
		t.Errorf("expected min 22 max 32, got %v/%v", s.MinSoldPrice, s.MaxSoldPrice)
	}
	if s.TotalSales != 3 {
		t.Errorf("expected 3 sales, got %d", s.TotalSales)
	}
}

func TestComputeMarketStats_SkipsUnusableRows(t *testing.T) {
	price := 20.0
	sales := []model.Sale{
		{Title: "Air Max", Brand: nil, SoldPrice: &price, Condition: "good"},
		{Title: "Air Max", Brand: ptr("Nike"), SoldPrice: nil, Condition: "good"},
	}

	stats := ComputeMarketStats(sales)
	if len(stats) != 0 {
		t.Fatalf("expected rows without brand or price to be skipped, got %d segments", len(stats))
	}
}

func TestComputeMarketStats_SortsByVolume(t *testing.T) {
	var sales []model.Sale
	for i := 0; i < 3; i++ {
		sales = append(sales, sale("Adidas", "Gazelle classic", "good", 18))
	}
	for i := 0; i < 5; i++ {
		sales = append(sales, sale("Nike", "Air Max 90", "very_good", 28))
	}

	stats := ComputeMarketStats(sales)
	if len(stats) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(stats))
	}
	if stats[0].Brand != "Nike" || stats[0].TotalSales != 5 {
		t.Errorf("expected most-observed segment first, got %+v", stats[0])
	}
}

func TestComputeMarketStats_MergesCaseVariants(t *testing.T) {
	sales := []model.Sale{
		sale("Nike", "Air Max 90", "very_good", 25),
		sale("NIKE", "air Force 1", "very_good", 27),
		sale("nike", "AIR Jordan", "very_good", 29),
	}

	stats := ComputeMarketStats(sales)
	if len(stats) != 1 {
		t.Fatalf("expected case variants to merge into 1 segment, got %d", len(stats))
	}
	if stats[0].TotalSales != 3 {
		t.Errorf("expected 3 sales in merged segment, got %d", stats[0].TotalSales)
	}
}

func TestDeriveCategory(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Air Max 90", "Air"},
		{"  Gazelle  ", "Gazelle"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := deriveCategory(tt.title); got != tt.want {
			t.Errorf("deriveCategory(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}
