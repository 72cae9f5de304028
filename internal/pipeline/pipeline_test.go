package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sales-analytics-service/internal/apiclient"
	"sales-analytics-service/internal/validator"

	"github.com/shopspring/decimal"
)

const sampleData = `TransactionID|Date|ProductID|ProductName|Quantity|UnitPrice|CustomerID|Region
T001|2024-01-05|P101|Widget|10|25.50|C001|North
T002|2024-01-06|P102|Gadget|2|50.00|C002|South
T003|2024-01-06|P999|Trinket|1|5.00|C003|North
T004|2024-01-07|Q888|Widget|1|25.50|C004|North
T005|2024-01-07|P101|Widget|0|25.50|C005|North
`

func writeSampleFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales_data.txt")
	if err := os.WriteFile(path, []byte(sampleData), 0644); err != nil {
		t.Fatalf("failed to write sample file: %v", err)
	}
	return path
}

func newTestService(t *testing.T, handler http.Handler) *AnalysisService {
	t.Helper()
	config := DefaultServiceConfig()
	if handler != nil {
		server := httptest.NewServer(handler)
		t.Cleanup(server.Close)
		config.API = &apiclient.Config{
			CatalogBaseURL: server.URL,
			RateBaseURL:    server.URL,
			Timeout:        2 * time.Second,
			ProductLimit:   100,
		}
	} else {
		config.API = &apiclient.Config{
			CatalogBaseURL: "http://127.0.0.1:1",
			RateBaseURL:    "http://127.0.0.1:1",
			Timeout:        200 * time.Millisecond,
			ProductLimit:   100,
		}
	}

	service, err := NewAnalysisService(config, nil)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return service
}

func apiHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"products":[
			{"id":101,"title":"Widget","category":"tools","brand":"Acme","price":25.5,"rating":4.2},
			{"id":102,"title":"Gadget","category":"electronics","brand":"Globex","price":99.0,"rating":3.8}
		],"total":2}`))
	})
	mux.HandleFunc("/v4/latest/USD", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"base":"USD","rates":{"EUR":0.92}}`))
	})
	return mux
}

func TestAnalysisService_Run(t *testing.T) {
	service := newTestService(t, apiHandler())

	result, err := service.Run(context.Background(), &AnalysisRequest{
		InputPath: writeSampleFile(t),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	t.Run("run identity", func(t *testing.T) {
		if result.RunID == "" {
			t.Error("expected a run ID")
		}
		if result.GeneratedAt.IsZero() {
			t.Error("expected a timestamp")
		}
	})

	t.Run("cleaning pass", func(t *testing.T) {
		// T005 has quantity zero and is dropped during cleaning.
		if result.ParseStats.Invalid != 1 {
			t.Errorf("ParseStats.Invalid = %d, want 1", result.ParseStats.Invalid)
		}
	})

	t.Run("strict filter", func(t *testing.T) {
		// T004 passes cleaning but fails the strict product prefix check.
		if result.FilterSummary.Invalid != 1 {
			t.Errorf("FilterSummary.Invalid = %d, want 1", result.FilterSummary.Invalid)
		}
		if len(result.Transactions) != 3 {
			t.Errorf("expected 3 final transactions, got %d", len(result.Transactions))
		}
	})

	t.Run("profile over unfiltered data", func(t *testing.T) {
		if result.Profile == nil || len(result.Profile.Regions) != 2 {
			t.Fatalf("unexpected profile: %+v", result.Profile)
		}
	})

	t.Run("aggregations over cleaned records", func(t *testing.T) {
		// All four cleaned transactions: 255 + 100 + 5 + 25.50 = 385.50.
		if !result.Metrics.TotalRevenue.Equal(decimal.RequireFromString("385.5")) {
			t.Errorf("TotalRevenue = %s, want 385.50", result.Metrics.TotalRevenue)
		}
		// The three strict-filtered ones: 255 + 100 + 5 = 360.
		if !result.FilteredMetrics.TotalRevenue.Equal(decimal.RequireFromString("360")) {
			t.Errorf("FilteredMetrics.TotalRevenue = %s, want 360", result.FilteredMetrics.TotalRevenue)
		}
		if len(result.RegionSales) != 2 {
			t.Fatalf("expected 2 regions, got %d", len(result.RegionSales))
		}
		if result.RegionSales[0].Region != "North" || result.RegionSales[0].TransactionCount != 3 {
			t.Errorf("unexpected leading region: %+v", result.RegionSales[0])
		}
		if result.PeakDay == nil || result.PeakDay.Date != "2024-01-05" {
			t.Errorf("unexpected peak day: %+v", result.PeakDay)
		}
	})

	t.Run("enrichment over cleaned records", func(t *testing.T) {
		if result.CatalogDegraded {
			t.Error("catalog should not be degraded")
		}
		if len(result.Enriched) != 4 {
			t.Errorf("expected 4 enriched records, got %d", len(result.Enriched))
		}
		if result.EnrichmentSummary.Matched != 2 {
			t.Errorf("Matched = %d, want 2", result.EnrichmentSummary.Matched)
		}
		want := []string{"P999", "Q888"}
		got := result.EnrichmentSummary.UnmatchedProductIDs
		if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
			t.Errorf("UnmatchedProductIDs = %v, want %v", got, want)
		}
		if result.Rate == nil || result.Rate.Rate != 0.92 || result.Rate.Fallback {
			t.Errorf("unexpected rate result: %+v", result.Rate)
		}
	})
}

func TestAnalysisService_RunFilters(t *testing.T) {
	service := newTestService(t, apiHandler())
	min := decimal.RequireFromString("100")

	result, err := service.Run(context.Background(), &AnalysisRequest{
		InputPath: writeSampleFile(t),
		Filter: validator.FilterOptions{
			Region:    "North",
			MinAmount: &min,
		},
		SkipEnrichment: true,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.Transactions) != 1 || result.Transactions[0].TransactionID != "T001" {
		t.Fatalf("expected T001 only, got %d transactions", len(result.Transactions))
	}
	if result.FilterSummary.FilteredByRegion != 1 {
		t.Errorf("FilteredByRegion = %d, want 1", result.FilterSummary.FilteredByRegion)
	}
	if result.FilterSummary.FilteredByAmount != 1 {
		t.Errorf("FilteredByAmount = %d, want 1", result.FilterSummary.FilteredByAmount)
	}
	if result.Enriched != nil || result.EnrichmentSummary != nil {
		t.Error("enrichment should be skipped")
	}

	// Filters narrow the final record set but never the analytical views.
	if len(result.RegionSales) != 2 {
		t.Errorf("expected 2 regions despite filters, got %d", len(result.RegionSales))
	}
	if !result.Metrics.TotalRevenue.Equal(decimal.RequireFromString("385.5")) {
		t.Errorf("TotalRevenue = %s, want 385.50", result.Metrics.TotalRevenue)
	}
	if !result.FilteredMetrics.TotalRevenue.Equal(decimal.RequireFromString("255")) {
		t.Errorf("FilteredMetrics.TotalRevenue = %s, want 255", result.FilteredMetrics.TotalRevenue)
	}
}

func TestAnalysisService_RunDegraded(t *testing.T) {
	service := newTestService(t, nil)

	result, err := service.Run(context.Background(), &AnalysisRequest{
		InputPath: writeSampleFile(t),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !result.CatalogDegraded {
		t.Error("expected catalog degradation")
	}
	if result.EnrichmentSummary.Matched != 0 {
		t.Errorf("Matched = %d, want 0 with empty catalog", result.EnrichmentSummary.Matched)
	}
	if len(result.Enriched) != 4 {
		t.Errorf("expected 4 enriched records, got %d", len(result.Enriched))
	}
	if result.Rate == nil || !result.Rate.Fallback || result.Rate.Rate != apiclient.FallbackEURRate {
		t.Errorf("expected fallback rate, got %+v", result.Rate)
	}
}

func TestAnalysisService_RunErrors(t *testing.T) {
	service := newTestService(t, apiHandler())

	t.Run("missing input path", func(t *testing.T) {
		_, err := service.Run(context.Background(), &AnalysisRequest{})
		if err == nil {
			t.Error("expected error for empty input path")
		}
	})

	t.Run("missing file recovers with empty result", func(t *testing.T) {
		result, err := service.Run(context.Background(), &AnalysisRequest{
			InputPath:      filepath.Join(t.TempDir(), "nope.txt"),
			SkipEnrichment: true,
		})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if result.ParseStats == nil || result.ParseStats.Valid != 0 {
			t.Errorf("unexpected parse stats: %+v", result.ParseStats)
		}
		if len(result.Transactions) != 0 {
			t.Errorf("expected no transactions, got %d", len(result.Transactions))
		}
		if !result.Metrics.TotalRevenue.IsZero() {
			t.Errorf("TotalRevenue = %s, want 0", result.Metrics.TotalRevenue)
		}
		if result.PeakDay != nil {
			t.Errorf("expected no peak day, got %+v", result.PeakDay)
		}
	})
}
