// Package reporter renders analysis results as human-readable text or
// structured JSON, to any writer or to a file.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"sales-analytics-service/internal/analytics"
	"sales-analytics-service/internal/pipeline"
	"sales-analytics-service/pkg/errors"

	"github.com/shopspring/decimal"
)

// OutputFormat determines how a report is rendered.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

func (f OutputFormat) IsValid() bool {
	return f == FormatText || f == FormatJSON
}

// ReportConfig controls report content and rendering.
type ReportConfig struct {
	Format OutputFormat

	// MaxTrendDays caps the daily trend section.
	MaxTrendDays int

	// MaxCustomers caps the top customer section.
	MaxCustomers int
}

func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:       FormatText,
		MaxTrendDays: 10,
		MaxCustomers: 5,
	}
}

func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "format", string(c.Format),
			fmt.Errorf("format must be text or json"))
	}
	if c.MaxTrendDays <= 0 {
		c.MaxTrendDays = 10
	}
	if c.MaxCustomers <= 0 {
		c.MaxCustomers = 5
	}
	return nil
}

// ReportGenerator renders AnalysisResults.
type ReportGenerator struct {
	config *ReportConfig
}

func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ReportGenerator{config: config}, nil
}

// GenerateReport renders the full report to the writer.
func (rg *ReportGenerator) GenerateReport(result *pipeline.AnalysisResult, writer io.Writer) error {
	if result == nil {
		return errors.ReportError(errors.CodeRenderFailed, "",
			fmt.Errorf("analysis result cannot be nil"))
	}

	switch rg.config.Format {
	case FormatJSON:
		return rg.generateJSONReport(result, writer)
	default:
		return rg.generateTextReport(result, writer)
	}
}

// WriteReportFile renders the report to a file. The write is all or
// nothing: rendering happens in memory first so a render failure never
// leaves a partial file behind.
func (rg *ReportGenerator) WriteReportFile(result *pipeline.AnalysisResult, path string) error {
	var b strings.Builder
	if err := rg.GenerateReport(result, &b); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return errors.ReportError(errors.CodeWriteFailed, path, err)
	}
	return nil
}

func (rg *ReportGenerator) generateJSONReport(result *pipeline.AnalysisResult, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return errors.ReportError(errors.CodeRenderFailed, "", err)
	}
	return nil
}

func (rg *ReportGenerator) generateTextReport(result *pipeline.AnalysisResult, writer io.Writer) error {
	fmt.Fprintf(writer, "SALES ANALYSIS REPORT\n")
	fmt.Fprintf(writer, "Generated: %s\n", result.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(writer, "Run ID:    %s\n", result.RunID)
	fmt.Fprintf(writer, "Records:   %d\n\n", len(result.Transactions))

	fmt.Fprintf(writer, "=== OVERALL SUMMARY ===\n")
	rg.printOverallSummary(result, writer)
	fmt.Fprintf(writer, "\n")

	fmt.Fprintf(writer, "=== SALES BY REGION ===\n")
	rg.printRegionTable(result.RegionSales, writer)
	fmt.Fprintf(writer, "\n")

	fmt.Fprintf(writer, "=== TOP SELLING PRODUCTS ===\n")
	rg.printProductTable(result.TopProducts, writer)
	fmt.Fprintf(writer, "\n")

	fmt.Fprintf(writer, "=== TOP CUSTOMERS ===\n")
	rg.printCustomerTable(result.Customers, writer)
	fmt.Fprintf(writer, "\n")

	fmt.Fprintf(writer, "=== DAILY SALES TREND ===\n")
	rg.printDailyTrend(result.DailyTrend, writer)
	fmt.Fprintf(writer, "\n")

	fmt.Fprintf(writer, "=== PEAK AND LOW PERFORMERS ===\n")
	rg.printPerformance(result, writer)
	fmt.Fprintf(writer, "\n")

	if result.EnrichmentSummary != nil {
		fmt.Fprintf(writer, "=== API ENRICHMENT ===\n")
		rg.printEnrichmentSummary(result, writer)
		fmt.Fprintf(writer, "\n")
	}

	if result.FilterSummary != nil {
		fmt.Fprintf(writer, "=== PROCESSING SUMMARY ===\n")
		rg.printProcessingSummary(result, writer)
	}

	return nil
}

func (rg *ReportGenerator) printOverallSummary(result *pipeline.AnalysisResult, writer io.Writer) {
	m := result.Metrics
	fmt.Fprintf(writer, "Total Revenue:       %s\n", m.TotalRevenue.StringFixed(2))
	fmt.Fprintf(writer, "Units Sold:          %d\n", m.TotalQuantity)
	fmt.Fprintf(writer, "Transactions:        %d\n", m.TransactionCount)
	fmt.Fprintf(writer, "Average Order Value: %s\n", m.AverageOrderValue.StringFixed(2))
	if m.FirstDate != "" {
		fmt.Fprintf(writer, "Date Range:          %s to %s\n", m.FirstDate, m.LastDate)
	}

	if result.Rate != nil {
		base := m.TotalRevenue
		if result.FilteredMetrics != nil {
			base = result.FilteredMetrics.TotalRevenue
		}
		converted := base.Mul(decimal.NewFromFloat(result.Rate.Rate))
		label := fmt.Sprintf("Total Revenue (%s):", result.Rate.TargetCurrency)
		fmt.Fprintf(writer, "%-21s%s", label, converted.StringFixed(2))
		if result.Rate.Fallback {
			fmt.Fprintf(writer, " (approximate rate)")
		}
		fmt.Fprintf(writer, "\n")
	}
}

func (rg *ReportGenerator) printRegionTable(regions []analytics.RegionSales, writer io.Writer) {
	if len(regions) == 0 {
		fmt.Fprintf(writer, "No regional data.\n")
		return
	}
	fmt.Fprintf(writer, "%-15s %15s %8s %10s\n", "Region", "Revenue", "Txns", "Share")
	for _, r := range regions {
		fmt.Fprintf(writer, "%-15s %15s %8d %9s%%\n",
			r.Region, r.Total.StringFixed(2), r.TransactionCount, r.Percentage.StringFixed(2))
	}
}

func (rg *ReportGenerator) printProductTable(products []analytics.ProductSales, writer io.Writer) {
	if len(products) == 0 {
		fmt.Fprintf(writer, "No product data.\n")
		return
	}
	for i, p := range products {
		fmt.Fprintf(writer, "%2d. %-30s %6d units %15s\n", i+1, p.ProductName, p.Quantity, p.Revenue.StringFixed(2))
	}
}

func (rg *ReportGenerator) printCustomerTable(customers []analytics.CustomerStats, writer io.Writer) {
	if len(customers) == 0 {
		fmt.Fprintf(writer, "No customer data.\n")
		return
	}
	limit := rg.config.MaxCustomers
	if limit > len(customers) {
		limit = len(customers)
	}
	fmt.Fprintf(writer, "%-12s %15s %8s %15s\n", "Customer", "Total Spent", "Orders", "Avg Order")
	for _, c := range customers[:limit] {
		fmt.Fprintf(writer, "%-12s %15s %8d %15s\n",
			c.CustomerID, c.TotalSpent.StringFixed(2), c.TransactionCount, c.AverageOrder.StringFixed(2))
	}
}

func (rg *ReportGenerator) printDailyTrend(trend []analytics.DailySales, writer io.Writer) {
	if len(trend) == 0 {
		fmt.Fprintf(writer, "No daily data.\n")
		return
	}
	limit := rg.config.MaxTrendDays
	if limit > len(trend) {
		limit = len(trend)
	}
	fmt.Fprintf(writer, "%-12s %15s %8s %10s\n", "Date", "Revenue", "Txns", "Customers")
	for _, d := range trend[:limit] {
		fmt.Fprintf(writer, "%-12s %15s %8d %10d\n", d.Date, d.Revenue.StringFixed(2), d.TransactionCount, d.UniqueCustomers)
	}
	if len(trend) > limit {
		fmt.Fprintf(writer, "... and %d more days\n", len(trend)-limit)
	}
}

func (rg *ReportGenerator) printPerformance(result *pipeline.AnalysisResult, writer io.Writer) {
	if result.PeakDay != nil {
		fmt.Fprintf(writer, "Peak Sales Day: %s (revenue %s, %d customers)\n",
			result.PeakDay.Date, result.PeakDay.Revenue.StringFixed(2), result.PeakDay.UniqueCustomers)
	} else {
		fmt.Fprintf(writer, "Peak Sales Day: n/a\n")
	}

	if len(result.LowPerformers) == 0 {
		fmt.Fprintf(writer, "Low Performing Products: none\n")
		return
	}
	fmt.Fprintf(writer, "Low Performing Products:\n")
	for _, p := range result.LowPerformers {
		fmt.Fprintf(writer, "  %-30s %6d units\n", p.ProductName, p.Quantity)
	}
}

func (rg *ReportGenerator) printEnrichmentSummary(result *pipeline.AnalysisResult, writer io.Writer) {
	s := result.EnrichmentSummary
	fmt.Fprintf(writer, "Matched Records: %d of %d\n", s.Matched, s.Total)
	fmt.Fprintf(writer, "Success Rate:    %.2f%%\n", s.SuccessRate)
	if result.CatalogDegraded {
		fmt.Fprintf(writer, "Catalog:         unavailable, no metadata joined\n")
	}
	if len(s.UnmatchedProductIDs) > 0 {
		fmt.Fprintf(writer, "Unmatched Product IDs: %s\n", strings.Join(s.UnmatchedProductIDs, ", "))
	}
}

func (rg *ReportGenerator) printProcessingSummary(result *pipeline.AnalysisResult, writer io.Writer) {
	fs := result.FilterSummary
	fmt.Fprintf(writer, "Input Records:      %d\n", fs.TotalInput)
	fmt.Fprintf(writer, "Invalid:            %d\n", fs.Invalid)
	fmt.Fprintf(writer, "Filtered by Region: %d\n", fs.FilteredByRegion)
	fmt.Fprintf(writer, "Filtered by Amount: %d\n", fs.FilteredByAmount)
	fmt.Fprintf(writer, "Final Records:      %d\n", fs.FinalCount)
	if result.ProcessingStats != nil {
		fmt.Fprintf(writer, "Total Duration:     %v\n", result.ProcessingStats.TotalDuration)
	}
}

// GenerateRegionSummary renders the minimal region revenue report.
func GenerateRegionSummary(regions []analytics.RegionSales, writer io.Writer) error {
	fmt.Fprintf(writer, "REGION REVENUE SUMMARY\n")
	if len(regions) == 0 {
		fmt.Fprintf(writer, "No regional data.\n")
		return nil
	}
	for _, r := range regions {
		fmt.Fprintf(writer, "%-15s %15s\n", r.Region, r.Total.StringFixed(2))
	}
	return nil
}
