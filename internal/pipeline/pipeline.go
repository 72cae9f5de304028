// Package pipeline orchestrates the full analysis flow: parse, filter,
// aggregate, enrich. It owns the run identity and staging timings; output
// rendering lives in the reporter.
package pipeline

import (
	"context"
	"time"

	"sales-analytics-service/internal/analytics"
	"sales-analytics-service/internal/apiclient"
	"sales-analytics-service/internal/enrichment"
	"sales-analytics-service/internal/models"
	"sales-analytics-service/internal/parsers"
	"sales-analytics-service/internal/validator"
	"sales-analytics-service/pkg/errors"
	"sales-analytics-service/pkg/logger"

	"github.com/google/uuid"
)

// DefaultReportLowThreshold is the low performer cutoff used by the full
// report, stricter than the standalone aggregation default.
const DefaultReportLowThreshold = 15

// AnalysisRequest describes one analysis run.
type AnalysisRequest struct {
	InputPath            string
	Filter               validator.FilterOptions
	TopProducts          int
	LowQuantityThreshold int64
	SkipEnrichment       bool
	BaseCurrency         string
	TargetCurrency       string
}

// ProcessingStats records per-stage timings for the run.
type ProcessingStats struct {
	ParseDuration      time.Duration `json:"parse_duration"`
	FilterDuration     time.Duration `json:"filter_duration"`
	AnalyticsDuration  time.Duration `json:"analytics_duration"`
	EnrichmentDuration time.Duration `json:"enrichment_duration"`
	TotalDuration      time.Duration `json:"total_duration"`
}

// AnalysisResult is everything a run produces, ready for rendering.
type AnalysisResult struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	InputPath   string    `json:"input_path"`

	ParseStats    *parsers.ParseStats      `json:"parse_stats"`
	FilterSummary *validator.FilterSummary `json:"filter_summary"`
	Profile       *validator.DataProfile   `json:"profile"`

	Transactions []*models.Transaction `json:"-"`

	Metrics         *analytics.SalesMetrics   `json:"metrics"`
	FilteredMetrics *analytics.SalesMetrics   `json:"filtered_metrics"`
	RegionSales     []analytics.RegionSales   `json:"region_sales"`
	TopProducts     []analytics.ProductSales  `json:"top_products"`
	Customers       []analytics.CustomerStats `json:"customers"`
	DailyTrend      []analytics.DailySales    `json:"daily_trend"`
	PeakDay         *analytics.DailySales     `json:"peak_day"`
	LowPerformers   []analytics.ProductSales  `json:"low_performers"`

	Enriched          []*models.EnrichedTransaction `json:"-"`
	EnrichmentSummary *enrichment.Summary           `json:"enrichment_summary,omitempty"`
	CatalogDegraded   bool                          `json:"catalog_degraded"`
	Rate              *apiclient.RateResult         `json:"rate,omitempty"`

	ProcessingStats *ProcessingStats `json:"processing_stats"`
}

// ServiceConfig wires the collaborators for an AnalysisService.
type ServiceConfig struct {
	Parser *parsers.SalesParserConfig
	API    *apiclient.Config
}

func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		Parser: parsers.DefaultSalesParserConfig(),
		API:    apiclient.DefaultConfig(),
	}
}

// AnalysisService runs the analysis pipeline end to end.
type AnalysisService struct {
	parser    *parsers.SalesParser
	validator *validator.Validator
	client    *apiclient.Client
	logger    logger.Logger
}

func NewAnalysisService(config *ServiceConfig, log logger.Logger) (*AnalysisService, error) {
	if config == nil {
		config = DefaultServiceConfig()
	}
	if log == nil {
		log = logger.GetGlobalLogger().WithComponent("pipeline")
	}

	parser, err := parsers.NewSalesParser(config.Parser)
	if err != nil {
		return nil, err
	}
	client, err := apiclient.NewClient(config.API, log.WithComponent("apiclient"))
	if err != nil {
		return nil, err
	}

	return &AnalysisService{
		parser:    parser,
		validator: validator.NewValidator(log.WithComponent("validator")),
		client:    client,
		logger:    log,
	}, nil
}

// Run executes a full analysis. A missing or unreadable input file is
// reported and the run continues with an empty record set; a failed
// catalog or rate fetch only degrades it. The result is complete and
// renderable in either case.
func (s *AnalysisService) Run(ctx context.Context, req *AnalysisRequest) (*AnalysisResult, error) {
	if req == nil || req.InputPath == "" {
		return nil, errors.ConfigurationError(errors.CodeMissingConfig, "input_path", "",
			nil).WithSuggestion("provide the path to the sales data file")
	}

	started := time.Now()
	result := &AnalysisResult{
		RunID:           uuid.NewString(),
		GeneratedAt:     started,
		InputPath:       req.InputPath,
		ProcessingStats: &ProcessingStats{},
	}
	runLog := s.logger.WithField("run_id", result.RunID)
	runLog.WithField("input", req.InputPath).Info("Starting analysis run")

	// Parse and clean. File access problems are recovered here: the run
	// continues with zero records so the report still renders.
	stageStart := time.Now()
	cleaned, parseStats, err := s.parser.ParseFile(req.InputPath)
	if err != nil {
		analyticsErr, ok := errors.AsAnalyticsError(err)
		if !ok || analyticsErr.Category != errors.CategoryFile {
			return nil, err
		}
		runLog.WithError(err).Warn("Input file unavailable, continuing with empty record set")
		cleaned = nil
		parseStats = parsers.NewParseStats()
	}
	result.ParseStats = parseStats
	result.ProcessingStats.ParseDuration = time.Since(stageStart)

	// Profile before filtering so the full amount range is visible.
	result.Profile = validator.Profile(cleaned)

	// Strict filter.
	stageStart = time.Now()
	filtered, filterSummary := s.validator.Filter(cleaned, req.Filter)
	result.Transactions = filtered
	result.FilterSummary = filterSummary
	result.ProcessingStats.FilterDuration = time.Since(stageStart)

	if err := ctx.Err(); err != nil {
		return nil, errors.InternalError(errors.CodeUnexpectedError, "analysis", err)
	}

	// Aggregations read the cleaned records; only the filtered metrics
	// follow the filter path, feeding the currency summary.
	stageStart = time.Now()
	result.Metrics = analytics.ComputeMetrics(cleaned)
	result.FilteredMetrics = analytics.ComputeMetrics(filtered)
	result.RegionSales = analytics.RegionWiseSales(cleaned)
	result.TopProducts = analytics.TopSellingProducts(cleaned, req.TopProducts)
	result.Customers = analytics.CustomerAnalysis(cleaned)
	result.DailyTrend = analytics.DailySalesTrend(cleaned)
	result.PeakDay = analytics.FindPeakSalesDay(cleaned)

	threshold := req.LowQuantityThreshold
	if threshold <= 0 {
		threshold = DefaultReportLowThreshold
	}
	result.LowPerformers = analytics.LowPerformingProducts(cleaned, threshold)
	result.ProcessingStats.AnalyticsDuration = time.Since(stageStart)

	// Enrichment joins the cleaned records, independently of the filters.
	if !req.SkipEnrichment {
		stageStart = time.Now()
		s.enrich(ctx, req, cleaned, result)
		result.ProcessingStats.EnrichmentDuration = time.Since(stageStart)
	}

	result.ProcessingStats.TotalDuration = time.Since(started)
	runLog.WithFields(logger.Fields{
		"transactions": len(filtered),
		"duration":     result.ProcessingStats.TotalDuration.String(),
	}).Info("Analysis run completed")

	return result, nil
}

func (s *AnalysisService) enrich(ctx context.Context, req *AnalysisRequest, cleaned []*models.Transaction, result *AnalysisResult) {
	catalog := s.client.FetchProducts(ctx)
	result.CatalogDegraded = catalog.Degraded

	enricher := enrichment.NewEnricher(catalog.Products, s.logger.WithComponent("enrichment"))
	result.Enriched, result.EnrichmentSummary = enricher.Enrich(cleaned)

	base, target := req.BaseCurrency, req.TargetCurrency
	if base == "" {
		base = "USD"
	}
	if target == "" {
		target = "EUR"
	}
	result.Rate = s.client.CurrencyRate(ctx, base, target)
}
