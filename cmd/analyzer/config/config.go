package config

import (
	"time"

	"sales-analytics-service/internal/apiclient"
	"sales-analytics-service/internal/parsers"
	"sales-analytics-service/internal/pipeline"
	"sales-analytics-service/internal/reporter"
)

// CreateParserConfig creates the sales file parser configuration
func CreateParserConfig() *parsers.SalesParserConfig {
	config := parsers.DefaultSalesParserConfig()
	return config
}

// CreateAPIConfig creates the API client configuration with CLI overrides
func CreateAPIConfig(catalogURL, rateURL string, timeout time.Duration) *apiclient.Config {
	config := apiclient.DefaultConfig()

	if catalogURL != "" {
		config.CatalogBaseURL = catalogURL
	}
	if rateURL != "" {
		config.RateBaseURL = rateURL
	}
	if timeout > 0 {
		config.Timeout = timeout
	}

	return config
}

// CreateServiceConfig assembles the pipeline service configuration
func CreateServiceConfig(catalogURL, rateURL string, timeout time.Duration) *pipeline.ServiceConfig {
	return &pipeline.ServiceConfig{
		Parser: CreateParserConfig(),
		API:    CreateAPIConfig(catalogURL, rateURL, timeout),
	}
}

// CreateReportConfig creates the report configuration for the requested format
func CreateReportConfig(format string) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()
	if format != "" {
		config.Format = reporter.OutputFormat(format)
	}
	return config
}
