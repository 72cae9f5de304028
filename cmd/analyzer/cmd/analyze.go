package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"sales-analytics-service/cmd/analyzer/config"
	"sales-analytics-service/internal/enrichment"
	"sales-analytics-service/internal/parsers"
	"sales-analytics-service/internal/pipeline"
	"sales-analytics-service/internal/reporter"
	"sales-analytics-service/internal/validator"
	"sales-analytics-service/pkg/console"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the analyze command
var (
	inputFile    string
	reportFile   string
	enrichedFile string
	outputFormat string

	filterRegion string
	minAmount    float64
	maxAmount    float64

	topProducts  int
	lowThreshold int64

	skipEnrichment bool
	interactive    bool
	showProgress   bool

	apiBaseURL string
	rateURL    string
	apiTimeout time.Duration
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Clean, filter and analyze a sales transaction file",
	Long: `Analyze reads a pipe-delimited sales transaction file, drops malformed
records, applies region and amount filters and computes regional, product,
customer and daily aggregates. Records are enriched with product catalog
metadata unless enrichment is skipped.

Examples:
  # Basic analysis with the default filters
  analyzer analyze --input sales_data.txt

  # Filter to one region and a custom amount range
  analyzer analyze --input sales_data.txt --region North --min-amount 500 --max-amount 5000

  # Write the report and enriched dataset to files
  analyzer analyze --input sales_data.txt --report-file report.txt --enriched-file enriched.txt

  # JSON output for downstream tooling
  analyzer analyze --input sales_data.txt --output-format json

  # Choose filters interactively from the dataset profile
  analyzer analyze --input sales_data.txt --interactive`,

	PreRunE: validateAnalyzeFlags,
	RunE:    runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Required flags
	analyzeCmd.Flags().StringVarP(&inputFile, "input", "i", "", "path to the sales transaction file (required)")

	// Output flags
	analyzeCmd.Flags().StringVarP(&reportFile, "report-file", "o", "", "report file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&enrichedFile, "enriched-file", "", "enriched dataset output path (optional)")
	analyzeCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "text", "output format: text, json")

	// Filter flags
	analyzeCmd.Flags().StringVar(&filterRegion, "region", "", "restrict analysis to one region")
	analyzeCmd.Flags().Float64Var(&minAmount, "min-amount", 1000, "minimum transaction amount, 0 disables the bound")
	analyzeCmd.Flags().Float64Var(&maxAmount, "max-amount", 0, "maximum transaction amount, 0 disables the bound")

	// Analysis flags
	analyzeCmd.Flags().IntVar(&topProducts, "top-n", 5, "number of products in the top seller ranking")
	analyzeCmd.Flags().Int64Var(&lowThreshold, "low-threshold", pipeline.DefaultReportLowThreshold, "quantity below which a product is low performing")

	// Enrichment flags
	analyzeCmd.Flags().BoolVar(&skipEnrichment, "skip-enrichment", false, "skip product catalog enrichment")
	analyzeCmd.Flags().StringVar(&apiBaseURL, "api-base-url", "", "product catalog base URL (default: public catalog)")
	analyzeCmd.Flags().StringVar(&rateURL, "rate-url", "", "currency rate service base URL")
	analyzeCmd.Flags().DurationVar(&apiTimeout, "api-timeout", 10*time.Second, "API request timeout")

	// UI flags
	analyzeCmd.Flags().BoolVarP(&interactive, "interactive", "I", false, "choose filters interactively")
	analyzeCmd.Flags().BoolVar(&showProgress, "progress", false, "show progress indicators")

	analyzeCmd.MarkFlagRequired("input")

	// Bind flags to viper
	viper.BindPFlag("input", analyzeCmd.Flags().Lookup("input"))
	viper.BindPFlag("report-file", analyzeCmd.Flags().Lookup("report-file"))
	viper.BindPFlag("enriched-file", analyzeCmd.Flags().Lookup("enriched-file"))
	viper.BindPFlag("output-format", analyzeCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("region", analyzeCmd.Flags().Lookup("region"))
	viper.BindPFlag("min-amount", analyzeCmd.Flags().Lookup("min-amount"))
	viper.BindPFlag("max-amount", analyzeCmd.Flags().Lookup("max-amount"))
	viper.BindPFlag("top-n", analyzeCmd.Flags().Lookup("top-n"))
	viper.BindPFlag("low-threshold", analyzeCmd.Flags().Lookup("low-threshold"))
	viper.BindPFlag("skip-enrichment", analyzeCmd.Flags().Lookup("skip-enrichment"))
	viper.BindPFlag("api-base-url", analyzeCmd.Flags().Lookup("api-base-url"))
	viper.BindPFlag("rate-url", analyzeCmd.Flags().Lookup("rate-url"))
	viper.BindPFlag("api-timeout", analyzeCmd.Flags().Lookup("api-timeout"))
}

func validateAnalyzeFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	inputFile = viper.GetString("input")
	reportFile = viper.GetString("report-file")
	enrichedFile = viper.GetString("enriched-file")
	outputFormat = viper.GetString("output-format")
	filterRegion = viper.GetString("region")
	minAmount = viper.GetFloat64("min-amount")
	maxAmount = viper.GetFloat64("max-amount")
	topProducts = viper.GetInt("top-n")
	lowThreshold = viper.GetInt64("low-threshold")
	skipEnrichment = viper.GetBool("skip-enrichment")
	apiBaseURL = viper.GetString("api-base-url")
	rateURL = viper.GetString("rate-url")
	apiTimeout = viper.GetDuration("api-timeout")

	if inputFile == "" {
		return fmt.Errorf("input is required")
	}
	if err := validateFileExists(inputFile, "sales transaction file"); err != nil {
		return err
	}

	if !reporter.OutputFormat(outputFormat).IsValid() {
		return fmt.Errorf("invalid output format '%s'. Valid formats: text, json", outputFormat)
	}

	if minAmount < 0 {
		return fmt.Errorf("min-amount cannot be negative")
	}
	if maxAmount < 0 {
		return fmt.Errorf("max-amount cannot be negative")
	}
	if maxAmount > 0 && maxAmount < minAmount {
		return fmt.Errorf("max-amount cannot be below min-amount")
	}
	if topProducts <= 0 {
		return fmt.Errorf("top-n must be positive")
	}
	if apiTimeout <= 0 {
		return fmt.Errorf("api-timeout must be positive")
	}

	// Validate output directories exist if specified
	for _, path := range []string{reportFile, enrichedFile} {
		if path == "" {
			continue
		}
		dir := filepath.Dir(path)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	term := console.NewConsole()

	if interactive {
		if err := chooseFiltersInteractively(term); err != nil {
			return err
		}
	}

	filter := validator.FilterOptions{Region: filterRegion}
	if minAmount > 0 {
		min := decimal.NewFromFloat(minAmount)
		filter.MinAmount = &min
	}
	if maxAmount > 0 {
		max := decimal.NewFromFloat(maxAmount)
		filter.MaxAmount = &max
	}

	serviceConfig := config.CreateServiceConfig(apiBaseURL, rateURL, apiTimeout)
	service, err := pipeline.NewAnalysisService(serviceConfig, nil)
	if err != nil {
		return fmt.Errorf("failed to create analysis service: %w", err)
	}

	request := &pipeline.AnalysisRequest{
		InputPath:            inputFile,
		Filter:               filter,
		TopProducts:          topProducts,
		LowQuantityThreshold: lowThreshold,
		SkipEnrichment:       skipEnrichment,
	}

	var status *console.StatusHandle
	if showProgress {
		status = term.Status("Analyzing " + filepath.Base(inputFile))
	}

	result, err := service.Run(ctx, request)
	if status != nil {
		status.Stop()
	}
	if err != nil {
		return err
	}

	if result.CatalogDegraded {
		term.Warning("Product catalog unavailable, records were not enriched")
	}
	if result.Rate != nil && result.Rate.Fallback {
		term.Warning("Currency rate service unavailable, using an approximate rate")
	}

	generator, err := reporter.NewReportGenerator(config.CreateReportConfig(outputFormat))
	if err != nil {
		return err
	}

	if reportFile != "" {
		if err := generator.WriteReportFile(result, reportFile); err != nil {
			return err
		}
		term.Success("Report written to %s", reportFile)
	} else {
		if err := generator.GenerateReport(result, os.Stdout); err != nil {
			return err
		}
	}

	if enrichedFile != "" && len(result.Enriched) > 0 {
		if err := enrichment.WriteFile(enrichedFile, result.Enriched); err != nil {
			return err
		}
		term.Success("Enriched dataset written to %s", enrichedFile)
	}

	term.Printf("Processed %s records in %s\n",
		console.BrightGreen(fmt.Sprintf("%d", result.FilterSummary.FinalCount)),
		console.BrightCyan(result.ProcessingStats.TotalDuration.Round(time.Millisecond).String()))

	return nil
}

// chooseFiltersInteractively profiles the dataset first so the prompts can
// show the available regions and the full amount range.
func chooseFiltersInteractively(term *console.Console) error {
	parser, err := parsers.NewSalesParser(config.CreateParserConfig())
	if err != nil {
		return err
	}
	cleaned, _, err := parser.ParseFile(inputFile)
	if err != nil {
		return err
	}

	profile := validator.Profile(cleaned)
	term.Section("Dataset Profile")
	if profile.Empty {
		term.Warning("The file contains no valid transactions")
		return nil
	}
	term.Info("Regions: %v", profile.Regions)
	term.Info("Amount range: %s to %s", profile.MinAmount.StringFixed(2), profile.MaxAmount.StringFixed(2))

	filterRegion = term.Ask("Region to analyze (empty for all)", filterRegion)

	answer := term.Ask("Minimum transaction amount", strconv.FormatFloat(minAmount, 'f', -1, 64))
	parsed, err := strconv.ParseFloat(answer, 64)
	if err != nil || parsed < 0 {
		return fmt.Errorf("invalid minimum amount: %q", answer)
	}
	minAmount = parsed

	skipEnrichment = !term.Confirm("Enrich records with product catalog metadata?")
	return nil
}
