package cmd

import (
	"context"
	"os"

	"sales-analytics-service/cmd/analyzer/config"
	"sales-analytics-service/internal/pipeline"
	"sales-analytics-service/internal/reporter"

	"github.com/spf13/cobra"
)

var summarizeInput string

// summarizeCmd prints the minimal per-region revenue summary without
// enrichment or filtering.
var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Print a minimal per-region revenue summary",
	Long: `Summarize cleans the sales file and prints total revenue per region,
without filters, enrichment or external calls.

Example:
  analyzer summarize --input sales_data.txt`,

	PreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFileExists(summarizeInput, "sales transaction file")
	},
	RunE: runSummarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)

	summarizeCmd.Flags().StringVarP(&summarizeInput, "input", "i", "", "path to the sales transaction file (required)")
	summarizeCmd.MarkFlagRequired("input")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	service, err := pipeline.NewAnalysisService(config.CreateServiceConfig("", "", 0), nil)
	if err != nil {
		return err
	}

	result, err := service.Run(context.Background(), &pipeline.AnalysisRequest{
		InputPath:      summarizeInput,
		SkipEnrichment: true,
	})
	if err != nil {
		return err
	}

	return reporter.GenerateRegionSummary(result.RegionSales, os.Stdout)
}
